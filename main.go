package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go-btindex/cli"
	"go-btindex/config"
	"go-btindex/util/logger"
)

func main() {
	configs := config.New()

	verbose := flag.Bool("v", false, "Enable debug logging on stderr.")
	noColor := flag.Bool("no-color", configs.CLIConfig.NoColor, "Disable colored error output.")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "\nUsage: btindex [flags] <command> [args]\n\nFlags:")
		flag.PrintDefaults()
		cli.New(configs, os.Stdout, os.Stderr).Usage(os.Stderr)
	}
	flag.Parse()

	if *verbose {
		configs.LogConfig.Level = "debug"
	}
	configs.CLIConfig.NoColor = *noColor

	if err := logger.SetLevel(configs.LogConfig.Level); err != nil {
		fatal(err)
	}

	os.Exit(cli.New(configs, os.Stdout, os.Stderr).Run(flag.Args()))
}

func fatal(err error) {
	printError(os.Stderr, err)
	os.Exit(1)
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, "error:", err)
}
