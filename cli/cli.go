package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go-btindex/config"
	"go-btindex/pkg/btree"
	"go-btindex/pkg/customerrors"
	"go-btindex/pkg/loader"
	"go-btindex/util/helpers"
	"go-btindex/util/logger"

	"github.com/fatih/color"
	"github.com/pkg/errors"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type command struct {
	args []string
	help string
	run  func(c *Cli, args []string) error
}

var commands = map[string]command{
	"create":  {[]string{"file"}, "Create a new index file", (*Cli).create},
	"insert":  {[]string{"file", "key", "value"}, "Insert a key/value pair", (*Cli).insert},
	"search":  {[]string{"file", "key"}, "Print the pair stored under key", (*Cli).search},
	"load":    {[]string{"file", "data-file"}, "Insert every key,value row of data-file", (*Cli).load},
	"print":   {[]string{"file"}, "Print all pairs in ascending key order", (*Cli).print},
	"extract": {[]string{"file", "out-file"}, "Write all pairs into a new file", (*Cli).extract},
	"check":   {[]string{"file"}, "Verify the tree structure", (*Cli).check},
	"stat":    {[]string{"file"}, "Print root and next block ids", (*Cli).stat},
}

var order = []string{"create", "insert", "search", "load", "print", "extract", "check", "stat"}

type Cli struct {
	out    io.Writer
	errOut io.Writer
	errClr *color.Color
}

func New(cfg *config.AppConfig, out, errOut io.Writer) *Cli {
	clr := color.New(color.FgRed)
	if cfg.CLIConfig.NoColor {
		clr.DisableColor()
	}

	return &Cli{
		out:    out,
		errOut: errOut,
		errClr: clr,
	}
}

// Run executes one command and returns the process exit code.
func (c *Cli) Run(args []string) int {
	if len(args) < 1 {
		c.Usage(c.errOut)
		return exitUsage
	}

	name := strings.ToLower(args[0])
	cmd, ok := commands[name]
	if !ok {
		c.errClr.Fprintf(c.errOut, "error: unknown command \"%s\"\n", name)
		c.Usage(c.errOut)
		return exitUsage
	}

	if len(args)-1 != len(cmd.args) {
		fmt.Fprintf(c.errOut, "Usage: %s %s\n", name, argList(cmd.args))
		return exitUsage
	}

	if err := cmd.run(c, args[1:]); err != nil {
		logger.L.WithField("command", name).Debugf("%+v", err)
		c.errClr.Fprintf(c.errOut, "error: %s\n", err)
		return exitError
	}
	return exitOK
}

func (c *Cli) Usage(w io.Writer) {
	fmt.Fprintln(w, "\nB-Tree index\n\nAvailable Commands:")
	for _, name := range order {
		cmd := commands[name]
		fmt.Fprintf(w, "  %-40s %s\n", name+" "+argList(cmd.args), cmd.help)
	}
}

func (c *Cli) create(args []string) error {
	return btree.Create(args[0])
}

func (c *Cli) insert(args []string) error {
	key, err := parseNumber("key", args[1])
	if err != nil {
		return err
	}
	val, err := parseNumber("value", args[2])
	if err != nil {
		return err
	}

	return withTree(args[0], func(tree *btree.BTree) error {
		return tree.Insert(key, val)
	})
}

func (c *Cli) search(args []string) error {
	key, err := parseNumber("key", args[1])
	if err != nil {
		return err
	}

	return withTree(args[0], func(tree *btree.BTree) error {
		p, err := tree.Search(key)
		if errors.Is(err, customerrors.ErrKeyNotFound) {
			fmt.Fprintln(c.out, "key not found")
			return nil
		} else if err != nil {
			return err
		}

		fmt.Fprintln(c.out, p)
		return nil
	})
}

func (c *Cli) load(args []string) error {
	return withTree(args[0], func(tree *btree.BTree) error {
		_, err := loader.LoadFile(context.Background(), tree, args[1])
		return err
	})
}

func (c *Cli) print(args []string) error {
	return withTree(args[0], func(tree *btree.BTree) error {
		return tree.WritePairs(c.out)
	})
}

func (c *Cli) extract(args []string) error {
	return withTree(args[0], func(tree *btree.BTree) error {
		return tree.Extract(args[1])
	})
}

func (c *Cli) check(args []string) error {
	return withTree(args[0], func(tree *btree.BTree) error {
		rep, err := tree.Check()
		if err != nil {
			return err
		}

		fmt.Fprintf(c.out, "ok: nodes=%d pairs=%d height=%d\n", rep.Nodes, rep.Pairs, rep.Height)
		return nil
	})
}

func (c *Cli) stat(args []string) error {
	return withTree(args[0], func(tree *btree.BTree) error {
		fmt.Fprintln(c.out, tree)
		return nil
	})
}

// withTree opens the index at path, runs fn and closes the index again.
func withTree(path string, fn func(tree *btree.BTree) error) error {
	tree, err := btree.Open(path)
	if err != nil {
		return err
	}

	err = fn(tree)
	if cerr := tree.Close(); err == nil {
		err = cerr
	}
	return err
}

func parseNumber(name, s string) (uint64, error) {
	v, err := helpers.ParseUnsigned[uint64](s)
	if err != nil {
		return 0, errors.Wrapf(customerrors.ErrMalformedInput, "%s '%s'", name, s)
	}
	return v, nil
}

func argList(args []string) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = "<" + a + ">"
	}
	return strings.Join(parts, " ")
}
