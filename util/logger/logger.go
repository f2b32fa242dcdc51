package logger

import (
	"os"

	logger "github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

var L = &logger.Logger{
	Out:   os.Stderr,
	Level: logger.WarnLevel,
	Hooks: make(logger.LevelHooks),
	Formatter: &prefixed.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
		ForceFormatting: true,
	},
}

// SetLevel parses lvl and applies it to L. On error L keeps its level.
func SetLevel(lvl string) error {
	l, err := logger.ParseLevel(lvl)
	if err != nil {
		return err
	}
	L.SetLevel(l)
	return nil
}
