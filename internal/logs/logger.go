// Package logs owns the process-wide logrus logger.  It is configured once
// at startup by Init and read everywhere else through Logger.
package logs

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is the application logger.  It is usable before Init with logrus
// defaults so packages and tests never see a nil logger.
var Logger = logrus.New()

// Options controls level and output format.
type Options struct {
	Level  string // trace|debug|info|warning|error|fatal
	Format string // text|json
	Output io.Writer
}

// Init configures Logger from opts.
func Init(opts Options) {
	l := logrus.New()

	lvl, err := logrus.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if opts.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if opts.Output != nil {
		l.SetOutput(opts.Output)
	} else {
		l.SetOutput(os.Stdout)
	}

	Logger = l
}

// TokenHint returns a short prefix of a session token that is safe to log.
func TokenHint(token string) string {
	if len(token) <= 8 {
		return "***"
	}
	return token[:8] + "…"
}
