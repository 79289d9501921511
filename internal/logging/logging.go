package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the CLI logger.
type Options struct {
	// Level is one of debug, info, warn, error. Unknown values mean info.
	Level string

	// File, when set, receives the log instead of stderr. It is rotated at
	// MaxSizeMB.
	File      string
	MaxSizeMB int

	// JSON disables the console formatting.
	JSON bool
}

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// New creates a logger with the specified configuration. Output goes to
// stderr unless File is set.
func New(opts Options, stderr io.Writer) (zerolog.Logger, error) {
	var output io.Writer = stderr

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return zerolog.Nop(), err
		}
		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 10
		}
		output = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSize, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
		}
	} else if !opts.JSON {
		output = zerolog.ConsoleWriter{
			Out:        stderr,
			TimeFormat: time.RFC3339,
			NoColor:    !isTerminal(stderr),
		}
	}

	logger := zerolog.New(output).
		Level(ParseLevel(opts.Level)).
		With().
		Timestamp().
		Logger()

	return logger, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ClientLogger adapts a zerolog logger to the muspy client's Logger
// interface.
type ClientLogger struct {
	Logger zerolog.Logger
}

// Debugf logs a debug message.
func (l ClientLogger) Debugf(format string, args ...interface{}) {
	l.Logger.Debug().Msgf(format, args...)
}
