package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger provides optional verbose logging and lightweight timing helpers.
// The zero value discards everything.
type Logger struct {
	log     zerolog.Logger
	Verbose bool
}

// New logs human readable lines to writer.
func New(writer io.Writer, verbose bool) Logger {
	if writer == nil {
		return Logger{log: zerolog.Nop()}
	}
	console := zerolog.ConsoleWriter{Out: writer, TimeFormat: time.TimeOnly, NoColor: true}
	return newLogger(console, verbose)
}

// NewFile logs JSON lines to a size-rotated file.
func NewFile(path string, verbose bool) (Logger, io.Closer) {
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5,
		MaxBackups: 3,
		MaxAge:     30,
	}
	return newLogger(rotator, verbose), rotator
}

func newLogger(w io.Writer, verbose bool) Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return Logger{
		log:     zerolog.New(w).Level(level).With().Timestamp().Logger(),
		Verbose: verbose,
	}
}

// With returns a logger that adds key=value to every line.
func (l Logger) With(key, value string) Logger {
	l.log = l.log.With().Str(key, value).Logger()
	return l
}

func (l Logger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l Logger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

// Errorf logs err with a message.
func (l Logger) Errorf(err error, format string, args ...any) {
	l.log.Error().Err(err).Msgf(format, args...)
}

func (l Logger) Verbosef(format string, args ...any) {
	if !l.Verbose {
		return
	}
	l.log.Debug().Msgf(format, args...)
}

// Measure returns a stop function that logs the elapsed time when called.
func (l Logger) Measure(label string) func() {
	if !l.Verbose {
		return func() {}
	}
	start := time.Now()
	return func() {
		elapsed := time.Since(start).Round(time.Millisecond)
		l.Verbosef("%s took %s", label, elapsed)
	}
}
