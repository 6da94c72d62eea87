// Package console is the charmbracelet/log backend of the logger.
package console

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

type Logger struct {
	logger *log.Logger
}

type Params struct {
	Debug bool
	// Output defaults to stderr. The TUI points it at a log file so the
	// alternate screen stays clean.
	Output io.Writer
	Prefix string
}

func New(params Params) *Logger {
	level := log.InfoLevel
	if params.Debug {
		level = log.DebugLevel
	}
	out := params.Output
	if out == nil {
		out = os.Stderr
	}
	return &Logger{
		logger: log.NewWithOptions(out, log.Options{
			ReportTimestamp: true,
			Level:           level,
			Prefix:          params.Prefix,
		}),
	}
}

func (c *Logger) Debug(message string, keyvals ...any) { c.logger.Debug(message, keyvals...) }
func (c *Logger) Info(message string, keyvals ...any)  { c.logger.Info(message, keyvals...) }
func (c *Logger) Warn(message string, keyvals ...any)  { c.logger.Warn(message, keyvals...) }
func (c *Logger) Error(message string, keyvals ...any) { c.logger.Error(message, keyvals...) }
func (c *Logger) Fatal(message string, keyvals ...any) { c.logger.Fatal(message, keyvals...) }
