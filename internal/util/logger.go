package util

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

var Logger *log.Logger

func coloredPrefix() string {
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#6366F1")).
		Bold(true).
		Padding(0, 1).
		MarginRight(1)
	return style.Render("vlyx")
}

// NewLogger builds a charmbracelet logger writing to w. Debug mode adds
// timestamps, caller info and the debug level.
func NewLogger(w io.Writer, debug bool) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportCaller:    debug,
		ReportTimestamp: debug,
		TimeFormat:      "15:04:05",
		Prefix:          coloredPrefix(),
	})
	l.SetColorProfile(termenv.TrueColor)
	if debug {
		l.SetLevel(log.DebugLevel)
	} else {
		l.SetLevel(log.InfoLevel)
	}
	return l
}

// InitLogger sets up the global logger on stderr
func InitLogger() {
	Logger = NewLogger(os.Stderr, IsDebug)
	Logger.Debug("Debug logging enabled")
}

// Debug logs a debug message (only when debug mode is enabled)
func Debug(msg interface{}, keyvals ...interface{}) {
	if IsDebug && Logger != nil {
		Logger.Debug(fmt.Sprintf("%v", msg), keyvals...)
	}
}

// Info logs an info message
func Info(msg interface{}, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Info(fmt.Sprintf("%v", msg), keyvals...)
	}
}

// Warn logs a warning message
func Warn(msg interface{}, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Warn(fmt.Sprintf("%v", msg), keyvals...)
	}
}

// Error logs an error message
func Error(msg interface{}, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Error(fmt.Sprintf("%v", msg), keyvals...)
	}
}

// Debugf logs a formatted debug message (only when debug mode is enabled)
func Debugf(format string, args ...interface{}) {
	if IsDebug && Logger != nil {
		Logger.Debug(fmt.Sprintf(format, args...))
	}
}

