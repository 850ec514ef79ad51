package logger

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/op/go-logging"
)

var logLevels = map[string]logging.Level{
	"CRITICAL": logging.CRITICAL,
	"ERROR":    logging.ERROR,
	"WARNING":  logging.WARNING,
	"NOTICE":   logging.NOTICE,
	"INFO":     logging.INFO,
	"DEBUG":    logging.DEBUG,
}

// ParseLevel converts a level name like "INFO" to a logging.Level.
// Unknown names fall back to INFO.
func ParseLevel(name string) logging.Level {
	if level, ok := logLevels[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return level
	}
	return logging.INFO
}

/*
InitLogger creates and returns a logger suitable for logging
human-readable messages. Also returns the path to the log file.
If logDir is empty, the logger writes to stderr and the path is
empty. That's what you want in containers, where the platform
collects stderr.
*/
func InitLogger(logDir string, logLevel logging.Level) (*logging.Logger, string) {
	processName := path.Base(os.Args[0])
	var writer io.Writer = os.Stderr
	filename := ""
	if logDir != "" {
		filename = filepath.Join(logDir, fmt.Sprintf("%s.log", processName))
		file, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open log file '%s': %v\n", filename, err)
			os.Exit(1)
		}
		writer = file
	}
	log := logging.MustGetLogger(processName)
	format := logging.MustStringFormatter("[%{level}] %{message}")
	logging.SetFormatter(format)
	logBackend := logging.NewLogBackend(writer, "", stdlog.LstdFlags|stdlog.LUTC)
	leveled := logging.AddModuleLevel(logBackend)
	leveled.SetLevel(logLevel, processName)
	logging.SetBackend(leveled)
	return log, filename
}

// Discard returns a logger that throws everything away. For tests.
func Discard(module string) *logging.Logger {
	log := logging.MustGetLogger(module)
	backend := logging.AddModuleLevel(logging.NewLogBackend(io.Discard, "", 0))
	backend.SetLevel(logging.CRITICAL, module)
	log.SetBackend(backend)
	return log
}
