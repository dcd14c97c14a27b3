package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

const logFileName = "hometray.log"

var (
	root    = zerolog.Nop()
	logFile *os.File
	logMu   sync.Mutex
	dir     string
)

// ResolveDir picks the log directory: flag, then HOMETRAY_LOG_PATH, then the
// OS default. Relative paths are resolved against the working directory.
func ResolveDir(flagPath string) (string, error) {
	if flagPath != "" {
		return absolute(flagPath)
	}
	if envPath := os.Getenv("HOMETRAY_LOG_PATH"); envPath != "" {
		return absolute(envPath)
	}
	return defaultDir()
}

func absolute(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, p), nil
}

// SetDir sets the directory Init writes into.
func SetDir(d string) {
	dir = d
}

// Dir returns the current log directory.
func Dir() string {
	return dir
}

// ParseLevel maps a config string to a zerolog level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "trace":
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}

// Init opens the log file in the configured directory and installs the root
// logger. If the file cannot be opened, logs go to stderr and the error is
// returned so the caller can report it.
func Init(level string) error {
	logMu.Lock()
	defer logMu.Unlock()

	var out io.Writer = os.Stderr
	var openErr error
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			openErr = fmt.Errorf("failed to create log directory: %w", err)
		} else {
			f, err := os.OpenFile(filepath.Join(dir, logFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err != nil {
				openErr = err
			} else {
				logFile = f
				out = f
			}
		}
	}

	root = newLogger(out, ParseLevel(level))
	return openErr
}

func newLogger(out io.Writer, level zerolog.Level) zerolog.Logger {
	consoleWriter := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	return zerolog.New(consoleWriter).Level(level).With().Timestamp().Int("pid", os.Getpid()).Logger()
}

// Logger returns the root logger. Before Init it discards everything.
func Logger() zerolog.Logger {
	logMu.Lock()
	defer logMu.Unlock()
	return root
}

// Close flushes and closes the log file.
func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	root = zerolog.Nop()
}
