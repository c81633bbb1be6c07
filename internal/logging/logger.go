// Package logging tees the standard logger to a rotating file.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

const logName = "measureingoods"

// Logger wraps the standard logger with file output
type Logger struct {
	*log.Logger
	file *os.File
	dir  string
}

var (
	defaultLogger *Logger
	// mu guards defaultLogger and every swap of its file.
	mu sync.Mutex
)

// Initialize sends log output to stdout and <logDir>/measureingoods.log.
// Calling it again with the same directory is a no-op.
func Initialize(logDir string) error {
	mu.Lock()
	defer mu.Unlock()
	if defaultLogger != nil && defaultLogger.dir == logDir {
		return nil
	}

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	logPath := filepath.Join(logDir, logName+".log")
	file, err := openLog(logPath)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	old := defaultLogger
	defaultLogger = &Logger{
		Logger: log.New(multiWriter, "", log.LstdFlags|log.Lshortfile),
		file:   file,
		dir:    logDir,
	}
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if old != nil && old.file != nil {
		old.file.Close()
	}

	log.Printf("[INFO] logging initialized: %s", logPath)
	return nil
}

// Close closes the log file and restores stdout logging.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if defaultLogger == nil || defaultLogger.file == nil {
		return nil
	}
	log.SetOutput(os.Stdout)
	err := defaultLogger.file.Close()
	defaultLogger = nil
	return err
}

func output(level, format string, v ...interface{}) {
	msg := fmt.Sprintf("["+level+"] "+format, v...)
	mu.Lock()
	defer mu.Unlock()
	if defaultLogger != nil {
		defaultLogger.Output(3, msg)
	} else {
		log.Output(3, msg)
	}
}

// Error logs an error message
func Error(format string, v ...interface{}) { output("ERROR", format, v...) }

// Warning logs a warning message
func Warning(format string, v ...interface{}) { output("WARN", format, v...) }

// Info logs an info message
func Info(format string, v ...interface{}) { output("INFO", format, v...) }

// Debug logs only when DEBUG=true.
func Debug(format string, v ...interface{}) {
	if os.Getenv("DEBUG") == "true" {
		output("DEBUG", format, v...)
	}
}

// RotateLogs renames the current log file with a timestamp and reopens a
// fresh one. At most keep rotated files are retained; keep <= 0 keeps all.
// The old file is closed only after every writer has moved to the new one.
func RotateLogs(keep int) error {
	mu.Lock()
	defer mu.Unlock()
	l := defaultLogger
	if l == nil {
		return fmt.Errorf("logger not initialized")
	}

	oldPath := filepath.Join(l.dir, logName+".log")
	newPath := filepath.Join(l.dir, fmt.Sprintf("%s-%s.log", logName, time.Now().Format("20060102-150405.000")))
	// The open descriptor keeps writing to the renamed file until the swap.
	if err := os.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("failed to rotate log file: %w", err)
	}
	file, err := openLog(oldPath)
	if err != nil {
		return fmt.Errorf("failed to open new log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	l.Logger.SetOutput(multiWriter)
	log.SetOutput(multiWriter)
	prev := l.file
	l.file = file
	if err := prev.Close(); err != nil {
		log.Printf("[WARN] close rotated log: %v", err)
	}

	if keep > 0 {
		pruneRotated(l.dir, keep)
	}
	log.Printf("[INFO] log rotation completed: %s", newPath)
	return nil
}

func openLog(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
func pruneRotated(dir string, keep int) {
	matches, err := filepath.Glob(filepath.Join(dir, logName+"-*.log"))
	if err != nil || len(matches) <= keep {
		return
	}
	// Timestamped names sort chronologically.
	sort.Strings(matches)
	for _, m := range matches[:len(matches)-keep] {
		if err := os.Remove(m); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("[WARN] remove old log %s: %v", m, err)
		}
	}
}
