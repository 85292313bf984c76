// Package common provides shared constants, types, and utilities
// used across the EVPN Assistant application.
package common

import (
	"compress/gzip"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// logSink is the destination shared by a logger and all of its children.
type logSink struct {
	mu          sync.Mutex
	level       LogLevel
	logger      *log.Logger
	console     io.Writer
	logFile     *os.File
	filePath    string
	maxFileSize int64
	maxBackups  int
}

// AppLogger is a leveled logger. Loggers derived with WithComponent share
// level and output with their parent.
type AppLogger struct {
	sink      *logSink
	component string
}

// LogConfig holds configuration options for the logger.
type LogConfig struct {
	Level       LogLevel
	EnableFile  bool
	MaxFileSize int64     // in bytes, default 5MB
	MaxBackups  int       // number of rotated files to keep, default 5
	Console     io.Writer // terminal output, default os.Stdout
}

var (
	defaultLogger *AppLogger
	loggerOnce    sync.Once
)

const (
	defaultMaxFileSize = 5 * 1024 * 1024 // 5MB
	defaultMaxBackups  = 5
)

// NewLogger creates a logger writing to w.
func NewLogger(w io.Writer, level LogLevel) *AppLogger {
	return &AppLogger{
		sink: &logSink{
			level:       level,
			logger:      log.New(w, "", 0),
			console:     w,
			maxFileSize: defaultMaxFileSize,
			maxBackups:  defaultMaxBackups,
		},
	}
}

// GetLogger returns the process logger. Prefer injecting a Logger into
// components; this is only the root they are derived from.
func GetLogger() *AppLogger {
	loggerOnce.Do(func() {
		defaultLogger = NewLogger(os.Stdout, LevelInfo)
	})
	return defaultLogger
}

// InitLogger configures the process logger.
// Should be called early in application startup.
func InitLogger(config LogConfig) error {
	logger := GetLogger()
	logger.SetLevel(config.Level)

	logger.sink.mu.Lock()
	if config.MaxFileSize > 0 {
		logger.sink.maxFileSize = config.MaxFileSize
	}
	if config.MaxBackups > 0 {
		logger.sink.maxBackups = config.MaxBackups
	}
	logger.sink.mu.Unlock()

	if config.Console != nil {
		logger.SetOutput(config.Console)
	}

	if config.EnableFile {
		return logger.EnableFileLogging()
	}
	return nil
}

// WithComponent returns a logger whose lines are tagged with name.
func (l *AppLogger) WithComponent(name string) *AppLogger {
	return &AppLogger{sink: l.sink, component: name}
}

// SetLevel sets the minimum log level.
func (l *AppLogger) SetLevel(level LogLevel) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.level = level
}

// Level returns the minimum log level.
func (l *AppLogger) Level() LogLevel {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return l.sink.level
}

// SetVerbose switches between debug and info output. It backs the
// logging toggle in the settings file.
func (l *AppLogger) SetVerbose(verbose bool) {
	if verbose {
		l.SetLevel(LevelDebug)
		return
	}
	l.SetLevel(LevelInfo)
}

// SetOutput sets the terminal output destination. An open log file keeps
// receiving a copy.
func (l *AppLogger) SetOutput(w io.Writer) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.console = w
	l.sink.resetLocked()
}

func (s *logSink) resetLocked() {
	if s.logFile != nil {
		s.logger = log.New(io.MultiWriter(s.console, s.logFile), "", 0)
		return
	}
	s.logger = log.New(s.console, "", 0)
}

// EnableFileLogging mirrors output into the log file under the config
// directory. The file is rotated once it grows past maxFileSize.
func (l *AppLogger) EnableFileLogging() error {
	logDir := GetLogDir()
	if logDir == "" {
		return fmt.Errorf("unable to resolve log directory")
	}

	if isSymlink(logDir) {
		return fmt.Errorf("security error: log directory is a symlink")
	}
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return err
	}

	logPath := filepath.Join(logDir, LogFileName)
	if isSymlink(logPath) {
		return fmt.Errorf("security error: log file is a symlink")
	}

	l.rotateIfNeeded(logPath)

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return err
	}

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if l.sink.logFile != nil {
		l.sink.logFile.Close()
	}
	l.sink.logFile = file
	l.sink.filePath = logPath
	l.sink.resetLocked()
	return nil
}

// isSymlink reports whether path is a symbolic link. Missing paths are not.
func isSymlink(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeSymlink != 0
}

func (l *AppLogger) rotateIfNeeded(logPath string) {
	info, err := os.Stat(logPath)
	if err != nil {
		return
	}

	l.sink.mu.Lock()
	limit := l.sink.maxFileSize
	l.sink.mu.Unlock()

	if info.Size() < limit {
		return
	}
	l.rotate(logPath)
}

// rotate compresses the current file into a timestamped backup and prunes
// backups beyond maxBackups.
func (l *AppLogger) rotate(logPath string) {
	l.sink.mu.Lock()
	if l.sink.logFile != nil {
		l.sink.logFile.Close()
		l.sink.logFile = nil
		l.sink.resetLocked()
	}
	keep := l.sink.maxBackups
	l.sink.mu.Unlock()

	rotatedPath := fmt.Sprintf("%s.%s.gz", logPath, time.Now().Format("20060102-150405"))
	if err := compressFile(logPath, rotatedPath); err != nil {
		os.Rename(logPath, strings.TrimSuffix(rotatedPath, ".gz"))
	} else {
		os.Remove(logPath)
	}

	pruneBackups(logPath, keep)
}

func compressFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer dstFile.Close()

	gzWriter := gzip.NewWriter(dstFile)
	defer gzWriter.Close()

	_, err = io.Copy(gzWriter, srcFile)
	return err
}

// pruneBackups removes the oldest backups of logPath beyond keep.
func pruneBackups(logPath string, keep int) {
	matches, err := filepath.Glob(logPath + ".*")
	if err != nil || len(matches) <= keep {
		return
	}

	sort.Slice(matches, func(i, j int) bool {
		infoI, _ := os.Stat(matches[i])
		infoJ, _ := os.Stat(matches[j])
		if infoI == nil || infoJ == nil {
			return false
		}
		return infoI.ModTime().Before(infoJ.ModTime())
	})

	for _, old := range matches[:len(matches)-keep] {
		os.Remove(old)
	}
}

// GetLogDir returns the log directory path.
func GetLogDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config", ConfigDirName, "logs")
}

func (l *AppLogger) log(level LogLevel, msg string, args ...interface{}) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if level < l.sink.level {
		return
	}

	caller := "???"
	if _, file, line, ok := runtime.Caller(2); ok {
		caller = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}

	formatted := msg
	if len(args) > 0 {
		formatted = fmt.Sprintf(msg, args...)
	}

	tag := ""
	if l.component != "" {
		tag = "[" + l.component + "] "
	}

	l.sink.logger.Printf("%s [%s] %s: %s%s",
		time.Now().Format("2006/01/02 15:04:05"), level.String(), caller, tag, formatted)
}

// Debug logs a debug message.
func (l *AppLogger) Debug(msg string, args ...interface{}) {
	l.log(LevelDebug, msg, args...)
}

// Info logs an informational message.
func (l *AppLogger) Info(msg string, args ...interface{}) {
	l.log(LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *AppLogger) Warn(msg string, args ...interface{}) {
	l.log(LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *AppLogger) Error(msg string, args ...interface{}) {
	l.log(LevelError, msg, args...)
}

// LogInfo logs an info message to the process logger.
func LogInfo(msg string, args ...interface{}) {
	GetLogger().Info(msg, args...)
}

// LogWarn logs a warning message to the process logger.
func LogWarn(msg string, args ...interface{}) {
	GetLogger().Warn(msg, args...)
}

// LogError logs an error message to the process logger.
func LogError(msg string, args ...interface{}) {
	GetLogger().Error(msg, args...)
}

// Close closes the log file. Should be called on application shutdown.
func (l *AppLogger) Close() error {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if l.sink.logFile != nil {
		err := l.sink.logFile.Close()
		l.sink.logFile = nil
		l.sink.resetLocked()
		return err
	}
	return nil
}

// CloseLogger closes the process logger.
func CloseLogger() error {
	return GetLogger().Close()
}
