package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Leveled package logger shared by the API server and its tools.
// Init(level) once at startup; the *w variants take key/value pairs and
// render them as key=value after the message.

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var (
	mu     sync.RWMutex
	logger *log.Logger = log.New(os.Stdout, "", 0)
	level  Level       = LevelInfo
)

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Unknown values fall back to info.
func Init(l string) {
	mu.Lock()
	defer mu.Unlock()
	level = ParseLevel(l)
}

// ParseLevel converts a level name to a Level.
func ParseLevel(l string) Level {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	}
	return LevelInfo
}

// SetOutput redirects log output; used by tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = log.New(w, "", 0)
}

func header(lvl string) string {
	return fmt.Sprintf("%s [%s] ", time.Now().UTC().Format(time.RFC3339), strings.ToUpper(lvl))
}

func shouldLog(l Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return l >= level
}

func output(lvl Level, name, msg string) {
	if !shouldLog(lvl) {
		return
	}
	mu.RLock()
	l := logger
	mu.RUnlock()
	l.Print(header(name) + msg)
}

// fields renders kv pairs as ` k=v k2=v2`. A trailing key without value is
// rendered with value "(missing)".
func fields(kv []interface{}) string {
	if len(kv) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(kv); i += 2 {
		k := fmt.Sprint(kv[i])
		var v interface{} = "(missing)"
		if i+1 < len(kv) {
			v = kv[i+1]
		}
		s := fmt.Sprint(v)
		if strings.ContainsAny(s, " \t\"=") {
			s = fmt.Sprintf("%q", s)
		}
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(s)
	}
	return b.String()
}

func Debugf(format string, v ...interface{}) { output(LevelDebug, "debug", fmt.Sprintf(format, v...)) }
func Infof(format string, v ...interface{})  { output(LevelInfo, "info", fmt.Sprintf(format, v...)) }
func Warnf(format string, v ...interface{})  { output(LevelWarn, "warn", fmt.Sprintf(format, v...)) }
func Errorf(format string, v ...interface{}) { output(LevelError, "error", fmt.Sprintf(format, v...)) }

func Fatalf(format string, v ...interface{}) {
	output(LevelFatal, "fatal", fmt.Sprintf(format, v...))
	os.Exit(1)
}

func Debugw(msg string, kv ...interface{}) { output(LevelDebug, "debug", msg+fields(kv)) }
func Infow(msg string, kv ...interface{})  { output(LevelInfo, "info", msg+fields(kv)) }
func Warnw(msg string, kv ...interface{})  { output(LevelWarn, "warn", msg+fields(kv)) }
func Errorw(msg string, kv ...interface{}) { output(LevelError, "error", msg+fields(kv)) }

func Debug(v string) { Debugf("%s", v) }
func Info(v string)  { Infof("%s", v) }
func Warn(v string)  { Warnf("%s", v) }
func Error(v string) { Errorf("%s", v) }

// LevelString returns the current level as text.
func LevelString() string {
	mu.RLock()
	defer mu.RUnlock()
	switch level {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	}
	return "info"
}
