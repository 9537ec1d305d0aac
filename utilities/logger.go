package utilities

import (
	"io"
	"log"
	"os"
	"sync/atomic"
	"time"
)

const logFlags = log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile

var (
	InfoLogger  = log.New(os.Stdout, "\033[32m[INFO]\033[0m ", logFlags)
	WarnLogger  = log.New(os.Stdout, "\033[33m[WARN]\033[0m ", logFlags)
	ErrorLogger = log.New(os.Stderr, "\033[31m[ERROR]\033[0m ", logFlags)
	DebugLogger = log.New(os.Stdout, "\033[36m[DEBUG]\033[0m ", logFlags)

	debugEnabled atomic.Bool
)

// InitLogger configures the loggers. Debug lines are dropped unless debug is set.
func InitLogger(debug bool) {
	log.SetFlags(logFlags)
	debugEnabled.Store(debug)
}

// SetOutput redirects every logger to w. Tests use it to silence or capture logs.
func SetOutput(w io.Writer) {
	InfoLogger.SetOutput(w)
	WarnLogger.SetOutput(w)
	ErrorLogger.SetOutput(w)
	DebugLogger.SetOutput(w)
}

// LogRequest records one served HTTP request.
func LogRequest(method, path, remoteAddr string, status int, duration time.Duration) {
	InfoLogger.Printf("%s %s %s %d %v", method, path, remoteAddr, status, duration)
}

// LogError records err with the operation it came from.
func LogError(err error, context string) {
	ErrorLogger.Printf("%s: %v", context, err)
}

func LogWarn(format string, v ...interface{}) {
	WarnLogger.Printf(format, v...)
}

func LogDebug(format string, v ...interface{}) {
	if !debugEnabled.Load() {
		return
	}
	DebugLogger.Printf(format, v...)
}

func LogInfo(format string, v ...interface{}) {
	InfoLogger.Printf(format, v...)
}
