package helpers

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"sjsage522/brochureworker/logger"
)

// FailureRecorder records per-shop failures of a run
type FailureRecorder interface {
	RecordFailure(shop string, err error)
}

// FailureLog appends shop failures to a file
type FailureLog struct {
	mu   sync.Mutex
	path string
}

// NewFailureLog creates a failure log writing to path
func NewFailureLog(path string) *FailureLog {
	return &FailureLog{path: path}
}

// RecordFailure appends a line with timestamp, shop and error to the log file
func (l *FailureLog) RecordFailure(shop string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "." {
		if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
			logger.Error("Failed to create failure log directory: %v", mkErr)
			return
		}
	}

	f, openErr := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if openErr != nil {
		logger.Error("Failed to open failure log %s: %v", l.path, openErr)
		return
	}
	defer f.Close()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(f, "[%s] [%s] %s\n", timestamp, shop, err.Error())
}
