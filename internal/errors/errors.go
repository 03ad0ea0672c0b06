package errors

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// FileError is a compilation error attributed to a template source file.
type FileError struct {
	File      string
	Err       error
	Timestamp time.Time
}

// Error implements the error interface
func (fe *FileError) Error() string {
	return fmt.Sprintf("%s: %v", fe.File, fe.Err)
}

// Unwrap returns the underlying compilation error
func (fe *FileError) Unwrap() error {
	return fe.Err
}

// ErrorCollector collects errors from multi-file runs
type ErrorCollector struct {
	fileErrors []FileError
	mutex      sync.RWMutex
}

// NewErrorCollector creates a new error collector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		fileErrors: make([]FileError, 0),
	}
}

// Add records err against file. Nil errors are ignored, and a *FileError is
// recorded under its own file.
func (ec *ErrorCollector) Add(file string, err error) {
	if err == nil {
		return
	}
	if fe, ok := err.(*FileError); ok {
		file, err = fe.File, fe.Err
	}
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.fileErrors = append(ec.fileErrors, FileError{
		File:      file,
		Err:       err,
		Timestamp: time.Now(),
	})
}

// GetErrors returns all collected errors
func (ec *ErrorCollector) GetErrors() []FileError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	// Return a copy to avoid race conditions
	result := make([]FileError, len(ec.fileErrors))
	copy(result, ec.fileErrors)
	return result
}

// GetErrorsByFile returns errors for a specific file
func (ec *ErrorCollector) GetErrorsByFile(file string) []FileError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	var fileErrors []FileError
	for _, err := range ec.fileErrors {
		if err.File == file {
			fileErrors = append(fileErrors, err)
		}
	}
	return fileErrors
}

// GetErrorsByKind returns errors whose markup error kind is kind
func (ec *ErrorCollector) GetErrorsByKind(kind Kind) []FileError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	var kindErrors []FileError
	for _, err := range ec.fileErrors {
		if KindOf(err.Err) == kind {
			kindErrors = append(kindErrors, err)
		}
	}
	return kindErrors
}

// HasErrors returns true if there are any errors
func (ec *ErrorCollector) HasErrors() bool {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	return len(ec.fileErrors) > 0
}

// Clear clears all errors
func (ec *ErrorCollector) Clear() {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.fileErrors = ec.fileErrors[:0]
}

// Err returns nil when nothing was collected, the single error when there is
// one, and a joined error otherwise.
func (ec *ErrorCollector) Err() error {
	errs := ec.GetErrors()
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return &errs[0]
	}
	joined := make([]error, len(errs))
	for i := range errs {
		joined[i] = &errs[i]
	}
	return errors.Join(joined...)
}
