package store

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// AccessDeniedError is returned when the operating system refuses to let
// this process read the archive.
type AccessDeniedError struct {
	Path string
	Err  error
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("access to message archive %s denied (%v): grant Full Disk Access to the program running msgarchive "+
		"(System Settings > Privacy & Security > Full Disk Access) and restart it", e.Path, e.Err)
}

func (e *AccessDeniedError) Unwrap() error {
	return e.Err
}

// IsAccessDenied reports whether err is an AccessDeniedError.
func IsAccessDenied(err error) bool {
	var ade *AccessDeniedError
	return errors.As(err, &ade)
}

var deniedSignatures = []string{
	"authorization denied",
	"operation not permitted",
	"permission denied",
}

// classifyOpenError turns permission failures into AccessDeniedError and
// wraps everything else as a plain open error.
func classifyOpenError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("open archive %s: %w", path, err)
	}
	if errors.Is(err, fs.ErrPermission) {
		return &AccessDeniedError{Path: path, Err: err}
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		switch se.Code {
		case sqlite3.ErrPerm, sqlite3.ErrAuth:
			return &AccessDeniedError{Path: path, Err: err}
		}
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range deniedSignatures {
		if strings.Contains(msg, sig) {
			return &AccessDeniedError{Path: path, Err: err}
		}
	}
	return fmt.Errorf("open archive %s: %w", path, err)
}
