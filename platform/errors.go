package platform

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPlatform indicates a platform, platform version or
	// architecture that cannot be mapped onto a known platform.
	ErrInvalidPlatform = errors.New("invalid platform")

	// ErrPlatformMismatch indicates a comparison between versions of two
	// different mapped platforms.
	ErrPlatformMismatch = errors.New("platform mismatch")
)

// Position is a location in a platform definition file.
type Position struct {
	Filename string
	Line     int
	Column   int
}

// LoadError reports a problem in a platform definition file.
type LoadError struct {
	Pos     Position
	Message string
	Wrapped error
}

func (e *LoadError) Error() string {
	if e.Pos.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename, e.Pos.Line, e.Pos.Column, e.Message)
	}
	if e.Pos.Filename != "" {
		return e.Pos.Filename + ": " + e.Message
	}
	return e.Message
}

func (e *LoadError) Unwrap() error {
	return e.Wrapped
}
