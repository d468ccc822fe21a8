package pkgresolve

import (
	"errors"

	"github.com/albertocavalcante/go-pkgresolve/platform"
	"github.com/albertocavalcante/go-pkgresolve/version"
)

// Sentinel errors for resolution failures.
var (
	// ErrInvalidDownloadPath indicates that no package matches the request.
	ErrInvalidDownloadPath = errors.New("no package matches the request")

	// ErrInvalidPlatform indicates an unknown platform, or a platform
	// version or architecture that cannot be mapped.
	ErrInvalidPlatform = platform.ErrInvalidPlatform

	// ErrUnsupportedVersionFormat indicates a requested version string that
	// no supported format accepts.
	ErrUnsupportedVersionFormat = version.ErrUnsupportedFormat
)
