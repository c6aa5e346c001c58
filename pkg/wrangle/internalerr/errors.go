package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrUnsupportedConfig = errors.New("unsupported configuration")
	ErrNotImplemented    = errors.New("not implemented")
	ErrBadExtension      = errors.New("unexpected file extension")
	ErrMalformedRecord   = errors.New("malformed record")
	ErrToolUnavailable   = errors.New("external tool unavailable")
)
