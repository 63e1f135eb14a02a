package models

import "errors"

var (
	ErrDuplicateEvent         = errors.New("duplicate event")
	ErrIgnoredEvent           = errors.New("ignored event")
	ErrMalformedInbound       = errors.New("malformed inbound event")
	ErrUnsupportedFormat      = errors.New("unsupported document format")
	ErrExtractionFailed       = errors.New("text extraction failed")
	ErrDownloadFailed         = errors.New("media download failed")
	ErrStorageFailed          = errors.New("document storage failed")
	ErrStoreUnavailable       = errors.New("candidate store unavailable")
	ErrAlreadyExists          = errors.New("candidate already exists")
	ErrNotFound               = errors.New("candidate not found")
	ErrInvalidPhaseTransition = errors.New("invalid process phase transition")
	ErrAgentInvocationFailed  = errors.New("agent invocation failed")
)
