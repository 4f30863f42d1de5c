package gallery

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by repositories when a record does not exist
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned by repositories on a unique constraint violation
	ErrDuplicate = errors.New("duplicate")
)

// Status is the outcome of a workflow operation, mapped to a public-facing page by the HTTP layer
type Status int

const (
	StatusSuccess Status = iota
	StatusUnauthorized
	StatusForbidden
	StatusNotFound
	StatusInvalidRequest
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusUnauthorized:
		return "Unauthorized"
	case StatusForbidden:
		return "Forbidden"
	case StatusNotFound:
		return "NotFound"
	case StatusInvalidRequest:
		return "InvalidRequest"
	}
	return "Error"
}

// Reason refines a Status, e.g. Forbidden because the gallery expired
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonGalleryNotFound Reason = "gallery_not_found"
	ReasonGalleryInactive Reason = "gallery_inactive"
	ReasonExpired         Reason = "expired"
	ReasonLoginRequired   Reason = "login_required"
	ReasonNoGrant         Reason = "no_access_grant"
	ReasonNoCapability    Reason = "missing_capability"
	ReasonSessionInvalid  Reason = "session_invalid"
	ReasonPhotoNotFound   Reason = "photo_not_found"
	ReasonNothingToRecord Reason = "nothing_to_record"
	ReasonNotesTooLong    Reason = "notes_too_long"
	ReasonNoPhotos        Reason = "no_photos"
	ReasonTooManyPhotos   Reason = "too_many_photos"
	ReasonPageOutOfRange  Reason = "page_out_of_range"
	ReasonSessionNotFound Reason = "session_not_found"
	ReasonInternal        Reason = "internal"
)

// Error is the only error type returned by Service operations
type Error struct {
	Status  Status
	Reason  Reason
	Message string // safe to show to a gallery visitor
	Err     error  // internal detail, logged and never shown
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Status, e.Reason, e.Message, e.Err)
	}
	return fmt.Sprintf("%s (%s): %s", e.Status, e.Reason, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(status Status, reason Reason, message string) *Error {
	return &Error{Status: status, Reason: reason, Message: message}
}

func internalError(err error) *Error {
	return &Error{Status: StatusError, Reason: ReasonInternal, Message: "Something went wrong, please try again later", Err: err}
}

// StatusOf returns Success for nil, the Status of an *Error, and Error for anything else
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return StatusError
}

// ReasonOf returns the Reason of an *Error, if any
func ReasonOf(err error) Reason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ReasonNone
}
