package xnode

import "errors"

// ErrorTag classifies a Failure result or a control-plane rejection, per the error taxonomy.
type ErrorTag string

const (
	SchemaError     ErrorTag = "SchemaError"
	UnknownCommand  ErrorTag = "UnknownCommand"
	UnknownLeaf     ErrorTag = "UnknownLeaf"
	DuplicateLeaf   ErrorTag = "DuplicateLeaf"
	UnknownTree     ErrorTag = "UnknownTree"
	DuplicateTree   ErrorTag = "DuplicateTree"
	LeafUnavailable ErrorTag = "LeafUnavailable"
	RemoteError     ErrorTag = "RemoteError"
	Timeout         ErrorTag = "Timeout"
	Cancelled       ErrorTag = "Cancelled"
	TransportError  ErrorTag = "TransportError"
)

// Error pairs an ErrorTag with a human-readable message; it implements the error interface so it can be returned
// from a behaviortree.Tick or from control-plane handlers alike.
type Error struct {
	Tag     ErrorTag
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Tag)
	}
	return string(e.Tag) + ": " + e.Message
}

// NewError constructs an *Error with the given tag and message.
func NewError(tag ErrorTag, message string) *Error {
	return &Error{Tag: tag, Message: message}
}

// TagOf extracts the ErrorTag from err, if it (or something it wraps) is an *Error, else returns "".
func TagOf(err error) ErrorTag {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Tag
	}
	return ""
}
