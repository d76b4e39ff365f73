package protocol

import "fmt"

// ErrorPayload is the normalized error shape carried by terminal
// ui-message-response messages. The embedded content renders Message;
// Name distinguishes error classes (timeouts, unsupported capabilities).
type ErrorPayload struct {
	Message string `json:"message"`
	Name    string `json:"name,omitempty"`
}

func (e ErrorPayload) Error() string {
	if e.Name != "" {
		return e.Name + ": " + e.Message
	}
	return e.Message
}

// NormalizeError converts any failure value into the ErrorPayload shape.
// Go errors keep their text; an ErrorPayload passes through unchanged;
// anything else is stringified.
func NormalizeError(cause any) ErrorPayload {
	switch v := cause.(type) {
	case nil:
		return ErrorPayload{Message: "unknown error", Name: "Error"}
	case ErrorPayload:
		if v.Name == "" {
			v.Name = "Error"
		}
		return v
	case *ErrorPayload:
		if v == nil {
			return ErrorPayload{Message: "unknown error", Name: "Error"}
		}
		return NormalizeError(*v)
	case error:
		return ErrorPayload{Message: v.Error(), Name: errorName(v)}
	default:
		return ErrorPayload{Message: fmt.Sprint(v)}
	}
}

type namedError interface {
	error
	ErrorName() string
}

func errorName(err error) string {
	if named, ok := err.(namedError); ok {
		return named.ErrorName()
	}
	return "Error"
}
