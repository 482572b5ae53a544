package api

import "errors"

// RequestError is any non-2xx response. Its text is the server message.
type RequestError struct {
	Status  int
	Message string
	// Fallback is set when the response carried no message and Message is
	// the client's fallback text.
	Fallback bool
}

func (e *RequestError) Error() string { return e.Message }

// AuthError marks failures that invalidate the session: rejected
// credentials and 401/403 responses.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return "unauthorized"
	}
	return e.Err.Error()
}

func (e *AuthError) Unwrap() error { return e.Err }

// IsAuth reports whether err carries an AuthError.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// Message returns the text to show the user for err. It is empty when the
// server sent no message, leaving the wording to the caller.
func Message(err error) string {
	var re *RequestError
	if errors.As(err, &re) {
		if re.Fallback {
			return ""
		}
		return re.Message
	}
	return err.Error()
}
