// Package jsonresponse enables consistent responses across all handlers.
package jsonresponse

// jsonError provides type for explicit json encoded error response.
type jsonError struct {
	Error string `json:"error"`
}

// Error wraps a given err into json friendly struct.
func Error(err error) jsonError {
	return jsonError{Error: err.Error()}
}

// ErrorMessage wraps a prebuilt message into json friendly struct.
func ErrorMessage(msg string) jsonError {
	return jsonError{Error: msg}
}

// Status is the common envelope for money movement endpoints.
type Status struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Success returns a success envelope with the given message.
func Success(msg string) Status {
	return Status{Status: "success", Message: msg}
}

// Fail returns a fail envelope with the given message.
func Fail(msg string) Status {
	return Status{Status: "fail", Message: msg}
}
