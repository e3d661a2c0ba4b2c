package httpdto

// Response is the envelope every REST endpoint answers with. Data and
// Error are mutually exclusive: exactly one of them is set.
type Response[T any] struct {
	Success bool      `json:"success"`
	Data    T         `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

// APIError pairs a stable machine-readable code with human-readable
// text. The code vocabulary is the handler error mapping:
// INVALID_REQUEST, INVALID_INPUT, UNAUTHORIZED, FORBIDDEN, NOT_FOUND,
// CONFLICT, INTERNAL.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewSuccessResponse[T any](data T) Response[T] {
	return Response[T]{
		Success: true,
		Data:    data,
	}
}

func NewErrorResponse(message string, code string) Response[any] {
	return Response[any]{
		Error: &APIError{Code: code, Message: message},
	}
}
