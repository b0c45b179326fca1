package commons

// Response is the JSON envelope of the operational listener. Count is set for
// list payloads so clients can page-check without decoding Data.
type Response[T any] struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Count   *int     `json:"count,omitempty"`
	Data    *T       `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{
		Success: true,
		Message: message,
		Data:    &data,
	}
}

func ListResponse[T any](message string, items []T) Response[[]T] {
	count := len(items)
	return Response[[]T]{
		Success: true,
		Message: message,
		Count:   &count,
		Data:    &items,
	}
}

func ErrorResponse[T any](message string, errs ...string) Response[T] {
	return Response[T]{
		Success: false,
		Message: message,
		Errors:  errs,
	}
}
