package dashboard

// Status tells an empty answer apart from a failed one.
type Status string

const (
	StatusOK    Status = "ok"
	StatusEmpty Status = "empty"
	StatusError Status = "error"
)

// Result carries the outcome of a GitHub-backed read. On StatusError, Data is
// the zero value and Err holds the cause.
type Result[T any] struct {
	Status Status
	Data   T
	Err    error
}

func ok[T any](data T, empty bool) Result[T] {
	if empty {
		return Result[T]{Status: StatusEmpty, Data: data}
	}
	return Result[T]{Status: StatusOK, Data: data}
}

func failed[T any](zero T, err error) Result[T] {
	return Result[T]{Status: StatusError, Data: zero, Err: err}
}
