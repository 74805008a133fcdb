package service

// Fetched is the outcome of a best-effort fetch.
// When Degraded is non-nil, Value is the fallback and Degraded is the reason.
type Fetched[T any] struct {
	Value    T
	Degraded error
}

// OK reports whether Value came from the provider.
func (f Fetched[T]) OK() bool {
	return f.Degraded == nil
}

func fetchedOK[T any](v T) Fetched[T] {
	return Fetched[T]{Value: v}
}

func fetchedDegraded[T any](fallback T, err error) Fetched[T] {
	return Fetched[T]{Value: fallback, Degraded: err}
}
