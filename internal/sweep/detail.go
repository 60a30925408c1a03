package sweep

import "context"

// DetailFetcher retrieves extended attributes for one device on
// demand. It is a capability the engine depends on, not implements:
// implementations are pluggable and a failure is reported as
// ErrDetailUnavailable without touching the device's core fields.
type DetailFetcher interface {
	Fetch(ctx context.Context, address string) (map[string]string, error)
}

// DetailFetcherFunc adapts a function to the DetailFetcher interface.
type DetailFetcherFunc func(ctx context.Context, address string) (map[string]string, error)

// Fetch implements DetailFetcher.
func (f DetailFetcherFunc) Fetch(ctx context.Context, address string) (map[string]string, error) {
	return f(ctx, address)
}
