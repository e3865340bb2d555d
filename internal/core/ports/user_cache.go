package ports

import "context"

// UserCache is a short-TTL byte cache for the rendered user listing. Writes to
// the user collection invalidate it; a miss falls through to the repository.
type UserCache interface {
	Get(ctx context.Context) ([]byte, bool, error)
	Set(ctx context.Context, payload []byte) error
	Invalidate(ctx context.Context) error
}
