package progress

import "context"

// Store persists Progress records keyed by user ID.
type Store interface {
	// Load returns ErrNotFound when the user has no record.
	Load(ctx context.Context, userID string) (*Progress, error)
	Save(ctx context.Context, p *Progress) error
	Delete(ctx context.Context, userID string) error
}
