package interfaces

import "context"

// Repository persists the single OAuth token pair of the deployment as two independent values.
// Getters return "" without error when the value has never been stored. Writes are last-write-wins;
// concurrent refreshes from separate requests are not serialized.
type Repository interface {
	GetAccessToken(ctx context.Context) (string, error)
	GetRefreshToken(ctx context.Context) (string, error)
	PutAccessToken(ctx context.Context, token string) error
	PutRefreshToken(ctx context.Context, token string) error

	Close() error
}
