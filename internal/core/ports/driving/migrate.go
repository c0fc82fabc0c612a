package driving

import "context"

// MigrationService applies the storage schema.
type MigrationService interface {
	// Migrate applies pending migrations and returns how many ran.
	Migrate(ctx context.Context) (int, error)
}
