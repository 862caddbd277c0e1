package scriptgen

import (
	"context"

	"github.com/google/uuid"
)

// Store defines the interface for generation history persistence.
type Store interface {
	// Create creates a new generation record.
	Create(ctx context.Context, rec *GenerationRecord) error

	// GetByID retrieves a record by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*GenerationRecord, error)

	// List retrieves records, newest first.
	List(ctx context.Context, limit, offset int) ([]*GenerationRecord, error)

	// Count returns the total number of records.
	Count(ctx context.Context) (int64, error)

	// Update updates a record with setter functions.
	Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error

	// Delete deletes a record by its ID.
	Delete(ctx context.Context, id uuid.UUID) error
}

// UpdateSetter returns the column-value pairs to apply in a partial UPDATE.
type UpdateSetter func() map[string]interface{}
