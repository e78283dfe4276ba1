package records

import (
	"context"

	"github.com/dmitrijs2005/medvault/internal/models"
)

// Repository stores and reads file record references.
type Repository interface {
	// Create inserts a new reference together with its tags.
	Create(ctx context.Context, ref *models.FileRecordReference) error

	// GetByID returns the reference or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.FileRecordReference, error)

	// ListByOwner returns the owner's references, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]*models.FileRecordReference, error)

	// Delete removes the reference. Exactly one row must be affected.
	Delete(ctx context.Context, id string) error
}
