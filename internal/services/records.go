package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/medvault/internal/common"
	"github.com/dmitrijs2005/medvault/internal/logging"
	"github.com/dmitrijs2005/medvault/internal/models"
	"github.com/dmitrijs2005/medvault/internal/objectstore"
	"github.com/dmitrijs2005/medvault/internal/repositories/records"
)

// RecordService lists and removes a user's references.
type RecordService interface {
	List(ctx context.Context, ownerID string) ([]*models.FileRecordReference, error)
	Delete(ctx context.Context, recordID, ownerID string) error
}

type recordService struct {
	store   objectstore.Store
	records records.Repository
	log     logging.Logger
}

// NewRecordService returns a RecordService.
func NewRecordService(store objectstore.Store, repo records.Repository, log logging.Logger) RecordService {
	return &recordService{store: store, records: repo, log: log}
}

func (s *recordService) List(ctx context.Context, ownerID string) ([]*models.FileRecordReference, error) {
	if ownerID == "" {
		return nil, common.ErrInvalidIdentifier
	}
	return s.records.ListByOwner(ctx, ownerID)
}

// Delete drops the reference first and the blob second, so a failure
// never leaves a reference pointing at a missing blob.
func (s *recordService) Delete(ctx context.Context, recordID, ownerID string) error {
	ref, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		return err
	}
	if ref.OwnerID != ownerID {
		return fmt.Errorf("record %s: %w", recordID, common.ErrNotFound)
	}

	if err := s.records.Delete(ctx, recordID); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, ref.StoragePath); err != nil {
		s.log.Warn(ctx, "blob not removed", "record_id", recordID, "storage_path", ref.StoragePath, "error", err)
	}

	s.log.Info(ctx, "record deleted", "record_id", recordID)
	return nil
}
