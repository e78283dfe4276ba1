// Package services wires the encryption pipeline to its collaborators: it
// uploads picked files and turns stored references back into viewable
// resources.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/medvault/internal/common"
	"github.com/dmitrijs2005/medvault/internal/cryptox"
	"github.com/dmitrijs2005/medvault/internal/filex"
	"github.com/dmitrijs2005/medvault/internal/logging"
	"github.com/dmitrijs2005/medvault/internal/models"
	"github.com/dmitrijs2005/medvault/internal/objectstore"
	"github.com/dmitrijs2005/medvault/internal/repositories/records"
	"github.com/google/uuid"
)

// Sealer is an Encryptor that can name its method for the record descriptor.
type Sealer interface {
	cryptox.Encryptor
	Method() string
}

// UploadOrchestrator reads a picked file, encrypts it when its type is
// sensitive, stores the blob and records where it went.
type UploadOrchestrator interface {
	UploadEncrypted(ctx context.Context, src filex.Source, userID, mimeType string, opts ...UploadOption) (*models.FileRecordReference, error)
}

// UploadOption customizes the record written for an upload.
type UploadOption func(*models.FileRecordReference)

// WithTitle sets the record title. It defaults to the source file name.
func WithTitle(title string) UploadOption {
	return func(r *models.FileRecordReference) {
		if title = strings.TrimSpace(title); title != "" {
			r.Title = title
		}
	}
}

// WithTags attaches tags to the record.
func WithTags(tags ...string) UploadOption {
	return func(r *models.FileRecordReference) {
		for _, t := range tags {
			if t = strings.TrimSpace(t); t != "" {
				r.Tags = append(r.Tags, t)
			}
		}
	}
}

type uploadOrchestrator struct {
	deriver   cryptox.KeyDeriver
	encryptor Sealer
	store     objectstore.Store
	records   records.Repository
	policy    *SensitivePolicy
	log       logging.Logger
	now       func() time.Time
}

// NewUploadOrchestrator returns an UploadOrchestrator over the given collaborators.
func NewUploadOrchestrator(
	deriver cryptox.KeyDeriver,
	encryptor Sealer,
	store objectstore.Store,
	repo records.Repository,
	policy *SensitivePolicy,
	log logging.Logger,
) UploadOrchestrator {
	return &uploadOrchestrator{
		deriver:   deriver,
		encryptor: encryptor,
		store:     store,
		records:   repo,
		policy:    policy,
		log:       log,
		now:       time.Now,
	}
}

// UploadEncrypted runs read, optional encrypt, upload and persist in that
// order. Any failure wraps common.ErrUploadFailure and no reference is
// returned; a blob whose reference could not be saved is removed again.
func (s *uploadOrchestrator) UploadEncrypted(ctx context.Context, src filex.Source, userID, mimeType string, opts ...UploadOption) (*models.FileRecordReference, error) {
	if userID == "" {
		return nil, uploadErr(common.ErrInvalidIdentifier)
	}

	plaintext, err := src.ReadAll(ctx)
	if err != nil {
		return nil, uploadErr(fmt.Errorf("read file: %w", err))
	}
	defer common.WipeByteArray(plaintext)

	now := s.now().UTC()
	ref := &models.FileRecordReference{
		ID:          uuid.NewString(),
		OwnerID:     userID,
		Title:       src.Name(),
		MimeType:    mimeType,
		StoragePath: objectstore.NewStoragePath(now),
		Size:        int64(len(plaintext)),
		CreatedAt:   now,
	}
	for _, opt := range opts {
		opt(ref)
	}

	payload, contentType := plaintext, mimeType
	if s.policy.IsSensitive(mimeType) {
		key, err := s.deriver.DeriveKey(userID)
		if err != nil {
			return nil, uploadErr(err)
		}
		payload, err = s.encryptor.Encrypt(plaintext, key)
		if err != nil {
			return nil, uploadErr(err)
		}
		contentType = objectstore.OpaqueContentType
		ref.Encryption = models.EncryptionDescriptor{
			Encrypted:      true,
			Method:         s.encryptor.Method(),
			KeyFingerprint: key.Fingerprint(),
		}
	}

	locator, err := s.store.Put(ctx, ref.StoragePath, payload, contentType)
	if err != nil {
		return nil, uploadErr(err)
	}
	ref.Locator = locator

	if err := s.records.Create(ctx, ref); err != nil {
		// a blob without a reference is unreachable; drop it
		if derr := s.store.Delete(context.WithoutCancel(ctx), ref.StoragePath); derr != nil {
			s.log.Warn(ctx, "orphaned blob left in object store", "storage_path", ref.StoragePath, "error", derr)
		}
		return nil, uploadErr(fmt.Errorf("save reference: %w", err))
	}

	s.log.Info(ctx, "file uploaded",
		"record_id", ref.ID,
		"storage_path", ref.StoragePath,
		"mime_type", ref.MimeType,
		"size", ref.Size,
		"encrypted", ref.Encryption.Encrypted,
	)

	return ref, nil
}

func uploadErr(err error) error {
	if errors.Is(err, common.ErrUploadFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", common.ErrUploadFailure, err)
}
