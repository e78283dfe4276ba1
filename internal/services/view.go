package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/medvault/internal/common"
	"github.com/dmitrijs2005/medvault/internal/cryptox"
	"github.com/dmitrijs2005/medvault/internal/logging"
	"github.com/dmitrijs2005/medvault/internal/materialize"
	"github.com/dmitrijs2005/medvault/internal/models"
	"github.com/dmitrijs2005/medvault/internal/objectstore"
	"github.com/dmitrijs2005/medvault/internal/repositories/records"
)

// Opener is a Decryptor that can name its method, so records sealed with
// another method are refused up front.
type Opener interface {
	cryptox.Decryptor
	Method() string
}

// ViewService turns a stored reference back into something a viewer can render.
type ViewService interface {
	// View downloads, decrypts when needed and materializes the record.
	View(ctx context.Context, recordID, userID string) (materialize.ViewableResource, error)

	// Open is View without the materialize step; it returns plaintext bytes.
	Open(ctx context.Context, recordID, userID string) (*models.FileRecordReference, []byte, error)
}

type viewService struct {
	deriver      cryptox.KeyDeriver
	decryptor    Opener
	store        objectstore.Store
	records      records.Repository
	materializer materialize.ResourceMaterializer
	log          logging.Logger
}

// NewViewService returns a ViewService over the given collaborators.
func NewViewService(
	deriver cryptox.KeyDeriver,
	decryptor Opener,
	store objectstore.Store,
	repo records.Repository,
	materializer materialize.ResourceMaterializer,
	log logging.Logger,
) ViewService {
	return &viewService{
		deriver:      deriver,
		decryptor:    decryptor,
		store:        store,
		records:      repo,
		materializer: materializer,
		log:          log,
	}
}

func (s *viewService) View(ctx context.Context, recordID, userID string) (materialize.ViewableResource, error) {
	ref, plaintext, err := s.Open(ctx, recordID, userID)
	if err != nil {
		return materialize.ViewableResource{}, err
	}
	defer common.WipeByteArray(plaintext)

	res, err := s.materializer.Materialize(plaintext, ref.MimeType)
	if err != nil {
		return materialize.ViewableResource{}, err
	}

	s.log.Info(ctx, "record materialized", "record_id", ref.ID, "kind", res.Kind, "mime_type", res.MimeType)
	return res, nil
}

func (s *viewService) Open(ctx context.Context, recordID, userID string) (*models.FileRecordReference, []byte, error) {
	if userID == "" {
		return nil, nil, common.ErrInvalidIdentifier
	}

	ref, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		return nil, nil, err
	}
	if ref.OwnerID != userID {
		return nil, nil, fmt.Errorf("record %s: %w", recordID, common.ErrNotFound)
	}

	var key cryptox.DerivedKey
	if ref.Encryption.Encrypted {
		if ref.Encryption.Method != s.decryptor.Method() {
			return nil, nil, fmt.Errorf("%w: unsupported method %q", common.ErrDecryptionFailure, ref.Encryption.Method)
		}
		key, err = s.deriver.DeriveKey(userID)
		if err != nil {
			return nil, nil, err
		}
		if ref.Encryption.KeyFingerprint != "" && ref.Encryption.KeyFingerprint != key.Fingerprint() {
			return nil, nil, fmt.Errorf("%w: key fingerprint mismatch", common.ErrDecryptionFailure)
		}
	}

	blob, err := s.store.Get(ctx, ref.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", common.ErrDownloadFailure, err)
	}

	if !ref.Encryption.Encrypted {
		return ref, blob, nil
	}

	plaintext, err := s.decryptor.Decrypt(blob, key)
	if err != nil {
		s.log.Warn(ctx, "record could not be decrypted", "record_id", ref.ID, "storage_path", ref.StoragePath)
		return nil, nil, err
	}

	return ref, plaintext, nil
}
