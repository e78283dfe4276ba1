package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/medvault/internal/common"
	"github.com/dmitrijs2005/medvault/internal/models"
	"go.etcd.io/bbolt"
)

var (
	recordsBucket = []byte("records")
	pathsBucket   = []byte("storage_paths")
)

// ErrDuplicateRecord is returned when the id or storage path is already taken.
var ErrDuplicateRecord = errors.New("record already exists")

// BoltRepository implements Repository over a single bbolt file.
// Records are stored as JSON keyed by id; a second bucket keeps
// storage paths unique.
type BoltRepository struct {
	db *bbolt.DB
}

var _ Repository = (*BoltRepository)(nil)

// NewBoltRepository wraps an open bbolt database and makes sure the buckets exist.
func NewBoltRepository(db *bbolt.DB) (*BoltRepository, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{recordsBucket, pathsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating buckets: %w", err)
	}
	return &BoltRepository{db: db}, nil
}

// OpenBolt opens (or creates) the bbolt file at path.
func OpenBolt(path string) (*BoltRepository, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	repo, err := NewBoltRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the underlying database.
func (r *BoltRepository) Close() error {
	return r.db.Close()
}

func (r *BoltRepository) Create(ctx context.Context, ref *models.FileRecordReference) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(ref)
	if err != nil {
		return err
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		records := tx.Bucket(recordsBucket)
		paths := tx.Bucket(pathsBucket)
		if records.Get([]byte(ref.ID)) != nil {
			return fmt.Errorf("id %s: %w", ref.ID, ErrDuplicateRecord)
		}
		if paths.Get([]byte(ref.StoragePath)) != nil {
			return fmt.Errorf("storage path %s: %w", ref.StoragePath, ErrDuplicateRecord)
		}
		if err := paths.Put([]byte(ref.StoragePath), []byte(ref.ID)); err != nil {
			return err
		}
		return records.Put([]byte(ref.ID), data)
	})
}

func (r *BoltRepository) GetByID(ctx context.Context, id string) (*models.FileRecordReference, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var ref models.FileRecordReference
	err := r.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(recordsBucket).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("record %s: %w", id, common.ErrNotFound)
		}
		return json.Unmarshal(data, &ref)
	})
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

func (r *BoltRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.FileRecordReference, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var result []*models.FileRecordReference
	err := r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(recordsBucket).ForEach(func(_, v []byte) error {
			var ref models.FileRecordReference
			if err := json.Unmarshal(v, &ref); err != nil {
				return err
			}
			if ref.OwnerID == ownerID {
				result = append(result, &ref)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *BoltRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		records := tx.Bucket(recordsBucket)
		data := records.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("record %s: %w", id, common.ErrNotFound)
		}
		var ref models.FileRecordReference
		if err := json.Unmarshal(data, &ref); err != nil {
			return err
		}
		if err := tx.Bucket(pathsBucket).Delete([]byte(ref.StoragePath)); err != nil {
			return err
		}
		return records.Delete([]byte(id))
	})
}
