package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/medvault/internal/common"
	"github.com/dmitrijs2005/medvault/internal/dbx"
	"github.com/dmitrijs2005/medvault/internal/models"
	"github.com/dmitrijs2005/medvault/internal/repositories/records/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// OpenPostgres opens a pgx-backed *sql.DB and brings the schema up to date.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}
	return db, nil
}

// RunMigrations applies the embedded goose migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

var _ Repository = (*PostgresRepository)(nil)

// PostgresRepository implements Repository over PostgreSQL.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository constructs a repository bound to db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the record and its tags in one transaction.
func (r *PostgresRepository) Create(ctx context.Context, ref *models.FileRecordReference) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		query := `INSERT INTO file_records (id, owner_id, title, mime_type, storage_path, locator, size,
				encrypted, encryption_method, key_fingerprint, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

		_, err := tx.ExecContext(ctx, query,
			ref.ID, ref.OwnerID, ref.Title, ref.MimeType, ref.StoragePath, ref.Locator, ref.Size,
			ref.Encryption.Encrypted, ref.Encryption.Method, ref.Encryption.KeyFingerprint, ref.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}

		for _, tag := range ref.Tags {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO file_record_tags (record_id, tag) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				ref.ID, tag)
			if err != nil {
				return fmt.Errorf("failed to insert tag: %w", err)
			}
		}

		return nil
	})
}

const selectRecord = `SELECT id, owner_id, title, mime_type, storage_path, locator, size,
		encrypted, encryption_method, key_fingerprint, created_at
	FROM file_records`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*models.FileRecordReference, error) {
	ref := &models.FileRecordReference{}
	err := s.Scan(&ref.ID, &ref.OwnerID, &ref.Title, &ref.MimeType, &ref.StoragePath, &ref.Locator, &ref.Size,
		&ref.Encryption.Encrypted, &ref.Encryption.Method, &ref.Encryption.KeyFingerprint, &ref.CreatedAt)
	if err != nil {
		return nil, err
	}
	return ref, nil
}

// GetByID returns the record with its tags.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.FileRecordReference, error) {
	ref, err := scanRecord(r.db.QueryRowContext(ctx, selectRecord+` WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select record: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT tag FROM file_record_tags WHERE record_id=$1 ORDER BY tag`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to select tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		ref.Tags = append(ref.Tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ref, nil
}

// ListByOwner returns all records of ownerID, newest first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.FileRecordReference, error) {
	rows, err := r.db.QueryContext(ctx, selectRecord+` WHERE owner_id=$1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	var result []*models.FileRecordReference
	byID := make(map[string]*models.FileRecordReference)
	for rows.Next() {
		ref, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, ref)
		byID[ref.ID] = ref
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return result, nil
	}

	tagRows, err := r.db.QueryContext(ctx, `SELECT t.record_id, t.tag FROM file_record_tags t
		JOIN file_records r ON r.id = t.record_id
		WHERE r.owner_id=$1 ORDER BY t.tag`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select tags: %w", err)
	}
	defer tagRows.Close()

	for tagRows.Next() {
		var id, tag string
		if err := tagRows.Scan(&id, &tag); err != nil {
			return nil, err
		}
		if ref, ok := byID[id]; ok {
			ref.Tags = append(ref.Tags, tag)
		}
	}
	if err := tagRows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Delete removes the record; tags go with it through ON DELETE CASCADE.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM file_records WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	switch rowsAffected {
	case 1:
		return nil
	case 0:
		return fmt.Errorf("record %s: %w", id, common.ErrNotFound)
	default:
		return fmt.Errorf("unexpected rows affected: %d", rowsAffected)
	}
}
