// Package records persists FileRecordReference metadata: the document
// database side of every upload.
//
// # Overview
//
// Repository is the contract used by the services. Two implementations exist:
//
//   - PostgresRepository: shared database reached through pgx, schema managed
//     by goose migrations embedded in the binary
//   - BoltRepository: single-file bbolt store kept on the device
//
// Typical Usage
//
//	db, _ := records.OpenPostgres(ctx, dsn)
//	repo := records.NewPostgresRepository(db)
//	_ = repo.Create(ctx, ref)
//	ref, _ := repo.GetByID(ctx, id)
//	list, _ := repo.ListByOwner(ctx, ownerID)
//
// Missing records are reported as common.ErrNotFound.
package records
