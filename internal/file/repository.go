package file

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repoTimeout = 5 * time.Second

const recordColumns = `id, stored_name, display_name, content_type, size_bytes, blob_key,
owner_email, created_at, encryption_key, shared_with, embedding, keywords, summary`

// Repository is the durable catalog of file records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a new file repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new record.
func (r *Repository) Create(ctx context.Context, rec Record) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
INSERT INTO files (id, stored_name, display_name, content_type, size_bytes, blob_key,
                   owner_email, encryption_key, shared_with, embedding, keywords, summary)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + recordColumns + `;`

	row := r.pool.QueryRow(ctx, query,
		rec.ID,
		rec.StoredName,
		rec.DisplayName,
		rec.ContentType,
		rec.SizeBytes,
		rec.BlobKey,
		rec.OwnerEmail,
		rec.EncryptionKey,
		rec.SharedWith,
		rec.Embedding,
		rec.Keywords,
		nullable(rec.Summary),
	)

	stored, err := scanRecord(row)
	if err != nil {
		return Record{}, fmt.Errorf("create file record: %w", err)
	}
	return stored, nil
}

// GetByID fetches a single record.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `SELECT ` + recordColumns + ` FROM files WHERE id = $1;`

	rec, err := scanRecord(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrFileNotFound
		}
		return Record{}, fmt.Errorf("get file record: %w", err)
	}
	return rec, nil
}

// ListByOwner returns the records owned by the principal, newest first.
func (r *Repository) ListByOwner(ctx context.Context, owner string) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `SELECT ` + recordColumns + ` FROM files WHERE owner_email = $1 ORDER BY created_at DESC;`
	return r.queryRecords(ctx, query, owner)
}

// ListSharedWith returns records carrying a share grant for the principal.
// The shared_with column has no index, so this is a scan over every record:
// O(total records), not O(records shared with the principal).
func (r *Repository) ListSharedWith(ctx context.Context, principal string) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `SELECT ` + recordColumns + ` FROM files WHERE $1 = ANY(shared_with) ORDER BY created_at DESC;`
	return r.queryRecords(ctx, query, principal)
}

// Update replaces the record's mutable fields (display_name, shared_with).
// Concurrent updates to the same record resolve last-writer-wins.
func (r *Repository) Update(ctx context.Context, rec Record) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
UPDATE files
SET display_name = $2, shared_with = $3
WHERE id = $1
RETURNING ` + recordColumns + `;`

	updated, err := scanRecord(r.pool.QueryRow(ctx, query, rec.ID, rec.DisplayName, rec.SharedWith))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrFileNotFound
		}
		return Record{}, fmt.Errorf("update file record: %w", err)
	}
	return updated, nil
}

// Delete removes the record and returns it.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `DELETE FROM files WHERE id = $1 RETURNING ` + recordColumns + `;`

	deleted, err := scanRecord(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrFileNotFound
		}
		return Record{}, fmt.Errorf("delete file record: %w", err)
	}
	return deleted, nil
}

// SumSizeByOwner totals the plaintext sizes of the principal's owned records.
// Shared-in files never count against the principal's own usage.
func (r *Repository) SumSizeByOwner(ctx context.Context, owner string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `SELECT COALESCE(SUM(size_bytes), 0) FROM files WHERE owner_email = $1;`

	var total int64
	if err := r.pool.QueryRow(ctx, query, owner).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum owner usage: %w", err)
	}
	return total, nil
}

func (r *Repository) queryRecords(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query file records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate file records: %w", err)
	}
	return records, nil
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	var summary *string
	err := row.Scan(
		&rec.ID,
		&rec.StoredName,
		&rec.DisplayName,
		&rec.ContentType,
		&rec.SizeBytes,
		&rec.BlobKey,
		&rec.OwnerEmail,
		&rec.CreatedAt,
		&rec.EncryptionKey,
		&rec.SharedWith,
		&rec.Embedding,
		&rec.Keywords,
		&summary,
	)
	if err != nil {
		return Record{}, err
	}
	if summary != nil {
		rec.Summary = *summary
	}
	return rec, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
