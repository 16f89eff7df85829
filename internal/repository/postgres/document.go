package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/signdesk-server/internal/model"
)

var _ model.DocumentStore = (*DocumentRepository)(nil)

const documentColumns = `id, user_id, title, file_url, file_name, file_size, page_count, status, created_at, updated_at`

type DocumentRepository struct {
	db *Connection
}

func NewDocumentRepository(db *Connection) *DocumentRepository {
	return &DocumentRepository{
		db: db,
	}
}

func scanDocument(row rowScanner) (model.Document, error) {
	var d model.Document
	err := row.Scan(
		&d.ID, &d.OwnerID, &d.Title, &d.FileURL, &d.FileName, &d.FileSize,
		&d.PageCount, &d.Status, &d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}

func (r *DocumentRepository) Create(ctx context.Context, d model.Document) (model.Document, error) {
	query := `INSERT INTO documents (` + documentColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING ` + documentColumns

	saved, err := scanDocument(r.db.QueryRowContext(ctx, query,
		d.ID, d.OwnerID, d.Title, d.FileURL, d.FileName, d.FileSize,
		d.PageCount, d.Status, d.CreatedAt, d.UpdatedAt,
	))
	if err != nil {
		return model.Document{}, fmt.Errorf("failed to create document: %w", err)
	}

	return saved, nil
}

// ListByOwner returns all documents of the owner, newest first.
func (r *DocumentRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	documents := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		documents = append(documents, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	return documents, nil
}

// GetForOwner returns ErrNotFound both for absent and for foreign documents.
func (r *DocumentRepository) GetForOwner(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) (model.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 AND user_id = $2`

	d, err := scanDocument(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Document{}, model.ErrNotFound
		}
		return model.Document{}, fmt.Errorf("failed to get document: %w", err)
	}

	return d, nil
}

// GetForOwnerEmail is GetForOwner keyed by the owner's email.
func (r *DocumentRepository) GetForOwnerEmail(ctx context.Context, id uuid.UUID, email string) (model.Document, error) {
	query := `SELECT d.id, d.user_id, d.title, d.file_url, d.file_name, d.file_size, d.page_count, d.status, d.created_at, d.updated_at
			  FROM documents d
			  JOIN users u ON u.id = d.user_id
			  WHERE d.id = $1 AND u.email = $2`

	d, err := scanDocument(r.db.QueryRowContext(ctx, query, id, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Document{}, model.ErrNotFound
		}
		return model.Document{}, fmt.Errorf("failed to get document: %w", err)
	}

	return d, nil
}
