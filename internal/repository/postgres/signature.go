package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/signdesk-server/internal/model"
)

var (
	_ model.SignatureStore = (*SignatureRepository)(nil)
	_ model.SigningStore   = (*SigningRepository)(nil)
)

const signatureColumns = `id, document_id, user_id, signed_by, signature, signed_at`

type SignatureRepository struct {
	db *Connection
}

func NewSignatureRepository(db *Connection) *SignatureRepository {
	return &SignatureRepository{
		db: db,
	}
}

func scanSignature(row rowScanner) (model.Signature, error) {
	var s model.Signature
	err := row.Scan(&s.ID, &s.DocumentID, &s.UserID, &s.SignedBy, &s.Image, &s.SignedAt)
	return s, err
}

func (r *SignatureRepository) LatestForDocument(ctx context.Context, documentID uuid.UUID) (model.Signature, error) {
	query := `SELECT ` + signatureColumns + ` FROM signatures
			  WHERE document_id = $1
			  ORDER BY signed_at DESC
			  LIMIT 1`

	s, err := scanSignature(r.db.QueryRowContext(ctx, query, documentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Signature{}, model.ErrNotFound
		}
		return model.Signature{}, fmt.Errorf("failed to get signature: %w", err)
	}

	return s, nil
}

// SigningRepository is the only writer of signatures and of document status.
type SigningRepository struct {
	db *Connection
}

func NewSigningRepository(db *Connection) *SigningRepository {
	return &SigningRepository{
		db: db,
	}
}

// Sign marks the document SIGNED and records the signature in one transaction.
// Either both changes are committed or neither is.
func (r *SigningRepository) Sign(ctx context.Context, documentID uuid.UUID, signature model.Signature) (model.Document, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Document{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	document, err := updateStatus(ctx, tx, documentID, model.DocumentStatusSigned)
	if err != nil {
		return model.Document{}, err
	}

	signature.DocumentID = documentID
	if err := insertSignature(ctx, tx, signature); err != nil {
		return model.Document{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Document{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return document, nil
}

func updateStatus(ctx context.Context, tx *sql.Tx, documentID uuid.UUID, status model.DocumentStatus) (model.Document, error) {
	query := `UPDATE documents SET status = $1, updated_at = NOW()
			  WHERE id = $2
			  RETURNING ` + documentColumns

	d, err := scanDocument(tx.QueryRowContext(ctx, query, status, documentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Document{}, model.ErrNotFound
		}
		return model.Document{}, fmt.Errorf("failed to update document status: %w", err)
	}

	return d, nil
}

func insertSignature(ctx context.Context, tx *sql.Tx, s model.Signature) error {
	query := `INSERT INTO signatures (` + signatureColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := tx.ExecContext(ctx, query, s.ID, s.DocumentID, s.UserID, s.SignedBy, s.Image, s.SignedAt); err != nil {
		return fmt.Errorf("failed to insert signature: %w", err)
	}
	return nil
}
