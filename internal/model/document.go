package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DocumentStore defines persistence operations for documents. Every read is
// scoped to an owner in the same query predicate.
type DocumentStore interface {
	Create(ctx context.Context, document Document) (Document, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Document, error)
	GetForOwner(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) (Document, error)
	GetForOwnerEmail(ctx context.Context, id uuid.UUID, email string) (Document, error)
}

// DocumentStatus enumerates lifecycle states of a document.
type DocumentStatus string

const (
	// DocumentStatusPending is the initial state, awaiting a signature.
	DocumentStatusPending DocumentStatus = "PENDING"
	// DocumentStatusSigned is set together with the signature row.
	DocumentStatusSigned DocumentStatus = "SIGNED"
	// DocumentStatusArchived is reserved.
	DocumentStatusArchived DocumentStatus = "ARCHIVED"
)

// Document represents an uploaded (or metadata-only) document.
type Document struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Title     string
	FileURL   string
	FileName  string
	FileSize  int64
	PageCount int
	Status    DocumentStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DocumentDetails is a document together with its most recent signature.
type DocumentDetails struct {
	Document  Document
	Signature *Signature
}

// CreateDocumentParams contains parameters of a metadata-only document.
// Content is accepted for compatibility and not persisted.
type CreateDocumentParams struct {
	Title   string
	Content string
}

// UploadDocumentParams contains an uploaded file held fully in memory.
type UploadDocumentParams struct {
	Title    string
	FileName string
	Data     []byte
}
