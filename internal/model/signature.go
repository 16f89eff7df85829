package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SignatureStore reads signatures. Signatures are only ever written by
// SigningStore.
type SignatureStore interface {
	LatestForDocument(ctx context.Context, documentID uuid.UUID) (Signature, error)
}

// SigningStore applies a signature to a document: the status change and the
// signature insert commit together or not at all.
type SigningStore interface {
	Sign(ctx context.Context, documentID uuid.UUID, signature Signature) (Document, error)
}

// Signature is an append-only record of a document being signed.
type Signature struct {
	ID         uuid.UUID
	DocumentID uuid.UUID
	UserID     uuid.UUID
	SignedBy   string
	Image      string
	SignedAt   time.Time
}
