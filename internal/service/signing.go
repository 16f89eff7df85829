package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/signdesk-server/internal/logger"
	"github.com/dtroode/signdesk-server/internal/model"
)

type Signing struct {
	documentStore model.DocumentStore
	signingStore  model.SigningStore
	recorder      DocumentRecorder
	logger        *logger.Logger
	now           func() time.Time
}

func NewSigning(documentStore model.DocumentStore, signingStore model.SigningStore, logger *logger.Logger) *Signing {
	return &Signing{
		documentStore: documentStore,
		signingStore:  signingStore,
		recorder:      noopRecorder{},
		logger:        logger,
		now:           time.Now,
	}
}

// WithRecorder sets the receiver of signing events.
func (s *Signing) WithRecorder(recorder DocumentRecorder) *Signing {
	s.recorder = recorder
	return s
}

// Sign records signatureImage against an owned document and marks it SIGNED.
// Signing an already signed document appends another signature.
func (s *Signing) Sign(ctx context.Context, identity model.Identity, documentID uuid.UUID, signatureImage string) (model.Document, error) {
	if identity.Email == "" || identity.Name == "" {
		return model.Document{}, model.ErrUnauthorized
	}
	if strings.TrimSpace(signatureImage) == "" {
		return model.Document{}, fmt.Errorf("%w: signature is required", model.ErrInvalidInput)
	}

	document, err := s.documentStore.GetForOwnerEmail(ctx, documentID, identity.Email)
	if err != nil {
		return model.Document{}, fmt.Errorf("failed to get document: %w", err)
	}

	// The owner was matched by email, so the owner is the signer.
	signature := model.Signature{
		ID:         uuid.New(),
		DocumentID: document.ID,
		UserID:     document.OwnerID,
		SignedBy:   identity.Name,
		Image:      signatureImage,
		SignedAt:   s.now(),
	}

	signed, err := s.signingStore.Sign(ctx, document.ID, signature)
	if err != nil {
		s.logger.Error("Signing service: failed to sign document",
			"document_id", document.ID,
			"user_id", document.OwnerID,
			"error", err.Error())
		if errors.Is(err, model.ErrNotFound) {
			return model.Document{}, fmt.Errorf("failed to sign document: %w", err)
		}
		return model.Document{}, fmt.Errorf("%w: %w", model.ErrSigningFailed, err)
	}

	s.recorder.RecordDocumentSigned()
	s.logger.Info("Signing service: document signed",
		"document_id", signed.ID,
		"signature_id", signature.ID,
		"signed_by", signature.SignedBy)

	return signed, nil
}
