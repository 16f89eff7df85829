package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/signdesk-server/internal/logger"
	"github.com/dtroode/signdesk-server/internal/model"
	"github.com/dtroode/signdesk-server/internal/pdfinfo"
)

type Document struct {
	documentStore  model.DocumentStore
	signatureStore model.SignatureStore
	userStore      model.UserStore
	blobStore      model.BlobStore
	recorder       DocumentRecorder
	logger         *logger.Logger
	now            func() time.Time
}

func NewDocument(
	documentStore model.DocumentStore,
	signatureStore model.SignatureStore,
	userStore model.UserStore,
	blobStore model.BlobStore,
	logger *logger.Logger,
) *Document {
	return &Document{
		documentStore:  documentStore,
		signatureStore: signatureStore,
		userStore:      userStore,
		blobStore:      blobStore,
		recorder:       noopRecorder{},
		logger:         logger,
		now:            time.Now,
	}
}

// WithRecorder sets the receiver of document lifecycle events.
func (s *Document) WithRecorder(recorder DocumentRecorder) *Document {
	s.recorder = recorder
	return s
}

// Create stores a document record without a file. Content is not persisted.
func (s *Document) Create(ctx context.Context, identity model.Identity, params model.CreateDocumentParams) (model.Document, error) {
	if identity.Email == "" {
		return model.Document{}, model.ErrUnauthorized
	}

	title := strings.TrimSpace(params.Title)
	if title == "" {
		return model.Document{}, fmt.Errorf("%w: title is required", model.ErrInvalidInput)
	}

	owner, err := s.ownerByEmail(ctx, identity.Email)
	if err != nil {
		return model.Document{}, err
	}

	document, err := s.documentStore.Create(ctx, s.newDocument(owner.ID, title))
	if err != nil {
		s.logger.Error("Document service: failed to create document",
			"user_id", owner.ID,
			"error", err.Error())
		return model.Document{}, fmt.Errorf("failed to create document: %w", err)
	}

	s.recorder.RecordDocumentCreated(false, 0)
	s.logger.Info("Document service: document created",
		"document_id", document.ID,
		"user_id", owner.ID)

	return document, nil
}

// Upload stores the file in the blob store and records a PENDING document
// pointing at it. A blob stored before a later failure is left in place.
func (s *Document) Upload(ctx context.Context, identity model.Identity, params model.UploadDocumentParams) (model.Document, error) {
	if identity.Email == "" {
		return model.Document{}, model.ErrUnauthorized
	}

	title := strings.TrimSpace(params.Title)
	if title == "" {
		return model.Document{}, fmt.Errorf("%w: title is required", model.ErrInvalidInput)
	}
	if len(params.Data) == 0 {
		return model.Document{}, fmt.Errorf("%w: file is required", model.ErrInvalidInput)
	}

	locator, err := s.blobStore.Store(ctx, params.Data, params.FileName)
	if err != nil {
		s.logger.Error("Document service: failed to store file",
			"file_name", params.FileName,
			"error", err.Error())
		if !errors.Is(err, model.ErrStorage) {
			err = fmt.Errorf("%w: %w", model.ErrStorage, err)
		}
		return model.Document{}, fmt.Errorf("failed to store file: %w", err)
	}

	owner, err := s.ownerByEmail(ctx, identity.Email)
	if err != nil {
		s.logger.Warn("Document service: stored file left without document",
			"locator", locator,
			"error", err.Error())
		return model.Document{}, err
	}

	document := s.newDocument(owner.ID, title)
	document.FileURL = locator
	document.FileName = params.FileName
	document.FileSize = int64(len(params.Data))
	document.PageCount = pdfinfo.PageCountOrZero(params.Data)

	document, err = s.documentStore.Create(ctx, document)
	if err != nil {
		s.logger.Error("Document service: failed to create document, stored file left without document",
			"locator", locator,
			"user_id", owner.ID,
			"error", err.Error())
		return model.Document{}, fmt.Errorf("failed to create document: %w", err)
	}

	s.recorder.RecordDocumentCreated(true, document.FileSize)
	s.logger.Info("Document service: document uploaded",
		"document_id", document.ID,
		"user_id", owner.ID,
		"file_size", document.FileSize,
		"page_count", document.PageCount)

	return document, nil
}

// List returns the caller's documents, newest first.
func (s *Document) List(ctx context.Context, identity model.Identity) ([]model.Document, error) {
	if identity.UserID == uuid.Nil {
		return nil, model.ErrUnauthorized
	}

	documents, err := s.documentStore.ListByOwner(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	return documents, nil
}

// Get returns an owned document with its latest signature, if any.
func (s *Document) Get(ctx context.Context, identity model.Identity, id uuid.UUID) (model.DocumentDetails, error) {
	if identity.UserID == uuid.Nil {
		return model.DocumentDetails{}, model.ErrUnauthorized
	}

	document, err := s.documentStore.GetForOwner(ctx, id, identity.UserID)
	if err != nil {
		return model.DocumentDetails{}, fmt.Errorf("failed to get document: %w", err)
	}

	details := model.DocumentDetails{Document: document}
	if document.Status != model.DocumentStatusSigned {
		return details, nil
	}

	signature, err := s.signatureStore.LatestForDocument(ctx, document.ID)
	switch {
	case err == nil:
		details.Signature = &signature
	case errors.Is(err, model.ErrNotFound):
	default:
		return model.DocumentDetails{}, fmt.Errorf("failed to get signature: %w", err)
	}

	return details, nil
}

// OpenFile streams the file of an owned document.
func (s *Document) OpenFile(ctx context.Context, identity model.Identity, id uuid.UUID) (io.ReadCloser, model.Document, error) {
	if identity.UserID == uuid.Nil {
		return nil, model.Document{}, model.ErrUnauthorized
	}

	document, err := s.documentStore.GetForOwner(ctx, id, identity.UserID)
	if err != nil {
		return nil, model.Document{}, fmt.Errorf("failed to get document: %w", err)
	}

	name, ok := model.BlobNameFromLocator(document.FileURL)
	if !ok {
		return nil, model.Document{}, fmt.Errorf("document has no file: %w", model.ErrNotFound)
	}

	rc, err := s.blobStore.Open(ctx, name)
	if err != nil {
		return nil, model.Document{}, fmt.Errorf("failed to open file: %w", err)
	}

	return rc, document, nil
}

// OpenBlob resolves a public locator name to the stored content.
func (s *Document) OpenBlob(ctx context.Context, name string) (io.ReadCloser, error) {
	rc, err := s.blobStore.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return rc, nil
}

func (s *Document) ownerByEmail(ctx context.Context, email string) (model.User, error) {
	owner, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, fmt.Errorf("user %s: %w", email, model.ErrNotFound)
		}
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	return owner, nil
}

func (s *Document) newDocument(ownerID uuid.UUID, title string) model.Document {
	now := s.now()
	return model.Document{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Title:     title,
		Status:    model.DocumentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
