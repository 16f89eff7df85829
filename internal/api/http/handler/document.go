package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dtroode/signdesk-server/internal/logger"
	"github.com/dtroode/signdesk-server/internal/model"
)

// multipartMemory is the part of an upload kept in memory while parsing;
// the rest spills to temporary files.
const multipartMemory = 8 << 20

// DocumentService defines document operations of the core.
type DocumentService interface {
	Create(ctx context.Context, identity model.Identity, params model.CreateDocumentParams) (model.Document, error)
	Upload(ctx context.Context, identity model.Identity, params model.UploadDocumentParams) (model.Document, error)
	List(ctx context.Context, identity model.Identity) ([]model.Document, error)
	Get(ctx context.Context, identity model.Identity, id uuid.UUID) (model.DocumentDetails, error)
	OpenFile(ctx context.Context, identity model.Identity, id uuid.UUID) (io.ReadCloser, model.Document, error)
	OpenBlob(ctx context.Context, name string) (io.ReadCloser, error)
}

// SigningService applies signatures to documents.
type SigningService interface {
	Sign(ctx context.Context, identity model.Identity, documentID uuid.UUID, signatureImage string) (model.Document, error)
}

// Document handles document endpoints.
type Document struct {
	documentService DocumentService
	signingService  SigningService
	contextManager  model.ContextManager
	logger          *logger.Logger
	maxBodyBytes    int64
}

// NewDocument creates a new Document handler. maxBodyBytes bounds upload
// and JSON request bodies.
func NewDocument(
	documentService DocumentService,
	signingService SigningService,
	contextManager model.ContextManager,
	logger *logger.Logger,
	maxBodyBytes int64,
) *Document {
	return &Document{
		documentService: documentService,
		signingService:  signingService,
		contextManager:  contextManager,
		logger:          logger,
		maxBodyBytes:    maxBodyBytes,
	}
}

type createDocumentRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type signDocumentRequest struct {
	Signature string `json:"signature"`
}

// Create handles POST /documents.
func (h *Document) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req createDocumentRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	document, err := h.documentService.Create(r.Context(), identity, model.CreateDocumentParams{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, createdDocumentResponse{
		ID:        document.ID,
		Title:     document.Title,
		Status:    document.Status,
		CreatedAt: document.CreatedAt,
	})
}

// List handles GET /documents.
func (h *Document) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	documents, err := h.documentService.List(r.Context(), identity)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	resp := make([]documentResponse, 0, len(documents))
	for _, d := range documents {
		resp = append(resp, newDocumentResponse(d))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Upload handles POST /documents/upload with a multipart form carrying
// "title" and "file".
func (h *Document) Upload(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	if r.ContentLength > h.maxBodyBytes {
		writeError(w, h.logger, &http.MaxBytesError{Limit: h.maxBodyBytes})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if !errors.As(err, &maxBytesErr) {
			err = errors.Join(model.ErrInvalidInput, err)
		}
		writeError(w, h.logger, err)
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	params := model.UploadDocumentParams{Title: r.FormValue("title")}

	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		writeError(w, h.logger, errors.Join(model.ErrInvalidInput, err))
		return
	default:
		defer file.Close()
		params.FileName = header.Filename
		params.Data, err = io.ReadAll(file)
		if err != nil {
			writeError(w, h.logger, fmt.Errorf("failed to read upload: %w", err))
			return
		}
	}

	document, err := h.documentService.Upload(r.Context(), identity, params)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, newDocumentResponse(document))
}

// Get handles GET /documents/{id}.
func (h *Document) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	id, ok := h.documentID(w, r)
	if !ok {
		return
	}

	details, err := h.documentService.Get(r.Context(), identity, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newDocumentDetailsResponse(details))
}

// Sign handles POST /documents/{id}/sign.
func (h *Document) Sign(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	id, ok := h.documentID(w, r)
	if !ok {
		return
	}

	var req signDocumentRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	document, err := h.signingService.Sign(r.Context(), identity, id, req.Signature)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newDocumentResponse(document))
}

// File handles GET /documents/{id}/file.
func (h *Document) File(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	id, ok := h.documentID(w, r)
	if !ok {
		return
	}

	rc, document, err := h.documentService.OpenFile(r.Context(), identity, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": document.FileName}))
	h.stream(w, rc, document.FileName)
}

// Blob handles GET /uploads/{name}, the public resolver of stored locators.
func (h *Document) Blob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	rc, err := h.documentService.OpenBlob(r.Context(), name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	defer rc.Close()

	h.stream(w, rc, name)
}

func (h *Document) stream(w http.ResponseWriter, rc io.Reader, name string) {
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("Document handler: failed to stream file",
			"name", name,
			"error", err.Error())
	}
}

func (h *Document) identity(w http.ResponseWriter, r *http.Request) (model.Identity, bool) {
	identity, ok := h.contextManager.GetIdentityFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, model.ErrUnauthorized)
		return model.Identity{}, false
	}
	return identity, true
}

// documentID parses the {id} path parameter. A malformed id cannot name an
// owned document, so it is reported as not found.
func (h *Document) documentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, model.ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}
