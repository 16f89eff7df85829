package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	httpctx "github.com/dtroode/signdesk-server/internal/api/http/context"
	"github.com/dtroode/signdesk-server/internal/mocks"
	"github.com/dtroode/signdesk-server/internal/model"
	"github.com/dtroode/signdesk-server/internal/testutil"
)

const testMaxBodyBytes = 1 << 20

type documentHandlerMocks struct {
	documents *mocks.DocumentService
	signing   *mocks.SigningService
}

func newDocumentRouter(t *testing.T, authenticated bool) (http.Handler, documentHandlerMocks) {
	t.Helper()
	m := documentHandlerMocks{
		documents: mocks.NewDocumentService(t),
		signing:   mocks.NewSigningService(t),
	}
	h := NewDocument(m.documents, m.signing, httpctx.NewManager(), testutil.MakeNoopLogger(), testMaxBodyBytes)

	r := chi.NewRouter()
	r.Get("/uploads/{name}", h.Blob)
	r.Group(func(r chi.Router) {
		if authenticated {
			r.Use(withSession(aliceSession))
		}
		r.Post("/documents", h.Create)
		r.Get("/documents", h.List)
		r.Post("/documents/upload", h.Upload)
		r.Get("/documents/{id}", h.Get)
		r.Post("/documents/{id}/sign", h.Sign)
		r.Get("/documents/{id}/file", h.File)
	})
	return r, m
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func uploadRequest(t *testing.T, title, fileName string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if title != "" {
		require.NoError(t, mw.WriteField("title", title))
	}
	if fileName != "" {
		part, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func pendingDocument(title string) model.Document {
	return model.Document{
		ID:        uuid.New(),
		OwnerID:   aliceID,
		Title:     title,
		Status:    model.DocumentStatusPending,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestDocumentHandler_RequiresIdentity(t *testing.T) {
	router, _ := newDocumentRouter(t, false)
	id := uuid.NewString()

	requests := []*http.Request{
		jsonRequest(http.MethodPost, "/documents", `{"title":"Contract"}`),
		httptest.NewRequest(http.MethodGet, "/documents", nil),
		uploadRequest(t, "Q1 Report", "report.pdf", []byte("%PDF-1.4")),
		httptest.NewRequest(http.MethodGet, "/documents/"+id, nil),
		jsonRequest(http.MethodPost, "/documents/"+id+"/sign", `{"signature":"data:image/png;base64,AAAA"}`),
		httptest.NewRequest(http.MethodGet, "/documents/"+id+"/file", nil),
	}
	for _, req := range requests {
		rec := serve(router, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", req.Method, req.URL.Path)
	}
}

func TestDocumentHandler_Create(t *testing.T) {
	router, m := newDocumentRouter(t, true)
	doc := pendingDocument("Contract")
	m.documents.On("Create", mock.Anything, alice, model.CreateDocumentParams{Title: "Contract", Content: "terms"}).
		Return(doc, nil).Once()

	rec := serve(router, jsonRequest(http.MethodPost, "/documents", `{"title":"Contract","content":"terms"}`))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"id":%q,"title":"Contract","status":"PENDING","createdAt":"2025-03-14T09:26:53Z"}`, doc.ID), rec.Body.String())
}

func TestDocumentHandler_Create_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
	}{
		{name: "malformed json", body: `{"title":`, wantStatus: http.StatusBadRequest},
		{name: "missing title", body: `{}`, serviceErr: model.ErrInvalidInput, wantStatus: http.StatusBadRequest},
		{name: "owner missing", body: `{"title":"Contract"}`, serviceErr: model.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "store failure", body: `{"title":"Contract"}`, serviceErr: fmt.Errorf("db down"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, m := newDocumentRouter(t, true)
			if tt.serviceErr != nil {
				m.documents.On("Create", mock.Anything, alice, mock.Anything).
					Return(model.Document{}, tt.serviceErr).Once()
			}

			rec := serve(router, jsonRequest(http.MethodPost, "/documents", tt.body))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestDocumentHandler_List(t *testing.T) {
	t.Run("documents", func(t *testing.T) {
		router, m := newDocumentRouter(t, true)
		newer := pendingDocument("Newer")
		older := pendingDocument("Older")
		m.documents.On("List", mock.Anything, alice).Return([]model.Document{newer, older}, nil).Once()

		rec := serve(router, httptest.NewRequest(http.MethodGet, "/documents", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var got []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "Newer", got[0]["title"])
		assert.Equal(t, "Older", got[1]["title"])
		assert.Equal(t, aliceID.String(), got[0]["userId"])
		for _, key := range []string{"id", "fileUrl", "fileName", "fileSize", "pageCount", "status", "createdAt"} {
			assert.Contains(t, got[0], key)
		}
	})

	t.Run("empty", func(t *testing.T) {
		router, m := newDocumentRouter(t, true)
		m.documents.On("List", mock.Anything, alice).Return([]model.Document{}, nil).Once()

		rec := serve(router, httptest.NewRequest(http.MethodGet, "/documents", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})
}

func TestDocumentHandler_Upload(t *testing.T) {
	router, m := newDocumentRouter(t, true)
	data := bytes.Repeat([]byte("a"), 4096)

	doc := pendingDocument("Q1 Report")
	doc.FileURL = "/uploads/1710408413000-42-report.pdf"
	doc.FileName = "report.pdf"
	doc.FileSize = int64(len(data))
	m.documents.On("Upload", mock.Anything, alice, model.UploadDocumentParams{
		Title:    "Q1 Report",
		FileName: "report.pdf",
		Data:     data,
	}).Return(doc, nil).Once()

	rec := serve(router, uploadRequest(t, "Q1 Report", "report.pdf", data))
	require.Equal(t, http.StatusCreated, rec.Code)

	var got documentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, "/uploads/1710408413000-42-report.pdf", got.FileURL)
	assert.Equal(t, "report.pdf", got.FileName)
	assert.Equal(t, int64(4096), got.FileSize)
	assert.Equal(t, model.DocumentStatusPending, got.Status)
}

func TestDocumentHandler_Upload_MissingFile(t *testing.T) {
	router, m := newDocumentRouter(t, true)
	m.documents.On("Upload", mock.Anything, alice, model.UploadDocumentParams{Title: "Q1 Report"}).
		Return(model.Document{}, fmt.Errorf("file is required: %w", model.ErrInvalidInput)).Once()

	rec := serve(router, uploadRequest(t, "Q1 Report", "", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentHandler_Upload_NotMultipart(t *testing.T) {
	router, _ := newDocumentRouter(t, true)

	rec := serve(router, jsonRequest(http.MethodPost, "/documents/upload", `{"title":"Q1 Report"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentHandler_Upload_TooLarge(t *testing.T) {
	router, _ := newDocumentRouter(t, true)

	rec := serve(router, uploadRequest(t, "Huge", "huge.pdf", make([]byte, testMaxBodyBytes+1)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestDocumentHandler_Get(t *testing.T) {
	t.Run("signed", func(t *testing.T) {
		router, m := newDocumentRouter(t, true)
		doc := pendingDocument("Contract")
		doc.Status = model.DocumentStatusSigned
		sig := model.Signature{
			ID:         uuid.New(),
			DocumentID: doc.ID,
			UserID:     aliceID,
			SignedBy:   "Alice",
			Image:      "data:image/png;base64,AAAA",
			SignedAt:   createdAt,
		}
		m.documents.On("Get", mock.Anything, alice, doc.ID).
			Return(model.DocumentDetails{Document: doc, Signature: &sig}, nil).Once()

		rec := serve(router, httptest.NewRequest(http.MethodGet, "/documents/"+doc.ID.String(), nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var got struct {
			ID        uuid.UUID         `json:"id"`
			Status    string            `json:"status"`
			Signature map[string]string `json:"signature"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, doc.ID, got.ID)
		assert.Equal(t, "SIGNED", got.Status)
		assert.Equal(t, "Alice", got.Signature["signedBy"])
		assert.Equal(t, "data:image/png;base64,AAAA", got.Signature["signature"])
		assert.Equal(t, doc.ID.String(), got.Signature["documentId"])
		assert.Equal(t, aliceID.String(), got.Signature["userId"])
	})

	t.Run("pending", func(t *testing.T) {
		router, m := newDocumentRouter(t, true)
		doc := pendingDocument("Contract")
		m.documents.On("Get", mock.Anything, alice, doc.ID).
			Return(model.DocumentDetails{Document: doc}, nil).Once()

		rec := serve(router, httptest.NewRequest(http.MethodGet, "/documents/"+doc.ID.String(), nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"signature":null`)
	})

	t.Run("not owned", func(t *testing.T) {
		router, m := newDocumentRouter(t, true)
		id := uuid.New()
		m.documents.On("Get", mock.Anything, alice, id).Return(model.DocumentDetails{}, model.ErrNotFound).Once()

		rec := serve(router, httptest.NewRequest(http.MethodGet, "/documents/"+id.String(), nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		router, _ := newDocumentRouter(t, true)

		rec := serve(router, httptest.NewRequest(http.MethodGet, "/documents/not-a-uuid", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDocumentHandler_Sign(t *testing.T) {
	const image = "data:image/png;base64,iVBORw0KGgo="

	tests := []struct {
		name       string
		body       string
		image      string
		result     model.Document
		serviceErr error
		wantStatus int
	}{
		{
			name:       "signed",
			body:       `{"signature":"` + image + `"}`,
			image:      image,
			result:     model.Document{Title: "Contract", Status: model.DocumentStatusSigned},
			wantStatus: http.StatusOK,
		},
		{
			name:       "empty signature",
			body:       `{"signature":""}`,
			serviceErr: model.ErrInvalidInput,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not owned",
			body:       `{"signature":"` + image + `"}`,
			image:      image,
			serviceErr: model.ErrNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "transaction failed",
			body:       `{"signature":"` + image + `"}`,
			image:      image,
			serviceErr: fmt.Errorf("%w: commit failed", model.ErrSigningFailed),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, m := newDocumentRouter(t, true)
			id := uuid.New()
			m.signing.On("Sign", mock.Anything, alice, id, tt.image).Return(tt.result, tt.serviceErr).Once()

			rec := serve(router, jsonRequest(http.MethodPost, "/documents/"+id.String()+"/sign", tt.body))
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Contains(t, rec.Body.String(), `"status":"SIGNED"`)
			}
		})
	}
}

func TestDocumentHandler_Sign_MalformedBody(t *testing.T) {
	router, _ := newDocumentRouter(t, true)

	rec := serve(router, jsonRequest(http.MethodPost, "/documents/"+uuid.NewString()+"/sign", `signature`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentHandler_File(t *testing.T) {
	t.Run("streams owned file", func(t *testing.T) {
		router, m := newDocumentRouter(t, true)
		doc := pendingDocument("Q1 Report")
		doc.FileName = "report.pdf"
		m.documents.On("OpenFile", mock.Anything, alice, doc.ID).
			Return(io.NopCloser(strings.NewReader("%PDF-1.4 body")), doc, nil).Once()

		rec := serve(router, httptest.NewRequest(http.MethodGet, "/documents/"+doc.ID.String()+"/file", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.Equal(t, `inline; filename=report.pdf`, rec.Header().Get("Content-Disposition"))
		assert.Equal(t, "%PDF-1.4 body", rec.Body.String())
	})

	t.Run("not found", func(t *testing.T) {
		router, m := newDocumentRouter(t, true)
		id := uuid.New()
		m.documents.On("OpenFile", mock.Anything, alice, id).Return(nil, model.Document{}, model.ErrNotFound).Once()

		rec := serve(router, httptest.NewRequest(http.MethodGet, "/documents/"+id.String()+"/file", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDocumentHandler_Blob(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		router, m := newDocumentRouter(t, false)
		m.documents.On("OpenBlob", mock.Anything, "1710408413000-42-notes.txt").
			Return(io.NopCloser(strings.NewReader("hello")), nil).Once()

		rec := serve(router, httptest.NewRequest(http.MethodGet, "/uploads/1710408413000-42-notes.txt", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
		assert.Equal(t, "hello", rec.Body.String())
	})

	t.Run("missing", func(t *testing.T) {
		router, m := newDocumentRouter(t, false)
		m.documents.On("OpenBlob", mock.Anything, "gone.pdf").Return(nil, model.ErrNotFound).Once()

		rec := serve(router, httptest.NewRequest(http.MethodGet, "/uploads/gone.pdf", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
