package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/signdesk-server/internal/model"
)

type countingRecorder struct {
	metadata, uploads, signed int
	uploadBytes               int64
}

func (r *countingRecorder) RecordDocumentCreated(withFile bool, size int64) {
	if withFile {
		r.uploads++
		r.uploadBytes += size
		return
	}
	r.metadata++
}

func (r *countingRecorder) RecordDocumentSigned() { r.signed++ }

func TestDocumentService_RecordsCreatedDocuments(t *testing.T) {
	svc, m := newDocumentService(t)
	rec := &countingRecorder{}
	svc.WithRecorder(rec)

	m.users.On("GetByEmail", mock.Anything, "alice@example.com").Return(aliceUser, nil)
	m.documents.On("Create", mock.Anything, mock.Anything).Return(echoDocument, nil)
	m.blobs.On("Store", mock.Anything, mock.Anything, "notes.txt").Return("/uploads/1-2-notes.txt", nil).Once()

	_, err := svc.Create(context.Background(), alice, model.CreateDocumentParams{Title: "Contract"})
	require.NoError(t, err)
	_, err = svc.Upload(context.Background(), alice, model.UploadDocumentParams{
		Title:    "Notes",
		FileName: "notes.txt",
		Data:     bytes.Repeat([]byte("n"), 100),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, rec.metadata)
	assert.Equal(t, 1, rec.uploads)
	assert.Equal(t, int64(100), rec.uploadBytes)
}

func TestSigningService_RecordsOnlyCommittedSignatures(t *testing.T) {
	svc, documents, signing := newSigningService(t)
	rec := &countingRecorder{}
	svc.WithRecorder(rec)

	docID := uuid.New()
	pending := model.Document{ID: docID, OwnerID: aliceID, Title: "Contract", Status: model.DocumentStatusPending}
	documents.On("GetForOwnerEmail", mock.Anything, docID, "alice@example.com").Return(pending, nil)
	signing.On("Sign", mock.Anything, docID, mock.Anything).Return(model.Document{}, errors.New("commit failed")).Once()
	signing.On("Sign", mock.Anything, docID, mock.Anything).Return(pending, nil).Once()

	_, err := svc.Sign(context.Background(), alice, docID, testSignature)
	require.ErrorIs(t, err, model.ErrSigningFailed)
	assert.Equal(t, 0, rec.signed)

	_, err = svc.Sign(context.Background(), alice, docID, testSignature)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.signed)
}
