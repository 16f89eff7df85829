package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/signdesk-server/internal/model"
)

type documentResponse struct {
	ID        uuid.UUID            `json:"id"`
	Title     string               `json:"title"`
	FileURL   string               `json:"fileUrl"`
	FileName  string               `json:"fileName"`
	FileSize  int64                `json:"fileSize"`
	PageCount int                  `json:"pageCount"`
	Status    model.DocumentStatus `json:"status"`
	UserID    uuid.UUID            `json:"userId"`
	CreatedAt time.Time            `json:"createdAt"`
}

func newDocumentResponse(d model.Document) documentResponse {
	return documentResponse{
		ID:        d.ID,
		Title:     d.Title,
		FileURL:   d.FileURL,
		FileName:  d.FileName,
		FileSize:  d.FileSize,
		PageCount: d.PageCount,
		Status:    d.Status,
		UserID:    d.OwnerID,
		CreatedAt: d.CreatedAt,
	}
}

// createdDocumentResponse is returned by the metadata-only create.
type createdDocumentResponse struct {
	ID        uuid.UUID            `json:"id"`
	Title     string               `json:"title"`
	Status    model.DocumentStatus `json:"status"`
	CreatedAt time.Time            `json:"createdAt"`
}

type signatureResponse struct {
	ID         uuid.UUID `json:"id"`
	DocumentID uuid.UUID `json:"documentId"`
	UserID     uuid.UUID `json:"userId"`
	SignedBy   string    `json:"signedBy"`
	Signature  string    `json:"signature"`
	SignedAt   time.Time `json:"signedAt"`
}

type documentDetailsResponse struct {
	documentResponse
	Signature *signatureResponse `json:"signature"`
}

func newDocumentDetailsResponse(details model.DocumentDetails) documentDetailsResponse {
	resp := documentDetailsResponse{documentResponse: newDocumentResponse(details.Document)}
	if s := details.Signature; s != nil {
		resp.Signature = &signatureResponse{
			ID:         s.ID,
			DocumentID: s.DocumentID,
			UserID:     s.UserID,
			SignedBy:   s.SignedBy,
			Signature:  s.Image,
			SignedAt:   s.SignedAt,
		}
	}
	return resp
}

type userResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

func newUserResponse(identity model.Identity) userResponse {
	return userResponse{ID: identity.UserID, Email: identity.Email, Name: identity.Name}
}

type sessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      userResponse `json:"user"`
}

type successResponse struct {
	Success bool `json:"success"`
}
