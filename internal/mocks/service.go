package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/signdesk-server/internal/model"
)

// AuthService is a mock of the transport's auth service.
type AuthService struct {
	mock.Mock
}

func NewAuthService(t testingT) *AuthService {
	m := &AuthService{}
	register(&m.Mock, t)
	return m
}

func (_m *AuthService) Register(ctx context.Context, params model.RegisterParams) (model.User, error) {
	ret := _m.Called(ctx, params)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (_m *AuthService) Login(ctx context.Context, email, password string) (string, model.Session, error) {
	ret := _m.Called(ctx, email, password)
	return ret.String(0), ret.Get(1).(model.Session), ret.Error(2)
}

func (_m *AuthService) Logout(ctx context.Context, session model.Session) error {
	ret := _m.Called(ctx, session)
	return ret.Error(0)
}

func (_m *AuthService) Authenticate(ctx context.Context, token string) (model.Session, error) {
	ret := _m.Called(ctx, token)
	return ret.Get(0).(model.Session), ret.Error(1)
}

func (_m *AuthService) OAuthLoginURL(provider, state string) (string, error) {
	ret := _m.Called(provider, state)
	return ret.String(0), ret.Error(1)
}

func (_m *AuthService) LoginWithOAuth(ctx context.Context, provider, code string) (string, model.Session, error) {
	ret := _m.Called(ctx, provider, code)
	return ret.String(0), ret.Get(1).(model.Session), ret.Error(2)
}

// DocumentService is a mock of the transport's document service.
type DocumentService struct {
	mock.Mock
}

func NewDocumentService(t testingT) *DocumentService {
	m := &DocumentService{}
	register(&m.Mock, t)
	return m
}

func (_m *DocumentService) Create(ctx context.Context, identity model.Identity, params model.CreateDocumentParams) (model.Document, error) {
	ret := _m.Called(ctx, identity, params)
	return ret.Get(0).(model.Document), ret.Error(1)
}

func (_m *DocumentService) Upload(ctx context.Context, identity model.Identity, params model.UploadDocumentParams) (model.Document, error) {
	ret := _m.Called(ctx, identity, params)
	return ret.Get(0).(model.Document), ret.Error(1)
}

func (_m *DocumentService) List(ctx context.Context, identity model.Identity) ([]model.Document, error) {
	ret := _m.Called(ctx, identity)
	documents, _ := ret.Get(0).([]model.Document)
	return documents, ret.Error(1)
}

func (_m *DocumentService) Get(ctx context.Context, identity model.Identity, id uuid.UUID) (model.DocumentDetails, error) {
	ret := _m.Called(ctx, identity, id)
	return ret.Get(0).(model.DocumentDetails), ret.Error(1)
}

func (_m *DocumentService) OpenFile(ctx context.Context, identity model.Identity, id uuid.UUID) (io.ReadCloser, model.Document, error) {
	ret := _m.Called(ctx, identity, id)
	rc, _ := ret.Get(0).(io.ReadCloser)
	return rc, ret.Get(1).(model.Document), ret.Error(2)
}

func (_m *DocumentService) OpenBlob(ctx context.Context, name string) (io.ReadCloser, error) {
	ret := _m.Called(ctx, name)
	rc, _ := ret.Get(0).(io.ReadCloser)
	return rc, ret.Error(1)
}

// SigningService is a mock of the transport's signing service.
type SigningService struct {
	mock.Mock
}

func NewSigningService(t testingT) *SigningService {
	m := &SigningService{}
	register(&m.Mock, t)
	return m
}

func (_m *SigningService) Sign(ctx context.Context, identity model.Identity, documentID uuid.UUID, signatureImage string) (model.Document, error) {
	ret := _m.Called(ctx, identity, documentID, signatureImage)
	return ret.Get(0).(model.Document), ret.Error(1)
}
