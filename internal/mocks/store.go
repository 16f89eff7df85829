package mocks

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/signdesk-server/internal/model"
)

// UserStore is a mock of model.UserStore.
type UserStore struct {
	mock.Mock
}

func NewUserStore(t testingT) *UserStore {
	m := &UserStore{}
	register(&m.Mock, t)
	return m
}

func (_m *UserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	ret := _m.Called(ctx, email)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (_m *UserStore) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	ret := _m.Called(ctx, id)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (_m *UserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	ret := _m.Called(ctx, user)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (_m *UserStore) GetByExternalIdentity(ctx context.Context, provider, providerUserID string) (model.User, error) {
	ret := _m.Called(ctx, provider, providerUserID)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (_m *UserStore) CreateWithExternalIdentity(ctx context.Context, user model.User, identity model.ExternalIdentity) (model.User, error) {
	ret := _m.Called(ctx, user, identity)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (_m *UserStore) LinkExternalIdentity(ctx context.Context, identity model.ExternalIdentity) error {
	ret := _m.Called(ctx, identity)
	return ret.Error(0)
}

// DocumentStore is a mock of model.DocumentStore.
type DocumentStore struct {
	mock.Mock
}

func NewDocumentStore(t testingT) *DocumentStore {
	m := &DocumentStore{}
	register(&m.Mock, t)
	return m
}

func (_m *DocumentStore) Create(ctx context.Context, document model.Document) (model.Document, error) {
	ret := _m.Called(ctx, document)
	if rf, ok := ret.Get(0).(func(context.Context, model.Document) model.Document); ok {
		return rf(ctx, document), ret.Error(1)
	}
	return ret.Get(0).(model.Document), ret.Error(1)
}

func (_m *DocumentStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Document, error) {
	ret := _m.Called(ctx, ownerID)
	r0, _ := ret.Get(0).([]model.Document)
	return r0, ret.Error(1)
}

func (_m *DocumentStore) GetForOwner(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) (model.Document, error) {
	ret := _m.Called(ctx, id, ownerID)
	return ret.Get(0).(model.Document), ret.Error(1)
}

func (_m *DocumentStore) GetForOwnerEmail(ctx context.Context, id uuid.UUID, email string) (model.Document, error) {
	ret := _m.Called(ctx, id, email)
	return ret.Get(0).(model.Document), ret.Error(1)
}

// SignatureStore is a mock of model.SignatureStore.
type SignatureStore struct {
	mock.Mock
}

func NewSignatureStore(t testingT) *SignatureStore {
	m := &SignatureStore{}
	register(&m.Mock, t)
	return m
}

func (_m *SignatureStore) LatestForDocument(ctx context.Context, documentID uuid.UUID) (model.Signature, error) {
	ret := _m.Called(ctx, documentID)
	return ret.Get(0).(model.Signature), ret.Error(1)
}

// SigningStore is a mock of model.SigningStore.
type SigningStore struct {
	mock.Mock
}

func NewSigningStore(t testingT) *SigningStore {
	m := &SigningStore{}
	register(&m.Mock, t)
	return m
}

func (_m *SigningStore) Sign(ctx context.Context, documentID uuid.UUID, signature model.Signature) (model.Document, error) {
	ret := _m.Called(ctx, documentID, signature)
	return ret.Get(0).(model.Document), ret.Error(1)
}

// BlobStore is a mock of model.BlobStore.
type BlobStore struct {
	mock.Mock
}

func NewBlobStore(t testingT) *BlobStore {
	m := &BlobStore{}
	register(&m.Mock, t)
	return m
}

func (_m *BlobStore) Store(ctx context.Context, data []byte, originalName string) (string, error) {
	ret := _m.Called(ctx, data, originalName)
	return ret.String(0), ret.Error(1)
}

func (_m *BlobStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	ret := _m.Called(ctx, name)
	r0, _ := ret.Get(0).(io.ReadCloser)
	return r0, ret.Error(1)
}

// TokenManager is a mock of model.TokenManager.
type TokenManager struct {
	mock.Mock
}

func NewTokenManager(t testingT) *TokenManager {
	m := &TokenManager{}
	register(&m.Mock, t)
	return m
}

func (_m *TokenManager) Generate(identity model.Identity) (string, model.Session, error) {
	ret := _m.Called(identity)
	return ret.String(0), ret.Get(1).(model.Session), ret.Error(2)
}

func (_m *TokenManager) Parse(token string) (model.Session, error) {
	ret := _m.Called(token)
	return ret.Get(0).(model.Session), ret.Error(1)
}

// SessionRevoker is a mock of model.SessionRevoker.
type SessionRevoker struct {
	mock.Mock
}

func NewSessionRevoker(t testingT) *SessionRevoker {
	m := &SessionRevoker{}
	register(&m.Mock, t)
	return m
}

func (_m *SessionRevoker) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	ret := _m.Called(ctx, tokenID, ttl)
	return ret.Error(0)
}

func (_m *SessionRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	ret := _m.Called(ctx, tokenID)
	return ret.Bool(0), ret.Error(1)
}

// OAuthProvider is a mock of model.OAuthProvider.
type OAuthProvider struct {
	mock.Mock
}

func NewOAuthProvider(t testingT) *OAuthProvider {
	m := &OAuthProvider{}
	register(&m.Mock, t)
	return m
}

func (_m *OAuthProvider) Name() string {
	ret := _m.Called()
	return ret.String(0)
}

func (_m *OAuthProvider) LoginURL(state string) string {
	ret := _m.Called(state)
	return ret.String(0)
}

func (_m *OAuthProvider) Exchange(ctx context.Context, code string) (model.OAuthUserInfo, error) {
	ret := _m.Called(ctx, code)
	return ret.Get(0).(model.OAuthUserInfo), ret.Error(1)
}
