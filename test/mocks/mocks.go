package mocks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thepotential/verification-service/internal/core/domain/account"
	"github.com/thepotential/verification-service/internal/core/domain/session"
	"github.com/thepotential/verification-service/internal/core/domain/token"
	"github.com/thepotential/verification-service/internal/core/ports"
)

// TokenStoreMock is a lightweight mock for TokenStore
type TokenStoreMock struct {
	SetFn         func(ctx context.Context, key string, rec *token.Record, ttl time.Duration) error
	GetFn         func(ctx context.Context, key string) (*token.Record, error)
	GetDelFn      func(ctx context.Context, key string) (*token.Record, error)
	DelFn         func(ctx context.Context, key string) error
	GetByPrefixFn func(ctx context.Context, prefix string) ([]token.Entry, error)
}

func (m *TokenStoreMock) Set(ctx context.Context, key string, rec *token.Record, ttl time.Duration) error {
	if m.SetFn != nil {
		return m.SetFn(ctx, key, rec, ttl)
	}
	return nil
}
func (m *TokenStoreMock) Get(ctx context.Context, key string) (*token.Record, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, key)
	}
	return nil, token.ErrNotFound
}
func (m *TokenStoreMock) GetDel(ctx context.Context, key string) (*token.Record, error) {
	if m.GetDelFn != nil {
		return m.GetDelFn(ctx, key)
	}
	return nil, token.ErrNotFound
}
func (m *TokenStoreMock) Del(ctx context.Context, key string) error {
	if m.DelFn != nil {
		return m.DelFn(ctx, key)
	}
	return nil
}
func (m *TokenStoreMock) GetByPrefix(ctx context.Context, prefix string) ([]token.Entry, error) {
	if m.GetByPrefixFn != nil {
		return m.GetByPrefixFn(ctx, prefix)
	}
	return nil, nil
}

// MemoryTokenStore is an in-memory TokenStore for exercising full token
// lifecycles without Redis or Postgres.
type MemoryTokenStore struct {
	mu      sync.Mutex
	records map[string]*token.Record
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{records: make(map[string]*token.Record)}
}

func (m *MemoryTokenStore) Set(ctx context.Context, key string, rec *token.Record, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("non-positive ttl for key %s", key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.records[key] = &cp
	return nil
}

func (m *MemoryTokenStore) Get(ctx context.Context, key string) (*token.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[key]
	if !ok {
		return nil, token.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *MemoryTokenStore) GetDel(ctx context.Context, key string) (*token.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[key]
	if !ok {
		return nil, token.ErrNotFound
	}
	delete(m.records, key)
	return rec, nil
}

func (m *MemoryTokenStore) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, key)
	return nil
}

func (m *MemoryTokenStore) GetByPrefix(ctx context.Context, prefix string) ([]token.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var entries []token.Entry
	for k, rec := range m.records {
		if strings.HasPrefix(k, prefix) {
			cp := *rec
			entries = append(entries, token.Entry{Key: k, Record: &cp})
		}
	}
	return entries, nil
}

// Len reports how many records are currently stored.
func (m *MemoryTokenStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// AccountRepositoryMock is a lightweight mock for AccountRepository
type AccountRepositoryMock struct {
	CreateFn     func(ctx context.Context, a *account.Account) error
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*account.Account, error)
	GetByEmailFn func(ctx context.Context, email string) (*account.Account, error)
	UpdateFn     func(ctx context.Context, a *account.Account) error
	DeleteFn     func(ctx context.Context, id uuid.UUID) error
}

func (m *AccountRepositoryMock) Create(ctx context.Context, a *account.Account) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}
func (m *AccountRepositoryMock) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, account.ErrNotFound
}
func (m *AccountRepositoryMock) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	return nil, account.ErrNotFound
}
func (m *AccountRepositoryMock) Update(ctx context.Context, a *account.Account) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, a)
	}
	return nil
}
func (m *AccountRepositoryMock) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

// EmailServiceMock is a lightweight mock for EmailService
type EmailServiceMock struct {
	SendVerificationEmailFn     func(ctx context.Context, email, token, displayName string) error
	SendMagicLinkEmailFn        func(ctx context.Context, email, token, displayName string) error
	SendVerificationCodeEmailFn func(ctx context.Context, email, code, displayName string) error
}

func (m *EmailServiceMock) SendVerificationEmail(ctx context.Context, email, token, displayName string) error {
	if m.SendVerificationEmailFn != nil {
		return m.SendVerificationEmailFn(ctx, email, token, displayName)
	}
	return nil
}
func (m *EmailServiceMock) SendMagicLinkEmail(ctx context.Context, email, token, displayName string) error {
	if m.SendMagicLinkEmailFn != nil {
		return m.SendMagicLinkEmailFn(ctx, email, token, displayName)
	}
	return nil
}
func (m *EmailServiceMock) SendVerificationCodeEmail(ctx context.Context, email, code, displayName string) error {
	if m.SendVerificationCodeEmailFn != nil {
		return m.SendVerificationCodeEmailFn(ctx, email, code, displayName)
	}
	return nil
}

// SessionServiceMock is a lightweight mock for SessionService
type SessionServiceMock struct {
	MintFn     func(ctx context.Context, a *account.Account) (*session.Session, error)
	ValidateFn func(ctx context.Context, accessToken string) (*session.Claims, error)
}

func (m *SessionServiceMock) Mint(ctx context.Context, a *account.Account) (*session.Session, error) {
	if m.MintFn != nil {
		return m.MintFn(ctx, a)
	}
	return &session.Session{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 900}, nil
}
func (m *SessionServiceMock) Validate(ctx context.Context, accessToken string) (*session.Claims, error) {
	if m.ValidateFn != nil {
		return m.ValidateFn(ctx, accessToken)
	}
	return nil, fmt.Errorf("invalid token")
}

// AccountServiceMock is a lightweight mock for AccountService
type AccountServiceMock struct {
	SignupFn                  func(ctx context.Context, req *account.SignupRequest) (*ports.SignupResult, error)
	ResendVerificationEmailFn func(ctx context.Context, email string) error
	RequestMagicLinkFn        func(ctx context.Context, email string) error
	GetAccountFn              func(ctx context.Context, id uuid.UUID) (*account.Account, error)
	DeleteAccountFn           func(ctx context.Context, id uuid.UUID) error
}

func (m *AccountServiceMock) Signup(ctx context.Context, req *account.SignupRequest) (*ports.SignupResult, error) {
	if m.SignupFn != nil {
		return m.SignupFn(ctx, req)
	}
	return nil, fmt.Errorf("not implemented")
}
func (m *AccountServiceMock) ResendVerificationEmail(ctx context.Context, email string) error {
	if m.ResendVerificationEmailFn != nil {
		return m.ResendVerificationEmailFn(ctx, email)
	}
	return nil
}
func (m *AccountServiceMock) RequestMagicLink(ctx context.Context, email string) error {
	if m.RequestMagicLinkFn != nil {
		return m.RequestMagicLinkFn(ctx, email)
	}
	return nil
}
func (m *AccountServiceMock) GetAccount(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	if m.GetAccountFn != nil {
		return m.GetAccountFn(ctx, id)
	}
	return nil, account.ErrNotFound
}
func (m *AccountServiceMock) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	if m.DeleteAccountFn != nil {
		return m.DeleteAccountFn(ctx, id)
	}
	return nil
}

// VerificationServiceMock is a lightweight mock for VerificationService
type VerificationServiceMock struct {
	IssueEmailVerificationFn func(ctx context.Context, userID, email string) (string, error)
	IssueMagicLinkFn         func(ctx context.Context, userID, email string) (string, error)
	IssueVerificationCodeFn  func(ctx context.Context, userID, email string) (string, error)
	VerifyEmailFn            func(ctx context.Context, tok string) (*account.Account, error)
	VerifyMagicLinkFn        func(ctx context.Context, tok string) (*account.Account, *session.Session, error)
	VerifyCodeFn             func(ctx context.Context, email, code string) (*account.Account, *session.Session, error)
	PurgeAllFn               func(ctx context.Context, prefix string) (int, error)
	PurgeUserTokensFn        func(ctx context.Context, userID string) (int, error)
}

func (m *VerificationServiceMock) IssueEmailVerification(ctx context.Context, userID, email string) (string, error) {
	if m.IssueEmailVerificationFn != nil {
		return m.IssueEmailVerificationFn(ctx, userID, email)
	}
	return "tok", nil
}
func (m *VerificationServiceMock) IssueMagicLink(ctx context.Context, userID, email string) (string, error) {
	if m.IssueMagicLinkFn != nil {
		return m.IssueMagicLinkFn(ctx, userID, email)
	}
	return "tok", nil
}
func (m *VerificationServiceMock) IssueVerificationCode(ctx context.Context, userID, email string) (string, error) {
	if m.IssueVerificationCodeFn != nil {
		return m.IssueVerificationCodeFn(ctx, userID, email)
	}
	return "123456", nil
}
func (m *VerificationServiceMock) VerifyEmail(ctx context.Context, tok string) (*account.Account, error) {
	if m.VerifyEmailFn != nil {
		return m.VerifyEmailFn(ctx, tok)
	}
	return nil, token.ErrNotFound
}
func (m *VerificationServiceMock) VerifyMagicLink(ctx context.Context, tok string) (*account.Account, *session.Session, error) {
	if m.VerifyMagicLinkFn != nil {
		return m.VerifyMagicLinkFn(ctx, tok)
	}
	return nil, nil, token.ErrNotFound
}
func (m *VerificationServiceMock) VerifyCode(ctx context.Context, email, code string) (*account.Account, *session.Session, error) {
	if m.VerifyCodeFn != nil {
		return m.VerifyCodeFn(ctx, email, code)
	}
	return nil, nil, token.ErrNotFound
}
func (m *VerificationServiceMock) PurgeAll(ctx context.Context, prefix string) (int, error) {
	if m.PurgeAllFn != nil {
		return m.PurgeAllFn(ctx, prefix)
	}
	return 0, nil
}
func (m *VerificationServiceMock) PurgeUserTokens(ctx context.Context, userID string) (int, error) {
	if m.PurgeUserTokensFn != nil {
		return m.PurgeUserTokensFn(ctx, userID)
	}
	return 0, nil
}
