package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trendora/trendora-backend/internal/users"
	pkgauth "github.com/trendora/trendora-backend/pkg/auth"
	"github.com/trendora/trendora-backend/pkg/config"
	"github.com/trendora/trendora-backend/pkg/db/models"
	"github.com/trendora/trendora-backend/pkg/enums"
	pkgerrors "github.com/trendora/trendora-backend/pkg/errors"
	"github.com/trendora/trendora-backend/pkg/security"
)

type stubUserRepo struct {
	byEmail   map[string]*models.User
	byID      map[uuid.UUID]*models.User
	lastLogin *time.Time
	updates   map[string]any
	createErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byEmail: map[string]*models.User{},
		byID:    map[uuid.UUID]*models.User{},
	}
}

func (s *stubUserRepo) add(user *models.User) {
	s.byEmail[user.Email] = user
	s.byID[user.ID] = user
}

func (s *stubUserRepo) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	user := dto.ToModel()
	user.ID = uuid.New()
	s.add(user)
	return user, nil
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.lastLogin = &at
	return nil
}

func (s *stubUserRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	return nil
}

type stubSessionManager struct {
	registered []string
	revoked    []string
}

func (s *stubSessionManager) Register(ctx context.Context, jti string, userID uuid.UUID) error {
	s.registered = append(s.registered, jti)
	return nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, jti string) error {
	s.revoked = append(s.revoked, jti)
	return nil
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "trendora", ExpirationMinutes: 30}
}

func newTestService(t *testing.T, repo *stubUserRepo, sessions *stubSessionManager) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
		PasswordCfg:    testPasswordConfig(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedUser(t *testing.T, repo *stubUserRepo, email, password string, role enums.UserRole) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig())
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  "Seed User",
		Role:         role,
		IsActive:     true,
	}
	repo.add(user)
	return user
}

func TestRegisterIssuesTokenAndSession(t *testing.T) {
	repo := newStubUserRepo()
	sessions := &stubSessionManager{}
	svc := newTestService(t, repo, sessions)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:       "New.Customer@Example.com",
		Password:    "a-strong-password",
		DisplayName: "New Customer",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("expected access token")
	}
	if resp.User.Email != "new.customer@example.com" {
		t.Fatalf("email not normalized: %s", resp.User.Email)
	}
	if resp.User.Role != enums.UserRoleCustomer {
		t.Fatalf("signup must always create customers, got %s", resp.User.Role)
	}
	if len(sessions.registered) != 1 {
		t.Fatal("expected session registered")
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.ID != sessions.registered[0] {
		t.Fatal("token jti must match the registered session")
	}
}

func TestLoginSuccess(t *testing.T) {
	repo := newStubUserRepo()
	sessions := &stubSessionManager{}
	svc := newTestService(t, repo, sessions)
	seedUser(t, repo, "shopper@example.com", "correct-password", enums.UserRoleCustomer)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "shopper@example.com",
		Password: "correct-password",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("expected access token")
	}
	if repo.lastLogin == nil {
		t.Fatal("expected last login recorded")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(t, repo, &stubSessionManager{})
	seedUser(t, repo, "shopper@example.com", "correct-password", enums.UserRoleCustomer)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "shopper@example.com",
		Password: "wrong-password",
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginUnknownEmailMatchesWrongPassword(t *testing.T) {
	svc := newTestService(t, newStubUserRepo(), &stubSessionManager{})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Message() != invalidCredentialsMessage {
		t.Fatalf("unknown accounts must not be distinguishable: %v", err)
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(t, repo, &stubSessionManager{})
	user := seedUser(t, repo, "off@example.com", "correct-password", enums.UserRoleCustomer)
	user.IsActive = false

	_, err := svc.Login(context.Background(), LoginRequest{Email: "off@example.com", Password: "correct-password"})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestAdminLoginRejectsCustomers(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(t, repo, &stubSessionManager{})
	seedUser(t, repo, "shopper@example.com", "correct-password", enums.UserRoleCustomer)

	_, err := svc.AdminLogin(context.Background(), LoginRequest{
		Email:    "shopper@example.com",
		Password: "correct-password",
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	sessions := &stubSessionManager{}
	svc := newTestService(t, newStubUserRepo(), sessions)

	if err := svc.Logout(context.Background(), "some-jti"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "some-jti" {
		t.Fatal("expected session revoked")
	}

	if err := svc.Logout(context.Background(), " "); err == nil {
		t.Fatal("expected error for blank jti")
	}
}

func TestChangePassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(t, repo, &stubSessionManager{})
	user := seedUser(t, repo, "shopper@example.com", "old-password", enums.UserRoleCustomer)

	err := svc.ChangePassword(context.Background(), user.ID, ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "brand-new-password",
	})
	if pkgerrors.As(err) == nil {
		t.Fatalf("expected error for wrong current password, got %v", err)
	}

	if err := svc.ChangePassword(context.Background(), user.ID, ChangePasswordRequest{
		CurrentPassword: "old-password",
		NewPassword:     "brand-new-password",
	}); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if repo.updates["password_hash"] == nil || repo.updates["password_hash"] == user.PasswordHash {
		t.Fatal("expected new hash stored")
	}
}

func TestUpdateProfileBuildsColumnMap(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(t, repo, &stubSessionManager{})
	user := seedUser(t, repo, "shopper@example.com", "password-123", enums.UserRoleCustomer)

	name := "Renamed"
	bio := "Plant enthusiast"
	if _, err := svc.UpdateProfile(context.Background(), user.ID, UpdateProfileRequest{
		DisplayName: &name,
		Bio:         &bio,
	}); err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if repo.updates["display_name"] != "Renamed" {
		t.Fatalf("display_name not set: %v", repo.updates)
	}
	if repo.updates["bio"] != &bio {
		t.Fatalf("bio not set: %v", repo.updates)
	}
}
