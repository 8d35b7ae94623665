package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/d60-Lab/socialnet/internal/cache"
	"github.com/d60-Lab/socialnet/internal/model"
	"github.com/d60-Lab/socialnet/internal/repository"
	"github.com/d60-Lab/socialnet/pkg/apperr"
	"github.com/d60-Lab/socialnet/pkg/mail"
)

// TokenPair carries the two signed tokens handed to the transport layer.
// The caller decides how to ship them (cookies).
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthConfig holds token secrets and lifetimes. The session TTL equals
// RefreshTTL: a session must never outlive the refresh token that renews it.
type AuthConfig struct {
	AccessSecret     string
	RefreshSecret    string
	ActivationSecret string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	ActivationTTL    time.Duration
}

type RegisterInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthService owns authentication: account lifecycle plus the rotating
// access/refresh token pair backed by the cached session snapshot.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (activationToken string, err error)
	VerifyAccount(ctx context.Context, activationToken, code string) error
	Login(ctx context.Context, identifier, password string) (TokenPair, model.UserView, error)
	Issue(ctx context.Context, view model.UserView) (TokenPair, error)
	ValidateAccess(ctx context.Context, accessToken string) (model.UserView, error)
	Refresh(ctx context.Context, refreshToken string) (string, model.UserView, error)
	Revoke(ctx context.Context, userID string) error
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
}

type authService struct {
	cfg      AuthConfig
	userRepo repository.UserRepository
	sessions *cache.SessionStore
	mailer   mail.Sender
}

func NewAuthService(cfg AuthConfig, userRepo repository.UserRepository, sessions *cache.SessionStore, mailer mail.Sender) AuthService {
	return &authService{cfg: cfg, userRepo: userRepo, sessions: sessions, mailer: mailer}
}

type activationClaims struct {
	User RegisterInput `json:"user"`
	Code string        `json:"code"`
	jwt.RegisteredClaims
}

// Register hashes the password, wraps the pending account in an activation
// token and mails the code. Nothing is written to the store until the code
// is verified.
func (s *authService) Register(ctx context.Context, input RegisterInput) (string, error) {
	if _, err := s.userRepo.FindByUsernameOrEmail(ctx, input.Username, input.Email); err == nil {
		return "", apperr.ErrConflict
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperr.Upstream(err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	input.Password = string(hashed)

	code := fmt.Sprintf("%06d", rand.Intn(1000000))
	now := time.Now()
	claims := activationClaims{
		User: input,
		Code: code,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.ActivationTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.ActivationSecret))
	if err != nil {
		return "", err
	}

	if err := s.mailer.Send(ctx, input.Email, "Activate Your Account",
		"Please use the following code to activate your account: "+code,
		"<p>Please use the following code to activate your account:</p><strong>"+code+"</strong>"); err != nil {
		return "", err
	}
	return token, nil
}

// VerifyAccount checks the code against the activation token and inserts the
// user together with an empty profile row.
func (s *authService) VerifyAccount(ctx context.Context, activationToken, code string) error {
	var claims activationClaims
	parsed, err := jwt.ParseWithClaims(activationToken, &claims, s.keyFunc(s.cfg.ActivationSecret))
	if err != nil || !parsed.Valid {
		return apperr.ErrUnauthenticated
	}
	if claims.Code != code {
		return apperr.New(apperr.CodeUnauthenticated, "invalid verify code")
	}

	input := claims.User
	if _, err := s.userRepo.FindByUsernameOrEmail(ctx, input.Username, input.Email); err == nil {
		return apperr.ErrConflict
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Upstream(err)
	}

	user := &model.User{
		ID:       uuid.New().String(),
		FullName: input.FullName,
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		Role:     model.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return apperr.Upstream(err)
	}
	return s.userRepo.SaveProfile(ctx, &model.ProfileInfo{UserID: user.ID, AccountStatus: model.AccountActive})
}

// Login verifies the credentials against the store and issues a fresh pair.
// The identifier matches either username or email.
func (s *authService) Login(ctx context.Context, identifier, password string) (TokenPair, model.UserView, error) {
	user, err := s.userRepo.FindByUsernameOrEmail(ctx, identifier, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TokenPair{}, model.UserView{}, apperr.New(apperr.CodeUnauthenticated, "invalid credentials")
		}
		return TokenPair{}, model.UserView{}, apperr.Upstream(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return TokenPair{}, model.UserView{}, apperr.New(apperr.CodeUnauthenticated, "invalid credentials")
	}
	view, err := s.userRepo.FindView(ctx, user.ID)
	if err != nil {
		return TokenPair{}, model.UserView{}, apperr.Upstream(err)
	}
	pair, err := s.Issue(ctx, view)
	return pair, view, err
}

// Issue mints the token pair and replaces the cached session snapshot,
// starting its TTL at the refresh-token lifetime.
func (s *authService) Issue(ctx context.Context, view model.UserView) (TokenPair, error) {
	access, err := s.sign(view.ID, s.cfg.AccessSecret, s.cfg.AccessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.sign(view.ID, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.sessions.Put(ctx, view); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// ValidateAccess verifies the token and loads the session it points at. Both
// a bad token and an evicted session mean the caller must re-authenticate.
func (s *authService) ValidateAccess(ctx context.Context, accessToken string) (model.UserView, error) {
	userID, err := s.subject(accessToken, s.cfg.AccessSecret)
	if err != nil {
		return model.UserView{}, apperr.ErrUnauthenticated
	}
	view, ok, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return model.UserView{}, err
	}
	if !ok {
		return model.UserView{}, apperr.ErrUnauthenticated
	}
	return view, nil
}

// Refresh re-issues an access token off a valid refresh token. A missing
// session means it was revoked or outlived its TTL: SessionExpired, the
// caller logs in again. The store is not consulted.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, model.UserView, error) {
	userID, err := s.subject(refreshToken, s.cfg.RefreshSecret)
	if err != nil {
		return "", model.UserView{}, apperr.ErrUnauthenticated
	}
	view, ok, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return "", model.UserView{}, err
	}
	if !ok {
		return "", model.UserView{}, apperr.ErrSessionExpired
	}
	access, err := s.sign(userID, s.cfg.AccessSecret, s.cfg.AccessTTL)
	if err != nil {
		return "", model.UserView{}, err
	}
	if err := s.sessions.Renew(ctx, userID); err != nil {
		return "", model.UserView{}, err
	}
	return access, view, nil
}

// Revoke drops the session; used on logout. Safe to call twice.
func (s *authService) Revoke(ctx context.Context, userID string) error {
	return s.sessions.Delete(ctx, userID)
}

// ChangePassword re-hashes after verifying the old password and sends the
// notification mail. Sessions stay valid: the tokens carry only the user id.
func (s *authService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		return apperr.Upstream(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)) != nil {
		return apperr.New(apperr.CodeUnauthenticated, "the old password is incorrect")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdateFields(ctx, userID, map[string]any{"password": string(hashed)}); err != nil {
		return apperr.Upstream(err)
	}
	return s.mailer.Send(ctx, user.Email, "Password Changed Successfully",
		"Your password has been successfully updated.",
		"<p>Your password has been successfully updated. If you did not initiate this change, please contact support.</p>")
}

func (s *authService) sign(userID, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func (s *authService) subject(token, secret string) (string, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, s.keyFunc(secret))
	if err != nil {
		return "", err
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", errors.New("invalid token")
	}
	return claims.Subject, nil
}

func (s *authService) keyFunc(secret string) jwt.Keyfunc {
	return func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}
}
