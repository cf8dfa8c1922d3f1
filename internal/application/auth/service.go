package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/family-connect/internal/config"
	"github.com/family-connect/internal/domain"
	"github.com/family-connect/internal/infrastructure/sns"
	pkgdevice "github.com/family-connect/internal/pkg/device"
	"github.com/family-connect/internal/pkg/id"
	"github.com/family-connect/internal/pkg/phone"
	pkgtoken "github.com/family-connect/internal/pkg/token"
	"github.com/family-connect/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

const otpDigits = 6

// OTPDispatch is returned once a code has been sent.
type OTPDispatch struct {
	Phone     string `json:"phone"`
	ExpiresIn int    `json:"expires_in"`
	ResendIn  int    `json:"resend_in"`
}

type VerifyOTPRequest struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

// VerifyResult carries the login ticket and whether the name step is still needed.
type VerifyResult struct {
	Ticket    string `json:"ticket"`
	UserID    string `json:"user_id"`
	NeedsName bool   `json:"needs_name"`
	Name      string `json:"name"`
}

type LoginRequest struct {
	Ticket     string `json:"ticket" validate:"required"`
	DeviceUUID string `json:"device_uuid" validate:"required,max=64"`
	PushToken  string `json:"push_token" validate:"max=512"`
}

type LoginResult struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
	User         *domain.User `json:"user"`
}

type TokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

type Service interface {
	SendOTP(ctx context.Context, rawPhone string) (*OTPDispatch, error)
	VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*VerifyResult, error)
	CompleteRegistration(ctx context.Context, ticket, name string) (*domain.User, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, sessionID string) error
}

type verificationStore interface {
	Put(ctx context.Context, v *domain.UserVerification) error
	Get(ctx context.Context, subject, verType string) (*domain.UserVerification, error)
	IncrementAttempts(ctx context.Context, subject, verType string, limit int) (int, error)
	Consume(ctx context.Context, subject, verType string) (*domain.UserVerification, error)
	Delete(ctx context.Context, subject, verType string) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error)
	RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error
	Disable(ctx context.Context, sessionID string) error
}

type jwtSigner interface {
	Sign(userID, deviceID, role, sessionID string) (string, error)
}

type ServiceDeps struct {
	VerificationRepo verificationStore
	UserRepo         userStore
	SessionRepo      sessionStore
	DeviceRepo       pkgdevice.Store
	SMSSender        sns.SMSSender // nil in development: codes are logged instead
	JWTProvider      jwtSigner
	OTP              config.OTPSettings
	RefreshTokenTTL  time.Duration
	Now              func() time.Time
}

type service struct {
	verificationRepo verificationStore
	userRepo         userStore
	sessionRepo      sessionStore
	deviceRepo       pkgdevice.Store
	smsSender        sns.SMSSender
	jwtProvider      jwtSigner
	otp              config.OTPSettings
	refreshTokenTTL  time.Duration
	now              func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		verificationRepo: deps.VerificationRepo,
		userRepo:         deps.UserRepo,
		sessionRepo:      deps.SessionRepo,
		deviceRepo:       deps.DeviceRepo,
		smsSender:        deps.SMSSender,
		jwtProvider:      deps.JWTProvider,
		otp:              deps.OTP,
		refreshTokenTTL:  deps.RefreshTokenTTL,
		now:              now,
	}
}

func (s *service) SendOTP(ctx context.Context, rawPhone string) (*OTPDispatch, error) {
	p, err := phone.Normalize(rawPhone, s.otp.DefaultCountryCode)
	if err != nil {
		return nil, err
	}
	now := s.now()

	existing, err := s.verificationRepo.Get(ctx, p, domain.VerificationOTP)
	switch {
	case err == nil:
		wait := time.Unix(existing.SentAt, 0).Add(s.otp.ResendCooldown).Sub(now)
		if existing.ExpiresAt > now.Unix() && wait > 0 {
			return nil, fmt.Errorf("code already sent, retry in %ds: %w", int(wait.Seconds()+0.5), domain.ErrTooManyRequests)
		}
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	code, err := pkgtoken.NewOTP(otpDigits)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash otp: %w", err)
	}
	v := &domain.UserVerification{
		Subject:   p,
		Type:      domain.VerificationOTP,
		CodeHash:  string(hash),
		SentAt:    now.Unix(),
		ExpiresAt: now.Add(s.otp.TTL).Unix(),
	}
	if err := s.verificationRepo.Put(ctx, v); err != nil {
		return nil, err
	}

	if s.smsSender == nil {
		slog.Warn("SMS sender not configured, OTP written to log", "phone", p, "otp", code)
	} else if err := s.smsSender.SendSMS(ctx, p, "Your verification code is "+code); err != nil {
		if delErr := s.verificationRepo.Delete(ctx, p, domain.VerificationOTP); delErr != nil {
			slog.Warn("failed to discard undelivered OTP", "phone", p, "err", delErr)
		}
		return nil, fmt.Errorf("send otp: %w", err)
	}

	return &OTPDispatch{
		Phone:     p,
		ExpiresIn: int(s.otp.TTL.Seconds()),
		ResendIn:  int(s.otp.ResendCooldown.Seconds()),
	}, nil
}

func (s *service) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*VerifyResult, error) {
	p, err := phone.Normalize(req.Phone, s.otp.DefaultCountryCode)
	if err != nil {
		return nil, err
	}
	code := strings.TrimSpace(req.OTP)
	if len(code) != otpDigits || strings.Trim(code, "0123456789") != "" {
		return nil, fmt.Errorf("otp must be %d digits: %w", otpDigits, domain.ErrBadRequest)
	}

	v, err := s.verificationRepo.Get(ctx, p, domain.VerificationOTP)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("no pending code for this phone: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	if v.ExpiresAt < s.now().Unix() {
		s.discard(ctx, p, domain.VerificationOTP)
		return nil, fmt.Errorf("code expired: %w", domain.ErrUnauthorized)
	}
	if s.otp.MaxAttempts > 0 && v.Attempts >= s.otp.MaxAttempts {
		s.discard(ctx, p, domain.VerificationOTP)
		return nil, fmt.Errorf("too many wrong codes, request a new one: %w", domain.ErrTooManyRequests)
	}
	// The guess is counted before the compare so parallel requests share the limit.
	if _, err := s.verificationRepo.IncrementAttempts(ctx, p, domain.VerificationOTP, s.otp.MaxAttempts); err != nil {
		switch {
		case errors.Is(err, domain.ErrTooManyRequests):
			s.discard(ctx, p, domain.VerificationOTP)
			return nil, fmt.Errorf("too many wrong codes, request a new one: %w", domain.ErrTooManyRequests)
		case errors.Is(err, domain.ErrNotFound):
			return nil, fmt.Errorf("no pending code for this phone: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(v.CodeHash), []byte(code)); err != nil {
		return nil, fmt.Errorf("invalid code: %w", domain.ErrUnauthorized)
	}
	used, err := s.verificationRepo.Consume(ctx, p, domain.VerificationOTP)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("code already used: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if used.CodeHash != v.CodeHash {
		return nil, fmt.Errorf("a newer code was sent, use that one: %w", domain.ErrUnauthorized)
	}

	u, err := s.userRepo.GetByPhone(ctx, p)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		u, err = s.createPendingUser(ctx, p)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}
	if !u.Enable {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrForbidden)
	}

	ticket, err := pkgtoken.NewTicket()
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := s.verificationRepo.Put(ctx, &domain.UserVerification{
		Subject:   ticket,
		Type:      domain.VerificationTicket,
		UserID:    u.UserID,
		SentAt:    now.Unix(),
		ExpiresAt: now.Add(s.otp.TicketTTL).Unix(),
	}); err != nil {
		return nil, err
	}
	return &VerifyResult{Ticket: ticket, UserID: u.UserID, NeedsName: !u.Registered, Name: u.Name}, nil
}

func (s *service) CompleteRegistration(ctx context.Context, ticket, name string) (*domain.User, error) {
	t, err := s.ticket(ctx, ticket)
	if err != nil {
		return nil, err
	}
	clean, err := validate.PersonName(name)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, t.UserID, map[string]interface{}{
		"name":       clean,
		"registered": true,
	}); err != nil {
		return nil, err
	}
	return s.userRepo.Get(ctx, t.UserID)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	t, err := s.ticket(ctx, req.Ticket)
	if err != nil {
		return nil, err
	}
	u, err := s.userRepo.Get(ctx, t.UserID)
	if err != nil {
		return nil, err
	}
	if !u.Registered {
		return nil, fmt.Errorf("name required before login: %w", domain.ErrBadRequest)
	}
	if !u.Enable {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrForbidden)
	}
	// Only the caller whose delete removes the ticket goes on to get a session.
	if _, err := s.verificationRepo.Consume(ctx, req.Ticket, domain.VerificationTicket); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("ticket already used, verify the code again: %w", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("consume ticket: %w", err)
	}

	dev, err := pkgdevice.Resolve(ctx, s.deviceRepo, req.DeviceUUID, req.PushToken, u.UserID)
	if err != nil {
		return nil, err
	}
	refreshToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	sess := &domain.Session{
		SessionID:        id.New(),
		UserID:           u.UserID,
		DeviceID:         dev.DeviceID,
		Enable:           true,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: now.Add(s.refreshTokenTTL).Unix(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.sessionRepo.Put(ctx, sess); err != nil {
		return nil, err
	}
	bearer, err := s.jwtProvider.Sign(u.UserID, dev.DeviceID, u.Role, sess.SessionID)
	if err != nil {
		return nil, err
	}
	slog.Info("user logged in", "user_id", u.UserID, "device_id", dev.DeviceID, "session_id", sess.SessionID)
	return &LoginResult{Token: bearer, RefreshToken: refreshToken, User: u}, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh_token is required: %w", domain.ErrBadRequest)
	}
	sess, err := s.sessionRepo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("invalid refresh token: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if sess.RefreshExpiresAt < s.now().Unix() {
		return nil, fmt.Errorf("refresh token expired: %w", domain.ErrUnauthorized)
	}
	u, err := s.userRepo.Get(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if !u.Enable {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrForbidden)
	}
	newToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	if err := s.sessionRepo.RotateRefreshToken(ctx, sess.SessionID, newToken, s.now().Add(s.refreshTokenTTL).Unix()); err != nil {
		return nil, err
	}
	bearer, err := s.jwtProvider.Sign(u.UserID, sess.DeviceID, u.Role, sess.SessionID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Token: bearer, RefreshToken: newToken}, nil
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	return s.sessionRepo.Disable(ctx, sessionID)
}

// ticket loads an unexpired login ticket.
func (s *service) ticket(ctx context.Context, ticket string) (*domain.UserVerification, error) {
	if ticket == "" {
		return nil, fmt.Errorf("ticket is required: %w", domain.ErrBadRequest)
	}
	t, err := s.verificationRepo.Get(ctx, ticket, domain.VerificationTicket)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("unknown ticket, verify the code again: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if t.ExpiresAt < s.now().Unix() {
		return nil, fmt.Errorf("ticket expired, verify the code again: %w", domain.ErrUnauthorized)
	}
	return t, nil
}

func (s *service) createPendingUser(ctx context.Context, p string) (*domain.User, error) {
	now := s.now().UTC()
	u := &domain.User{
		UserID:    id.New(),
		Phone:     p,
		Role:      domain.RoleUser,
		Enable:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.userRepo.Put(ctx, u); err != nil {
		return nil, err
	}
	slog.Info("created pending user", "user_id", u.UserID)
	return u, nil
}

func (s *service) discard(ctx context.Context, subject, verType string) {
	if err := s.verificationRepo.Delete(ctx, subject, verType); err != nil {
		slog.Warn("failed to delete verification record", "subject", subject, "type", verType, "err", err)
	}
}
