package http

import (
	"context"

	"github.com/family-connect/internal/domain"
	jwtinfra "github.com/family-connect/internal/infrastructure/jwt"
	"github.com/family-connect/internal/infrastructure/sns"
)

// UserRepository is the minimal interface the router requires from a user store.
type UserRepository interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	// ListEnabled returns every enabled user; reminders are derived from it.
	ListEnabled(ctx context.Context) ([]domain.User, error)
}

// SessionRepository is the minimal interface the router requires from a session store.
type SessionRepository interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error)
	RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error
	Disable(ctx context.Context, sessionID string) error
}

// DeviceRepository is the minimal interface the router requires from a device store.
type DeviceRepository interface {
	GetByUUID(ctx context.Context, uuid string) (*domain.Device, error)
	Put(ctx context.Context, d *domain.Device) error
	Update(ctx context.Context, deviceID string, updates map[string]interface{}) error
}

// VerificationRepository is the minimal interface the router requires from a verification store.
type VerificationRepository interface {
	Put(ctx context.Context, v *domain.UserVerification) error
	Get(ctx context.Context, subject, verType string) (*domain.UserVerification, error)
	IncrementAttempts(ctx context.Context, subject, verType string, limit int) (int, error)
	Consume(ctx context.Context, subject, verType string) (*domain.UserVerification, error)
	Delete(ctx context.Context, subject, verType string) error
}

// NotificationRepository is the minimal interface the router requires from a notification store.
type NotificationRepository interface {
	ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error)
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID string) (*domain.Notification, error)
}

type EventRepository interface {
	ListEnabled(ctx context.Context) ([]domain.Event, error)
}

type VideoRepository interface {
	ListEnabled(ctx context.Context) ([]domain.Video, error)
}

type AdRepository interface {
	ListEnabled(ctx context.Context) ([]domain.Advertisement, error)
}

type MenuRepository interface {
	ListEnabled(ctx context.Context) ([]domain.Menu, error)
}

// MediaSigner hands out time-limited links for stored media keys.
type MediaSigner interface {
	URL(ctx context.Context, key string) (string, error)
}

// TokenProvider signs and verifies bearer tokens.
type TokenProvider interface {
	Sign(userID, deviceID, role, sessionID string) (string, error)
	Verify(tokenStr string) (*jwtinfra.Claims, error)
}

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         UserRepository
	SessionRepo      SessionRepository
	DeviceRepo       DeviceRepository
	VerificationRepo VerificationRepository
	NotificationRepo NotificationRepository
	EventRepo        EventRepository
	VideoRepo        VideoRepository
	AdRepo           AdRepository
	MenuRepo         MenuRepository
	Media            MediaSigner
	SMSSender        sns.SMSSender // nil: OTP codes are logged
	JWTProvider      TokenProvider
}
