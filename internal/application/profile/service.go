package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/family-connect/internal/domain"
	"github.com/family-connect/internal/pkg/validate"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldName        = "name"
	fieldEmail       = "email"
	fieldCity        = "city"
	fieldBirthday    = "birthday"
	fieldAnniversary = "anniversary"
)

type Service interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type mediaSigner interface {
	URL(ctx context.Context, key string) (string, error)
}

type service struct {
	repo  userStore
	media mediaSigner
	now   func() time.Time
}

func NewService(repo userStore, media mediaSigner) Service {
	return &service{repo: repo, media: media, now: time.Now}
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.PhotoKey != "" && s.media != nil {
		if u.PhotoURL, err = s.media.URL(ctx, u.PhotoKey); err != nil {
			return nil, err
		}
	}
	return u, nil
}

func (s *service) Update(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error) {
	for _, f := range []*string{req.Name, req.Email, req.City, req.Birthday, req.Anniversary} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if req.Name != nil {
		name, err := validate.PersonName(*req.Name)
		if err != nil {
			return nil, err
		}
		updates[fieldName] = name
	}
	if req.Email != nil {
		updates[fieldEmail] = strings.ToLower(*req.Email)
	}
	if req.City != nil {
		updates[fieldCity] = *req.City
	}
	if req.Birthday != nil {
		if err := validate.PastDate("birthday", *req.Birthday, s.now()); err != nil {
			return nil, err
		}
		updates[fieldBirthday] = *req.Birthday
	}
	if req.Anniversary != nil {
		if err := validate.PastDate("anniversary", *req.Anniversary, s.now()); err != nil {
			return nil, err
		}
		updates[fieldAnniversary] = *req.Anniversary
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("no profile fields to update: %w", domain.ErrBadRequest)
	}
	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}
