package dashboard

import (
	"context"
	"sort"
	"time"

	"github.com/family-connect/internal/domain"
)

// Dashboard is the home screen payload.
type Dashboard struct {
	Menus []domain.Menu          `json:"menus"`
	Ads   []domain.Advertisement `json:"ads"`
}

type Service interface {
	Load(ctx context.Context) (*Dashboard, error)
}

type menuStore interface {
	ListEnabled(ctx context.Context) ([]domain.Menu, error)
}

type adStore interface {
	ListEnabled(ctx context.Context) ([]domain.Advertisement, error)
}

type mediaSigner interface {
	URL(ctx context.Context, key string) (string, error)
}

type service struct {
	menus menuStore
	ads   adStore
	media mediaSigner
	now   func() time.Time
}

func NewService(menus menuStore, ads adStore, media mediaSigner) Service {
	return &service{menus: menus, ads: ads, media: media, now: time.Now}
}

func (s *service) Load(ctx context.Context) (*Dashboard, error) {
	menus, err := s.menus.ListEnabled(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(menus, func(i, j int) bool {
		if menus[i].Position != menus[j].Position {
			return menus[i].Position < menus[j].Position
		}
		return menus[i].Title < menus[j].Title
	})

	all, err := s.ads.ListEnabled(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	ads := make([]domain.Advertisement, 0, len(all))
	for _, ad := range all {
		if !ad.Active(now) {
			continue
		}
		if ad.ImageURL, err = s.media.URL(ctx, ad.ImageKey); err != nil {
			return nil, err
		}
		ads = append(ads, ad)
	}
	sort.SliceStable(ads, func(i, j int) bool { return ads[i].Position < ads[j].Position })

	if menus == nil {
		menus = []domain.Menu{}
	}
	return &Dashboard{Menus: menus, Ads: ads}, nil
}
