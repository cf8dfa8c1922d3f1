package video

import (
	"context"
	"sort"
	"strings"

	"github.com/family-connect/internal/domain"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Service interface {
	List(ctx context.Context, category string, limit int) ([]domain.Video, error)
}

type videoStore interface {
	ListEnabled(ctx context.Context) ([]domain.Video, error)
}

type mediaSigner interface {
	URL(ctx context.Context, key string) (string, error)
}

type service struct {
	repo  videoStore
	media mediaSigner
}

func NewService(repo videoStore, media mediaSigner) Service {
	return &service{repo: repo, media: media}
}

// List returns videos newest first. Hosted videos get a presigned URL; videos
// that point at an external player keep their url untouched.
func (s *service) List(ctx context.Context, category string, limit int) ([]domain.Video, error) {
	if limit <= 0 {
		limit = DefaultLimit
	} else if limit > MaxLimit {
		limit = MaxLimit
	}
	all, err := s.repo.ListEnabled(ctx)
	if err != nil {
		return nil, err
	}
	category = strings.TrimSpace(category)
	videos := make([]domain.Video, 0, len(all))
	for _, v := range all {
		if category != "" && !strings.EqualFold(v.Category, category) {
			continue
		}
		videos = append(videos, v)
	}
	sort.SliceStable(videos, func(i, j int) bool { return videos[i].PublishedAt.After(videos[j].PublishedAt) })
	if len(videos) > limit {
		videos = videos[:limit]
	}
	for i := range videos {
		v := &videos[i]
		if v.VideoKey != "" {
			if v.URL, err = s.media.URL(ctx, v.VideoKey); err != nil {
				return nil, err
			}
		}
		if v.ThumbnailURL, err = s.media.URL(ctx, v.ThumbnailKey); err != nil {
			return nil, err
		}
	}
	return videos, nil
}
