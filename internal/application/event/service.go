package event

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/family-connect/internal/domain"
)

const (
	ScopeUpcoming = "upcoming"
	ScopePast     = "past"
	ScopeAll      = "all"

	DefaultLimit = 20
	MaxLimit     = 100
)

type Service interface {
	List(ctx context.Context, scope string, limit int) ([]domain.Event, error)
}

type eventStore interface {
	ListEnabled(ctx context.Context) ([]domain.Event, error)
}

type mediaSigner interface {
	URL(ctx context.Context, key string) (string, error)
}

type service struct {
	repo  eventStore
	media mediaSigner
	now   func() time.Time
}

func NewService(repo eventStore, media mediaSigner) Service {
	return &service{repo: repo, media: media, now: time.Now}
}

func (s *service) List(ctx context.Context, scope string, limit int) ([]domain.Event, error) {
	scope = strings.ToLower(strings.TrimSpace(scope))
	if scope == "" {
		scope = ScopeUpcoming
	}
	if scope != ScopeUpcoming && scope != ScopePast && scope != ScopeAll {
		return nil, fmt.Errorf("scope must be upcoming, past or all: %w", domain.ErrBadRequest)
	}
	limit = clampLimit(limit)

	all, err := s.repo.ListEnabled(ctx)
	if err != nil {
		return nil, err
	}
	events := Select(all, scope, s.now())
	if len(events) > limit {
		events = events[:limit]
	}
	for i := range events {
		if events[i].ImageURL, err = s.media.URL(ctx, events[i].ImageKey); err != nil {
			return nil, err
		}
	}
	return events, nil
}

// Select filters and orders events for scope. An event without an end time
// counts as finished once it has started.
func Select(all []domain.Event, scope string, now time.Time) []domain.Event {
	out := make([]domain.Event, 0, len(all))
	for _, e := range all {
		end := e.EndsAt
		if end.IsZero() {
			end = e.StartsAt
		}
		finished := end.Before(now)
		switch scope {
		case ScopeUpcoming:
			if finished {
				continue
			}
		case ScopePast:
			if !finished {
				continue
			}
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if scope == ScopePast {
			return out[i].StartsAt.After(out[j].StartsAt)
		}
		return out[i].StartsAt.Before(out[j].StartsAt)
	})
	return out
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
