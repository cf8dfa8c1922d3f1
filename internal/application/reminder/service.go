package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/family-connect/internal/domain"
)

const (
	KindAll = "all"

	DefaultWindowDays = 7
	MaxWindowDays     = 366
)

type Service interface {
	Upcoming(ctx context.Context, kind string, days int) ([]domain.Reminder, error)
}

type userStore interface {
	ListEnabled(ctx context.Context) ([]domain.User, error)
}

type service struct {
	repo userStore
	now  func() time.Time
}

func NewService(repo userStore) Service {
	return &service{repo: repo, now: time.Now}
}

// Upcoming lists birthdays and/or anniversaries of registered members falling
// within the next days days, today included, soonest first.
func (s *service) Upcoming(ctx context.Context, kind string, days int) ([]domain.Reminder, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" {
		kind = KindAll
	}
	if kind != KindAll && kind != domain.ReminderBirthday && kind != domain.ReminderAnniversary {
		return nil, fmt.Errorf("kind must be birthday, anniversary or all: %w", domain.ErrBadRequest)
	}
	if days < 0 || days > MaxWindowDays {
		return nil, fmt.Errorf("days must be between 0 and %d: %w", MaxWindowDays, domain.ErrBadRequest)
	}

	users, err := s.repo.ListEnabled(ctx)
	if err != nil {
		return nil, err
	}
	return Collect(users, kind, days, s.now()), nil
}

// Collect builds the reminder list for users relative to now's calendar day.
func Collect(users []domain.User, kind string, days int, now time.Time) []domain.Reminder {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	out := []domain.Reminder{}
	for _, u := range users {
		if !u.Registered || !u.Enable {
			continue
		}
		if kind == KindAll || kind == domain.ReminderBirthday {
			if r, ok := reminderFor(u, domain.ReminderBirthday, u.Birthday, today, days); ok {
				out = append(out, r)
			}
		}
		if kind == KindAll || kind == domain.ReminderAnniversary {
			if r, ok := reminderFor(u, domain.ReminderAnniversary, u.Anniversary, today, days); ok {
				out = append(out, r)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DaysUntil != out[j].DaysUntil {
			return out[i].DaysUntil < out[j].DaysUntil
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

func reminderFor(u domain.User, kind, date string, today time.Time, days int) (domain.Reminder, bool) {
	if date == "" {
		return domain.Reminder{}, false
	}
	orig, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		slog.Warn("skipping unparseable reminder date", "user_id", u.UserID, "kind", kind, "date", date)
		return domain.Reminder{}, false
	}
	next := NextOccurrence(orig, today)
	until := int(next.Sub(today).Hours() / 24)
	if until > days {
		return domain.Reminder{}, false
	}
	return domain.Reminder{
		UserID:         u.UserID,
		Name:           u.Name,
		Phone:          u.Phone,
		Kind:           kind,
		Date:           date,
		NextOccurrence: next.Format(domain.DateLayout),
		DaysUntil:      until,
		Years:          next.Year() - orig.Year(),
	}, true
}

// NextOccurrence returns the first anniversary of orig on or after today.
// February 29 falls on February 28 in non-leap years.
func NextOccurrence(orig, today time.Time) time.Time {
	candidate := onYear(orig, today.Year())
	if candidate.Before(today) {
		candidate = onYear(orig, today.Year()+1)
	}
	return candidate
}

func onYear(orig time.Time, year int) time.Time {
	day := orig.Day()
	if orig.Month() == time.February && day == 29 && !isLeap(year) {
		day = 28
	}
	return time.Date(year, orig.Month(), day, 0, 0, 0, 0, time.UTC)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
