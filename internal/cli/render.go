package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/family-connect/internal/client"
	"github.com/family-connect/internal/domain"
)

var (
	primary = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#C45A3C", Dark: "#DA7756"})
	border  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#4B5563"})
	success = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#059669", Dark: "#10B981"})
	muted   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"})
)

func cardStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border.GetForeground()).
		Padding(0, 2)
}

func card(title string, lines ...string) string {
	var b strings.Builder
	b.WriteString(primary.Bold(true).Render(title))
	if len(lines) > 0 {
		b.WriteString("\n\n")
		b.WriteString(strings.Join(lines, "\n"))
	}
	return cardStyle().Render(b.String())
}

func successCard(title string, lines ...string) string {
	return card(success.Render("✓")+" "+title, lines...)
}

func field(label, value string) string {
	if value == "" {
		value = muted.Render("-")
	}
	return muted.Render(label+":") + " " + value
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderUser(u *domain.User) string {
	return card(u.Name,
		field("Phone", u.Phone),
		field("Email", u.Email),
		field("City", u.City),
		field("Birthday", u.Birthday),
		field("Anniversary", u.Anniversary),
	)
}

func renderDashboard(d *client.Dashboard) string {
	menu := make([]string, 0, len(d.Menus))
	for _, m := range d.Menus {
		menu = append(menu, fmt.Sprintf("%s %s", primary.Render("◆"), m.Title))
	}
	if len(menu) == 0 {
		menu = append(menu, muted.Render("no menus"))
	}
	out := card("Menu", menu...)
	if len(d.Ads) > 0 {
		ads := make([]string, 0, len(d.Ads))
		for _, a := range d.Ads {
			ads = append(ads, field(a.Title, a.LinkURL))
		}
		out += "\n" + card("Sponsored", ads...)
	}
	return out
}

func renderReminders(rs []domain.Reminder) string {
	if len(rs) == 0 {
		return muted.Render("No upcoming birthdays or anniversaries.")
	}
	lines := make([]string, 0, len(rs))
	for _, r := range rs {
		when := "today"
		switch {
		case r.DaysUntil == 1:
			when = "tomorrow"
		case r.DaysUntil > 1:
			when = fmt.Sprintf("in %d days", r.DaysUntil)
		}
		lines = append(lines, fmt.Sprintf("%s  %s %s (%d) %s",
			r.NextOccurrence, r.Name, r.Kind, r.Years, muted.Render(when)))
	}
	return card("Reminders", lines...)
}

func renderEvents(es []domain.Event) string {
	if len(es) == 0 {
		return muted.Render("No events.")
	}
	lines := make([]string, 0, len(es))
	for _, e := range es {
		line := fmt.Sprintf("%s  %s", e.StartsAt.Format("2006-01-02 15:04"), e.Title)
		if e.Venue != "" {
			line += " " + muted.Render("@ "+e.Venue)
		}
		lines = append(lines, line)
	}
	return card("Events", lines...)
}

func renderVideos(vs []domain.Video) string {
	if len(vs) == 0 {
		return muted.Render("No videos.")
	}
	lines := make([]string, 0, len(vs))
	for _, v := range vs {
		lines = append(lines, fmt.Sprintf("%s %s\n  %s", v.Title, muted.Render("["+v.Category+"]"), v.URL))
	}
	return card("Videos", lines...)
}

func renderNotifications(ns []domain.Notification) string {
	if len(ns) == 0 {
		return muted.Render("No notifications.")
	}
	lines := make([]string, 0, len(ns))
	for _, n := range ns {
		mark := muted.Render("○")
		if n.Readed == 0 {
			mark = primary.Render("●")
		}
		lines = append(lines, fmt.Sprintf("%s %s %s\n  %s", mark, n.Title, muted.Render(n.NotificationID), n.Message))
	}
	return card("Notifications", lines...)
}
