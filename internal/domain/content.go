package domain

import "time"

type Event struct {
	EventID     string    `json:"id" dynamodbav:"event_id"`
	Title       string    `json:"title" dynamodbav:"title"`
	Description string    `json:"description" dynamodbav:"description"`
	Venue       string    `json:"venue" dynamodbav:"venue"`
	StartsAt    time.Time `json:"starts_at" dynamodbav:"starts_at"`
	EndsAt      time.Time `json:"ends_at" dynamodbav:"ends_at"`
	ImageKey    string    `json:"-" dynamodbav:"image_key"`
	ImageURL    string    `json:"image_url,omitempty" dynamodbav:"-"`
	Enable      bool      `json:"enable" dynamodbav:"enable"`
}

type Video struct {
	VideoID      string    `json:"id" dynamodbav:"video_id"`
	Title        string    `json:"title" dynamodbav:"title"`
	Description  string    `json:"description" dynamodbav:"description"`
	Category     string    `json:"category" dynamodbav:"category"`
	VideoKey     string    `json:"-" dynamodbav:"video_key"`
	URL          string    `json:"url" dynamodbav:"url"`
	ThumbnailKey string    `json:"-" dynamodbav:"thumbnail_key"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty" dynamodbav:"-"`
	PublishedAt  time.Time `json:"published_at" dynamodbav:"published_at"`
	Enable       bool      `json:"enable" dynamodbav:"enable"`
}

type Advertisement struct {
	AdID     string    `json:"id" dynamodbav:"ad_id"`
	Title    string    `json:"title" dynamodbav:"title"`
	ImageKey string    `json:"-" dynamodbav:"image_key"`
	ImageURL string    `json:"image_url,omitempty" dynamodbav:"-"`
	LinkURL  string    `json:"link_url" dynamodbav:"link_url"`
	Position int       `json:"position" dynamodbav:"position"`
	StartsAt time.Time `json:"starts_at" dynamodbav:"starts_at"`
	EndsAt   time.Time `json:"ends_at" dynamodbav:"ends_at"`
	Enable   bool      `json:"enable" dynamodbav:"enable"`
}

// Active reports whether the ad should be shown at now. Zero bounds are open.
func (a Advertisement) Active(now time.Time) bool {
	if !a.Enable {
		return false
	}
	if !a.StartsAt.IsZero() && now.Before(a.StartsAt) {
		return false
	}
	if !a.EndsAt.IsZero() && !now.Before(a.EndsAt) {
		return false
	}
	return true
}

type Menu struct {
	MenuID   string `json:"id" dynamodbav:"menu_id"`
	Title    string `json:"title" dynamodbav:"title"`
	Icon     string `json:"icon" dynamodbav:"icon"`
	Target   string `json:"target" dynamodbav:"target"`
	Position int    `json:"position" dynamodbav:"position"`
	Enable   bool   `json:"enable" dynamodbav:"enable"`
}
