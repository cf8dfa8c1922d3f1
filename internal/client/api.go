package client

import (
	"context"
	"net/url"
	"strconv"

	"github.com/family-connect/internal/domain"
)

type OTPDispatch struct {
	Phone     string `json:"phone"`
	ExpiresIn int    `json:"expires_in"`
	ResendIn  int    `json:"resend_in"`
}

type VerifyResult struct {
	Ticket    string `json:"ticket"`
	UserID    string `json:"user_id"`
	NeedsName bool   `json:"needs_name"`
	Name      string `json:"name"`
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

type Dashboard struct {
	Menus []domain.Menu          `json:"menus"`
	Ads   []domain.Advertisement `json:"ads"`
}

type Message struct {
	Message string `json:"message"`
}

func (c *Client) Ping(ctx context.Context) error {
	return c.Call(ctx, "ping", nil, nil)
}

func (c *Client) SendOTP(ctx context.Context, phone string) (*OTPDispatch, error) {
	var out OTPDispatch
	if err := c.Call(ctx, "send_otp", url.Values{"phone": {phone}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifyOTP(ctx context.Context, phone, otp string) (*VerifyResult, error) {
	var out VerifyResult
	if err := c.Call(ctx, "verify_otp", url.Values{"phone": {phone}, "otp": {otp}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CompleteRegistration(ctx context.Context, ticket, name string) (*domain.User, error) {
	var out domain.User
	if err := c.Call(ctx, "complete_registration", url.Values{"ticket": {ticket}, "name": {name}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, ticket, deviceUUID, pushToken string) (*LoginResult, error) {
	params := url.Values{"ticket": {ticket}, "device_uuid": {deviceUUID}}
	if pushToken != "" {
		params.Set("push_token", pushToken)
	}
	var out LoginResult
	if err := c.Call(ctx, "login", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var out TokenPair
	if err := c.Call(ctx, "refresh", url.Values{"refresh_token": {refreshToken}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.Call(ctx, "logout", nil, nil)
}

func (c *Client) Dashboard(ctx context.Context) (*Dashboard, error) {
	var out Dashboard
	if err := c.Call(ctx, "dashboard", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Reminders lists birthdays and anniversaries within days. Empty kind means all.
func (c *Client) Reminders(ctx context.Context, kind string, days int) ([]domain.Reminder, error) {
	params := url.Values{"days": {strconv.Itoa(days)}}
	if kind != "" {
		params.Set("kind", kind)
	}
	var out []domain.Reminder
	err := c.Call(ctx, "reminders", params, &out)
	return out, err
}

func (c *Client) Events(ctx context.Context, scope string, limit int) ([]domain.Event, error) {
	params := url.Values{}
	if scope != "" {
		params.Set("scope", scope)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var out []domain.Event
	err := c.Call(ctx, "events", params, &out)
	return out, err
}

func (c *Client) Videos(ctx context.Context, category string, limit int) ([]domain.Video, error) {
	params := url.Values{}
	if category != "" {
		params.Set("category", category)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var out []domain.Video
	err := c.Call(ctx, "videos", params, &out)
	return out, err
}

func (c *Client) Notifications(ctx context.Context, unreadOnly bool) ([]domain.Notification, error) {
	params := url.Values{}
	if unreadOnly {
		params.Set("unread_only", "true")
	}
	var out []domain.Notification
	err := c.Call(ctx, "notifications", params, &out)
	return out, err
}

func (c *Client) ReadNotification(ctx context.Context, id string) (*domain.Notification, error) {
	var out domain.Notification
	if err := c.Call(ctx, "read_notification", url.Values{"id": {id}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Profile(ctx context.Context) (*domain.User, error) {
	var out domain.User
	if err := c.Call(ctx, "profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile sends only the non-nil fields; a pointer to "" clears a field.
func (c *Client) UpdateProfile(ctx context.Context, req domain.UpdateProfileRequest) (*domain.User, error) {
	params := url.Values{}
	for name, v := range map[string]*string{
		"name":        req.Name,
		"email":       req.Email,
		"city":        req.City,
		"birthday":    req.Birthday,
		"anniversary": req.Anniversary,
	} {
		if v != nil {
			params.Set(name, *v)
		}
	}
	var out domain.User
	if err := c.Call(ctx, "update_profile", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
