package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/family-connect/internal/application/auth"
	"github.com/family-connect/internal/application/dashboard"
	"github.com/family-connect/internal/application/event"
	"github.com/family-connect/internal/application/notification"
	"github.com/family-connect/internal/application/profile"
	"github.com/family-connect/internal/application/reminder"
	"github.com/family-connect/internal/application/video"
	"github.com/family-connect/internal/domain"
	jwtinfra "github.com/family-connect/internal/infrastructure/jwt"
	"github.com/family-connect/internal/transport/http/middleware"
)

// Request types understood by the API endpoint.
const (
	TypePing                 = "ping"
	TypeSendOTP              = "send_otp"
	TypeVerifyOTP            = "verify_otp"
	TypeCompleteRegistration = "complete_registration"
	TypeLogin                = "login"
	TypeRefresh              = "refresh"
	TypeLogout               = "logout"
	TypeDashboard            = "dashboard"
	TypeReminders            = "reminders"
	TypeEvents               = "events"
	TypeVideos               = "videos"
	TypeNotifications        = "notifications"
	TypeReadNotification     = "read_notification"
	TypeProfile              = "profile"
	TypeUpdateProfile        = "update_profile"
)

// Services bundles the application services the endpoint dispatches to.
type Services struct {
	Auth         auth.Service
	Dashboard    dashboard.Service
	Reminder     reminder.Service
	Event        event.Service
	Video        video.Service
	Notification notification.Service
	Profile      profile.Service
}

type limiter interface {
	Allow(r *http.Request) bool
}

// action handles one request type. claims is nil for public types.
type action func(r *http.Request, claims *jwtinfra.Claims) (interface{}, error)

type route struct {
	auth    bool
	limited bool
	run     action
}

// APIHandler serves GET /v1/api, multiplexing on the type query parameter.
type APIHandler struct {
	svc       Services
	sensitive limiter
	routes    map[string]route
}

// NewAPIHandler wires every request type. sensitive throttles the OTP types;
// nil disables that extra limit.
func NewAPIHandler(svc Services, sensitive limiter) *APIHandler {
	h := &APIHandler{svc: svc, sensitive: sensitive}
	h.routes = map[string]route{
		TypePing:                 {run: h.ping},
		TypeSendOTP:              {limited: true, run: h.sendOTP},
		TypeVerifyOTP:            {limited: true, run: h.verifyOTP},
		TypeCompleteRegistration: {run: h.completeRegistration},
		TypeLogin:                {run: h.login},
		TypeRefresh:              {run: h.refresh},
		TypeLogout:               {auth: true, run: h.logout},
		TypeDashboard:            {auth: true, run: h.dashboard},
		TypeReminders:            {auth: true, run: h.reminders},
		TypeEvents:               {auth: true, run: h.events},
		TypeVideos:               {auth: true, run: h.videos},
		TypeNotifications:        {auth: true, run: h.notifications},
		TypeReadNotification:     {auth: true, run: h.readNotification},
		TypeProfile:              {auth: true, run: h.profile},
		TypeUpdateProfile:        {auth: true, run: h.updateProfile},
	}
	return h
}

func (h *APIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	typ := strings.TrimSpace(r.URL.Query().Get("type"))
	if typ == "" {
		writeError(w, http.StatusBadRequest, "type is required")
		return
	}
	rt, ok := h.routes[typ]
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown type %q", typ))
		return
	}
	if rt.limited && h.sensitive != nil && !h.sensitive.Allow(r) {
		writeError(w, http.StatusTooManyRequests, "too many requests")
		return
	}
	var claims *jwtinfra.Claims
	if rt.auth {
		c, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		claims = c
	}
	data, err := rt.run(r, claims)
	if err != nil {
		httpError(w, err)
		return
	}
	writeData(w, data)
}

func (h *APIHandler) ping(_ *http.Request, _ *jwtinfra.Claims) (interface{}, error) {
	return one(MessageResponse{Message: "pong"}), nil
}

// required returns the trimmed query value or a bad-request error naming it.
func required(r *http.Request, name string) (string, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return "", fmt.Errorf("%s is required: %w", name, domain.ErrBadRequest)
	}
	return v, nil
}

// optional returns a pointer to the value when the parameter is present at all,
// so an explicit empty value can clear a field.
func optional(r *http.Request, name string) *string {
	q := r.URL.Query()
	if _, ok := q[name]; !ok {
		return nil
	}
	v := q.Get(name)
	return &v
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", name, domain.ErrBadRequest)
	}
	return n, nil
}

func boolParam(r *http.Request, name string) (bool, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be true or false: %w", name, domain.ErrBadRequest)
	}
	return b, nil
}
