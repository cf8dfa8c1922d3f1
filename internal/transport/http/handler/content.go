package handler

import (
	"net/http"

	"github.com/family-connect/internal/application/reminder"
	jwtinfra "github.com/family-connect/internal/infrastructure/jwt"
)

func (h *APIHandler) dashboard(r *http.Request, _ *jwtinfra.Claims) (interface{}, error) {
	d, err := h.svc.Dashboard.Load(r.Context())
	if err != nil {
		return nil, err
	}
	return one(d), nil
}

func (h *APIHandler) reminders(r *http.Request, _ *jwtinfra.Claims) (interface{}, error) {
	days, err := intParam(r, "days", reminder.DefaultWindowDays)
	if err != nil {
		return nil, err
	}
	return h.svc.Reminder.Upcoming(r.Context(), r.URL.Query().Get("kind"), days)
}

func (h *APIHandler) events(r *http.Request, _ *jwtinfra.Claims) (interface{}, error) {
	limit, err := intParam(r, "limit", 0)
	if err != nil {
		return nil, err
	}
	return h.svc.Event.List(r.Context(), r.URL.Query().Get("scope"), limit)
}

func (h *APIHandler) videos(r *http.Request, _ *jwtinfra.Claims) (interface{}, error) {
	limit, err := intParam(r, "limit", 0)
	if err != nil {
		return nil, err
	}
	return h.svc.Video.List(r.Context(), r.URL.Query().Get("category"), limit)
}
