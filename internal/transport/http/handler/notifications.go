package handler

import (
	"net/http"

	jwtinfra "github.com/family-connect/internal/infrastructure/jwt"
)

func (h *APIHandler) notifications(r *http.Request, claims *jwtinfra.Claims) (interface{}, error) {
	unreadOnly, err := boolParam(r, "unread_only")
	if err != nil {
		return nil, err
	}
	return h.svc.Notification.List(r.Context(), claims.UserID, unreadOnly)
}

func (h *APIHandler) readNotification(r *http.Request, claims *jwtinfra.Claims) (interface{}, error) {
	id, err := required(r, "id")
	if err != nil {
		return nil, err
	}
	n, err := h.svc.Notification.MarkAsRead(r.Context(), id, claims.UserID)
	if err != nil {
		return nil, err
	}
	return one(n), nil
}
