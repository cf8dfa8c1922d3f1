package handler

import (
	"net/http"

	"github.com/family-connect/internal/domain"
	jwtinfra "github.com/family-connect/internal/infrastructure/jwt"
)

func (h *APIHandler) profile(r *http.Request, claims *jwtinfra.Claims) (interface{}, error) {
	u, err := h.svc.Profile.Get(r.Context(), claims.UserID)
	if err != nil {
		return nil, err
	}
	return one(u), nil
}

func (h *APIHandler) updateProfile(r *http.Request, claims *jwtinfra.Claims) (interface{}, error) {
	u, err := h.svc.Profile.Update(r.Context(), claims.UserID, domain.UpdateProfileRequest{
		Name:        optional(r, "name"),
		Email:       optional(r, "email"),
		City:        optional(r, "city"),
		Birthday:    optional(r, "birthday"),
		Anniversary: optional(r, "anniversary"),
	})
	if err != nil {
		return nil, err
	}
	return one(u), nil
}
