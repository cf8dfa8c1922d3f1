package handler

import (
	"net/http"

	"github.com/family-connect/internal/application/auth"
	jwtinfra "github.com/family-connect/internal/infrastructure/jwt"
)

func (h *APIHandler) sendOTP(r *http.Request, _ *jwtinfra.Claims) (interface{}, error) {
	phone, err := required(r, "phone")
	if err != nil {
		return nil, err
	}
	d, err := h.svc.Auth.SendOTP(r.Context(), phone)
	if err != nil {
		return nil, err
	}
	return one(d), nil
}

func (h *APIHandler) verifyOTP(r *http.Request, _ *jwtinfra.Claims) (interface{}, error) {
	phone, err := required(r, "phone")
	if err != nil {
		return nil, err
	}
	otp, err := required(r, "otp")
	if err != nil {
		return nil, err
	}
	res, err := h.svc.Auth.VerifyOTP(r.Context(), auth.VerifyOTPRequest{Phone: phone, OTP: otp})
	if err != nil {
		return nil, err
	}
	return one(res), nil
}

func (h *APIHandler) completeRegistration(r *http.Request, _ *jwtinfra.Claims) (interface{}, error) {
	ticket, err := required(r, "ticket")
	if err != nil {
		return nil, err
	}
	name, err := required(r, "name")
	if err != nil {
		return nil, err
	}
	u, err := h.svc.Auth.CompleteRegistration(r.Context(), ticket, name)
	if err != nil {
		return nil, err
	}
	return one(u), nil
}

func (h *APIHandler) login(r *http.Request, _ *jwtinfra.Claims) (interface{}, error) {
	q := r.URL.Query()
	res, err := h.svc.Auth.Login(r.Context(), auth.LoginRequest{
		Ticket:     q.Get("ticket"),
		DeviceUUID: q.Get("device_uuid"),
		PushToken:  q.Get("push_token"),
	})
	if err != nil {
		return nil, err
	}
	return one(res), nil
}

func (h *APIHandler) refresh(r *http.Request, _ *jwtinfra.Claims) (interface{}, error) {
	rt, err := required(r, "refresh_token")
	if err != nil {
		return nil, err
	}
	pair, err := h.svc.Auth.Refresh(r.Context(), rt)
	if err != nil {
		return nil, err
	}
	return one(pair), nil
}

func (h *APIHandler) logout(r *http.Request, claims *jwtinfra.Claims) (interface{}, error) {
	if err := h.svc.Auth.Logout(r.Context(), claims.SessionID); err != nil {
		return nil, err
	}
	return one(MessageResponse{Message: "logged out"}), nil
}
