package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/family-connect/internal/application/auth"
	"github.com/family-connect/internal/application/dashboard"
	"github.com/family-connect/internal/domain"
	jwtinfra "github.com/family-connect/internal/infrastructure/jwt"
	"github.com/family-connect/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockAuthSvc struct{ mock.Mock }

func (m *mockAuthSvc) SendOTP(ctx context.Context, rawPhone string) (*auth.OTPDispatch, error) {
	args := m.Called(ctx, rawPhone)
	if d, _ := args.Get(0).(*auth.OTPDispatch); d != nil {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthSvc) VerifyOTP(ctx context.Context, req auth.VerifyOTPRequest) (*auth.VerifyResult, error) {
	args := m.Called(ctx, req)
	if v, _ := args.Get(0).(*auth.VerifyResult); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthSvc) CompleteRegistration(ctx context.Context, ticket, name string) (*domain.User, error) {
	args := m.Called(ctx, ticket, name)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthSvc) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResult, error) {
	args := m.Called(ctx, req)
	if l, _ := args.Get(0).(*auth.LoginResult); l != nil {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthSvc) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if p, _ := args.Get(0).(*auth.TokenPair); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthSvc) Logout(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

type mockProfileSvc struct{ mock.Mock }

func (m *mockProfileSvc) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProfileSvc) Update(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error) {
	args := m.Called(ctx, userID, req)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type stubDashboard struct{}

func (stubDashboard) Load(context.Context) (*dashboard.Dashboard, error) {
	return &dashboard.Dashboard{
		Menus: []domain.Menu{{MenuID: "m1", Title: "Events"}},
		Ads:   []domain.Advertisement{},
	}, nil
}

type stubReminders struct {
	gotKind string
	gotDays int
}

func (s *stubReminders) Upcoming(_ context.Context, kind string, days int) ([]domain.Reminder, error) {
	s.gotKind, s.gotDays = kind, days
	return []domain.Reminder{}, nil
}

type listCall struct {
	called bool
	filter string
	limit  int
}

type stubEvents struct{ listCall }

func (s *stubEvents) List(_ context.Context, scope string, limit int) ([]domain.Event, error) {
	s.listCall = listCall{called: true, filter: scope, limit: limit}
	return []domain.Event{{EventID: "e1", Title: "Diwali"}}, nil
}

type stubVideos struct{ listCall }

func (s *stubVideos) List(_ context.Context, category string, limit int) ([]domain.Video, error) {
	s.listCall = listCall{called: true, filter: category, limit: limit}
	return []domain.Video{}, nil
}

type stubNotifications struct{}

func (stubNotifications) List(context.Context, string, bool) ([]domain.Notification, error) {
	return []domain.Notification{}, nil
}

func (stubNotifications) MarkAsRead(_ context.Context, id, userID string) (*domain.Notification, error) {
	if userID != "u1" {
		return nil, fmt.Errorf("forbidden: %w", domain.ErrForbidden)
	}
	return &domain.Notification{NotificationID: id, UserID: userID, Readed: 1}, nil
}

type denyAll struct{}

func (denyAll) Allow(*http.Request) bool { return false }

// --- helpers ---

func authed(r *http.Request) *http.Request {
	claims := &jwtinfra.Claims{UserID: "u1", SessionID: "sess1", Role: domain.RoleUser}
	return r.WithContext(middleware.WithClaims(r.Context(), claims))
}

func do(t *testing.T, h http.Handler, r *http.Request) (int, map[string]json.RawMessage) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var body map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	return rr.Code, body
}

func errorOf(t *testing.T, body map[string]json.RawMessage) string {
	t.Helper()
	var msg string
	require.NoError(t, json.Unmarshal(body["ERROR"], &msg))
	return msg
}

// --- tests ---

func TestDispatch_MissingAndUnknownType(t *testing.T) {
	h := NewAPIHandler(Services{}, nil)

	code, body := do(t, h, httptest.NewRequest(http.MethodGet, "/v1/api", nil))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "type is required", errorOf(t, body))
	assert.JSONEq(t, `[]`, string(body["DATA"]))

	code, _ = do(t, h, httptest.NewRequest(http.MethodGet, "/v1/api?type=nope", nil))
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestDispatch_Ping(t *testing.T) {
	h := NewAPIHandler(Services{}, nil)
	code, body := do(t, h, httptest.NewRequest(http.MethodGet, "/v1/api?type=ping", nil))
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[{"message":"pong"}]`, string(body["DATA"]))
	_, hasError := body["ERROR"]
	assert.False(t, hasError)
}

func TestDispatch_AuthRequired(t *testing.T) {
	h := NewAPIHandler(Services{Dashboard: stubDashboard{}}, nil)
	code, _ := do(t, h, httptest.NewRequest(http.MethodGet, "/v1/api?type=dashboard", nil))
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body := do(t, h, authed(httptest.NewRequest(http.MethodGet, "/v1/api?type=dashboard", nil)))
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[{"menus":[{"id":"m1","title":"Events","icon":"","target":"","position":0,"enable":false}],"ads":[]}]`, string(body["DATA"]))
}

func TestDispatch_SendOTP_RateLimited(t *testing.T) {
	svc := &mockAuthSvc{}
	h := NewAPIHandler(Services{Auth: svc}, denyAll{})
	code, _ := do(t, h, httptest.NewRequest(http.MethodGet, "/v1/api?type=send_otp&phone=9876543210", nil))
	assert.Equal(t, http.StatusTooManyRequests, code)
	svc.AssertNotCalled(t, "SendOTP", mock.Anything, mock.Anything)
}

func TestDispatch_SendOTP_MissingPhone(t *testing.T) {
	h := NewAPIHandler(Services{Auth: &mockAuthSvc{}}, nil)
	code, body := do(t, h, httptest.NewRequest(http.MethodGet, "/v1/api?type=send_otp", nil))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, errorOf(t, body), "phone is required")
}

func TestDispatch_SendOTP_CooldownMapsTo429(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("SendOTP", mock.Anything, "9876543210").Return(nil, fmt.Errorf("code already sent, retry in 20s: %w", domain.ErrTooManyRequests))
	h := NewAPIHandler(Services{Auth: svc}, nil)
	code, body := do(t, h, httptest.NewRequest(http.MethodGet, "/v1/api?type=send_otp&phone=9876543210", nil))
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Contains(t, errorOf(t, body), "retry in 20s")
}

func TestDispatch_VerifyOTP(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("VerifyOTP", mock.Anything, auth.VerifyOTPRequest{Phone: "+919876543210", OTP: "123456"}).
		Return(&auth.VerifyResult{Ticket: "tk", UserID: "u1", NeedsName: true}, nil)
	h := NewAPIHandler(Services{Auth: svc}, nil)

	code, body := do(t, h, httptest.NewRequest(http.MethodGet, "/v1/api?type=verify_otp&phone=%2B919876543210&otp=123456", nil))
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[{"ticket":"tk","user_id":"u1","needs_name":true,"name":""}]`, string(body["DATA"]))
	svc.AssertExpectations(t)
}

func TestDispatch_Login(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Login", mock.Anything, auth.LoginRequest{Ticket: "tk", DeviceUUID: "dev-uuid", PushToken: ""}).
		Return(&auth.LoginResult{Token: "jwt", RefreshToken: "rt", User: &domain.User{UserID: "u1"}}, nil)
	h := NewAPIHandler(Services{Auth: svc}, nil)

	code, body := do(t, h, httptest.NewRequest(http.MethodGet, "/v1/api?type=login&ticket=tk&device_uuid=dev-uuid", nil))
	assert.Equal(t, http.StatusOK, code)
	var data []auth.LoginResult
	require.NoError(t, json.Unmarshal(body["DATA"], &data))
	require.Len(t, data, 1)
	assert.Equal(t, "jwt", data[0].Token)
	assert.Equal(t, "u1", data[0].User.UserID)
}

func TestDispatch_Logout_UsesSessionFromClaims(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Logout", mock.Anything, "sess1").Return(nil)
	h := NewAPIHandler(Services{Auth: svc}, nil)

	code, _ := do(t, h, authed(httptest.NewRequest(http.MethodGet, "/v1/api?type=logout", nil)))
	assert.Equal(t, http.StatusOK, code)
	svc.AssertExpectations(t)
}

func TestDispatch_Reminders_Params(t *testing.T) {
	rem := &stubReminders{}
	h := NewAPIHandler(Services{Reminder: rem}, nil)

	code, body := do(t, h, authed(httptest.NewRequest(http.MethodGet, "/v1/api?type=reminders&kind=birthday", nil)))
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(body["DATA"]))
	assert.Equal(t, "birthday", rem.gotKind)
	assert.Equal(t, 7, rem.gotDays)

	code, _ = do(t, h, authed(httptest.NewRequest(http.MethodGet, "/v1/api?type=reminders&days=soon", nil)))
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestDispatch_Events_Params(t *testing.T) {
	ev := &stubEvents{}
	h := NewAPIHandler(Services{Event: ev}, nil)

	code, body := do(t, h, authed(httptest.NewRequest(http.MethodGet, "/v1/api?type=events&scope=past&limit=5", nil)))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, listCall{called: true, filter: "past", limit: 5}, ev.listCall)
	var events []domain.Event
	require.NoError(t, json.Unmarshal(body["DATA"], &events))
	require.Len(t, events, 1)
	assert.Equal(t, "e1", events[0].EventID)

	_, _ = do(t, h, authed(httptest.NewRequest(http.MethodGet, "/v1/api?type=events", nil)))
	assert.Equal(t, listCall{called: true}, ev.listCall)
}

func TestDispatch_Events_NonNumericLimit(t *testing.T) {
	ev := &stubEvents{}
	h := NewAPIHandler(Services{Event: ev}, nil)

	code, body := do(t, h, authed(httptest.NewRequest(http.MethodGet, "/v1/api?type=events&limit=ten", nil)))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, errorOf(t, body), "limit must be a number")
	assert.False(t, ev.called)
}

func TestDispatch_Videos_Params(t *testing.T) {
	vid := &stubVideos{}
	h := NewAPIHandler(Services{Video: vid}, nil)

	code, body := do(t, h, authed(httptest.NewRequest(http.MethodGet, "/v1/api?type=videos&category=Bhajan&limit=3", nil)))
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(body["DATA"]))
	assert.Equal(t, listCall{called: true, filter: "Bhajan", limit: 3}, vid.listCall)

	vid.listCall = listCall{}
	code, _ = do(t, h, authed(httptest.NewRequest(http.MethodGet, "/v1/api?type=videos&limit=1.5", nil)))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, vid.called)
}

func TestDispatch_ReadNotification(t *testing.T) {
	h := NewAPIHandler(Services{Notification: stubNotifications{}}, nil)

	code, _ := do(t, h, authed(httptest.NewRequest(http.MethodGet, "/v1/api?type=read_notification", nil)))
	assert.Equal(t, http.StatusBadRequest, code)

	code, body := do(t, h, authed(httptest.NewRequest(http.MethodGet, "/v1/api?type=read_notification&id=n1", nil)))
	assert.Equal(t, http.StatusOK, code)
	var data []domain.Notification
	require.NoError(t, json.Unmarshal(body["DATA"], &data))
	require.Len(t, data, 1)
	assert.Equal(t, 1, data[0].Readed)

	code, _ = do(t, h, authed(httptest.NewRequest(http.MethodGet, "/v1/api?type=notifications&unread_only=maybe", nil)))
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestDispatch_UpdateProfile_OnlyPresentFields(t *testing.T) {
	svc := &mockProfileSvc{}
	city := ""
	name := "asha rao"
	svc.On("Update", mock.Anything, "u1", domain.UpdateProfileRequest{Name: &name, City: &city}).
		Return(&domain.User{UserID: "u1", Name: "Asha Rao"}, nil)
	h := NewAPIHandler(Services{Profile: svc}, nil)

	code, _ := do(t, h, authed(httptest.NewRequest(http.MethodGet, "/v1/api?type=update_profile&name=asha+rao&city=", nil)))
	assert.Equal(t, http.StatusOK, code)
	svc.AssertExpectations(t)
}

func TestDispatch_UnknownErrorIsHidden(t *testing.T) {
	svc := &mockProfileSvc{}
	svc.On("Get", mock.Anything, "u1").Return(nil, errors.New("dynamo: connection reset"))
	h := NewAPIHandler(Services{Profile: svc}, nil)

	code, body := do(t, h, authed(httptest.NewRequest(http.MethodGet, "/v1/api?type=profile", nil)))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "internal server error", errorOf(t, body))
}

func TestHTTPError_Mapping(t *testing.T) {
	cases := map[error]int{
		domain.ErrBadRequest:      http.StatusBadRequest,
		domain.ErrUnauthorized:    http.StatusUnauthorized,
		domain.ErrForbidden:       http.StatusForbidden,
		domain.ErrNotFound:        http.StatusNotFound,
		domain.ErrConflict:        http.StatusConflict,
		domain.ErrTooManyRequests: http.StatusTooManyRequests,
	}
	for sentinel, want := range cases {
		rr := httptest.NewRecorder()
		httpError(rr, fmt.Errorf("wrapped: %w", sentinel))
		assert.Equal(t, want, rr.Code, sentinel.Error())
	}
}
