// Package authflow drives phone sign-in: send an OTP, verify it, collect the
// member's name when the account is new, then log in.
package authflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/family-connect/internal/client"
	"github.com/family-connect/internal/client/session"
	"github.com/family-connect/internal/domain"
)

// ErrOutOfOrder is returned when a step is called before its predecessor finished.
var ErrOutOfOrder = errors.New("authflow: step called out of order")

// Step tells the caller what to ask for next.
type Step int

const (
	StepPhone Step = iota
	StepOTP
	StepName
	StepLogin
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepPhone:
		return "phone"
	case StepOTP:
		return "otp"
	case StepName:
		return "name"
	case StepLogin:
		return "login"
	case StepDone:
		return "done"
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

// API is the part of client.Client the flow calls.
type API interface {
	SendOTP(ctx context.Context, phone string) (*client.OTPDispatch, error)
	VerifyOTP(ctx context.Context, phone, otp string) (*client.VerifyResult, error)
	CompleteRegistration(ctx context.Context, ticket, name string) (*domain.User, error)
	Login(ctx context.Context, ticket, deviceUUID, pushToken string) (*client.LoginResult, error)
}

// Result is delivered by LoginInBackground.
type Result struct {
	User *domain.User
	Err  error
}

type Option func(*Flow)

// WithPushToken registers the device for push notifications at login.
func WithPushToken(token string) Option {
	return func(f *Flow) { f.pushToken = token }
}

// Flow is safe for concurrent use; steps are serialised.
type Flow struct {
	mu        sync.Mutex
	api       API
	sess      *session.Manager
	pushToken string
	phone     string
	step      Step
}

// New starts a flow, resuming a pending registration kept in the session.
func New(api API, sess *session.Manager, opts ...Option) *Flow {
	f := &Flow{api: api, sess: sess, step: StepPhone}
	if p := sess.Pending(); p != nil && p.Ticket != "" {
		f.phone = p.Phone
		f.step = StepLogin
		if p.NeedsName {
			f.step = StepName
		}
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Step reports what the flow expects next.
func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Start sends a code to phone. It may be called again to resend or to switch
// numbers; any pending registration is dropped.
func (f *Flow) Start(ctx context.Context, phone string) (*client.OTPDispatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step == StepDone {
		return nil, ErrOutOfOrder
	}
	phone = strings.TrimSpace(phone)
	d, err := f.api.SendOTP(ctx, phone)
	if err != nil {
		return nil, err
	}
	if err := f.sess.SetPending(nil); err != nil {
		return nil, err
	}
	f.phone = d.Phone
	if f.phone == "" {
		f.phone = phone
	}
	f.step = StepOTP
	return d, nil
}

// Resume marks a code sent to phone by an earlier process as awaited, so
// Verify can run without sending a new one.
func (f *Flow) Resume(phone string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step == StepDone {
		return ErrOutOfOrder
	}
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return fmt.Errorf("authflow: phone is required")
	}
	f.phone = phone
	f.step = StepOTP
	return nil
}

// Continues reports whether the flow holds a verified registration for
// phone, so the caller can skip straight to naming or login. Numbers are
// compared by digits; a missing country code still matches.
func (f *Flow) Continues(phone string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepName && f.step != StepLogin {
		return false
	}
	return sameNumber(f.phone, phone)
}

func sameNumber(a, b string) bool {
	a, b = digits(a), digits(b)
	if len(a) < len(b) {
		a, b = b, a
	}
	return len(b) >= 10 && strings.HasSuffix(a, b)
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Verify checks otp and returns StepName when the account still needs a
// name, StepLogin otherwise. A wrong code leaves the flow at StepOTP.
func (f *Flow) Verify(ctx context.Context, otp string) (Step, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepOTP {
		return f.step, ErrOutOfOrder
	}
	res, err := f.api.VerifyOTP(ctx, f.phone, strings.TrimSpace(otp))
	if err != nil {
		return f.step, err
	}
	pending := &session.Pending{Phone: f.phone, Ticket: res.Ticket, UserID: res.UserID, NeedsName: res.NeedsName}
	if err := f.sess.SetPending(pending); err != nil {
		return f.step, err
	}
	f.step = StepLogin
	if res.NeedsName {
		f.step = StepName
	}
	return f.step, nil
}

// SubmitName completes registration for a new account.
func (f *Flow) SubmitName(ctx context.Context, name string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepName {
		return nil, ErrOutOfOrder
	}
	p := f.sess.Pending()
	if p == nil {
		return nil, ErrOutOfOrder
	}
	u, err := f.api.CompleteRegistration(ctx, p.Ticket, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	p.NeedsName = false
	if err := f.sess.SetPending(p); err != nil {
		return nil, err
	}
	f.step = StepLogin
	return u, nil
}

// Login exchanges the ticket for tokens and signs the session in.
func (f *Flow) Login(ctx context.Context) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepLogin {
		return nil, ErrOutOfOrder
	}
	p := f.sess.Pending()
	if p == nil {
		return nil, ErrOutOfOrder
	}
	res, err := f.api.Login(ctx, p.Ticket, f.sess.DeviceUUID(), f.pushToken)
	if err != nil {
		return nil, err
	}
	if res.User == nil {
		return nil, fmt.Errorf("login response without user")
	}
	if err := f.sess.SignIn(res.User, res.Token, res.RefreshToken); err != nil {
		return nil, err
	}
	f.step = StepDone
	return res.User, nil
}

// LoginInBackground runs Login on its own goroutine. The channel receives
// exactly one Result and is then closed.
func (f *Flow) LoginInBackground(ctx context.Context) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		u, err := f.Login(ctx)
		ch <- Result{User: u, Err: err}
	}()
	return ch
}
