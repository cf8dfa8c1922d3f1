// Package session holds the signed-in state of the client and mirrors it into
// a storage.Store so it survives restarts.
package session

import (
	"fmt"
	"sync"

	"github.com/family-connect/internal/client/storage"
	"github.com/family-connect/internal/domain"
	"github.com/google/uuid"
)

// Storage keys.
const (
	KeyUser         = "user"
	KeyToken        = "token"
	KeyRefreshToken = "refresh_token"
	KeyDeviceUUID   = "device_uuid"
	KeyLoggedIn     = "is_logged_in"
	KeyPending      = "pending_registration"
)

// Pending is a sign-in that passed OTP verification but has not logged in yet.
type Pending struct {
	Phone     string `json:"phone"`
	Ticket    string `json:"ticket"`
	UserID    string `json:"user_id"`
	NeedsName bool   `json:"needs_name"`
}

// Manager is safe for concurrent use.
type Manager struct {
	mu    sync.RWMutex
	store storage.Store

	user       *domain.User
	token      string
	refresh    string
	deviceUUID string
	loggedIn   bool
	pending    *Pending
}

func NewManager(store storage.Store) *Manager {
	return &Manager{store: store}
}

// Restore loads the persisted state. A device uuid is generated and saved the
// first time.
func (m *Manager) Restore() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user, m.token, m.refresh, m.deviceUUID, m.loggedIn, m.pending = nil, "", "", "", false, nil

	var user domain.User
	found, err := m.store.Get(KeyUser, &user)
	if err != nil {
		return err
	}
	if found {
		m.user = &user
	}
	if _, err := m.store.Get(KeyToken, &m.token); err != nil {
		return err
	}
	if _, err := m.store.Get(KeyRefreshToken, &m.refresh); err != nil {
		return err
	}
	if _, err := m.store.Get(KeyLoggedIn, &m.loggedIn); err != nil {
		return err
	}
	var p Pending
	found, err = m.store.Get(KeyPending, &p)
	if err != nil {
		return err
	}
	if found {
		m.pending = &p
	}

	if _, err := m.store.Get(KeyDeviceUUID, &m.deviceUUID); err != nil {
		return err
	}
	if m.deviceUUID == "" {
		m.deviceUUID = uuid.NewString()
		if err := m.store.Set(KeyDeviceUUID, m.deviceUUID); err != nil {
			return fmt.Errorf("save device uuid: %w", err)
		}
	}
	return nil
}

func (m *Manager) DeviceUUID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.deviceUUID
}

func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Manager) RefreshToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refresh
}

func (m *Manager) IsLoggedIn() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loggedIn
}

// User returns a copy of the signed-in user, or nil.
func (m *Manager) User() *domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// Pending returns a copy of the pending registration, or nil.
func (m *Manager) Pending() *Pending {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.pending == nil {
		return nil
	}
	p := *m.pending
	return &p
}

func (m *Manager) SetTokens(token, refreshToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Set(KeyToken, token); err != nil {
		return err
	}
	if err := m.store.Set(KeyRefreshToken, refreshToken); err != nil {
		return err
	}
	m.token, m.refresh = token, refreshToken
	return nil
}

func (m *Manager) SetUser(u *domain.User) error {
	if u == nil {
		return fmt.Errorf("nil user")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Set(KeyUser, u); err != nil {
		return err
	}
	cp := *u
	m.user = &cp
	return nil
}

// SetPending records or, with nil, clears the pending registration.
func (m *Manager) SetPending(p *Pending) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p == nil {
		if err := m.store.Remove(KeyPending); err != nil {
			return err
		}
		m.pending = nil
		return nil
	}
	if err := m.store.Set(KeyPending, p); err != nil {
		return err
	}
	cp := *p
	m.pending = &cp
	return nil
}

// SignIn stores the full signed-in state and drops any pending registration.
func (m *Manager) SignIn(u *domain.User, token, refreshToken string) error {
	if u == nil {
		return fmt.Errorf("nil user")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, v := range map[string]interface{}{
		KeyUser:         u,
		KeyToken:        token,
		KeyRefreshToken: refreshToken,
		KeyLoggedIn:     true,
	} {
		if err := m.store.Set(key, v); err != nil {
			return err
		}
	}
	if err := m.store.Remove(KeyPending); err != nil {
		return err
	}
	cp := *u
	m.user, m.token, m.refresh, m.loggedIn, m.pending = &cp, token, refreshToken, true, nil
	return nil
}

// SignOut wipes all state except the device uuid.
func (m *Manager) SignOut() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Clear(); err != nil {
		return err
	}
	if m.deviceUUID != "" {
		if err := m.store.Set(KeyDeviceUUID, m.deviceUUID); err != nil {
			return err
		}
	}
	m.user, m.token, m.refresh, m.loggedIn, m.pending = nil, "", "", false, nil
	return nil
}
