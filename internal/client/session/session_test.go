package session

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/family-connect/internal/client/storage"
	"github.com/family-connect/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestore_GeneratesDeviceUUIDOnce(t *testing.T) {
	store := storage.NewMemoryStore()
	m := NewManager(store)
	require.NoError(t, m.Restore())

	id := m.DeviceUUID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	again := NewManager(store)
	require.NoError(t, again.Restore())
	assert.Equal(t, id, again.DeviceUUID())
	assert.False(t, again.IsLoggedIn())
	assert.Nil(t, again.User())
}

func TestSignIn_PersistsAndSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	m := NewManager(storage.NewFileStore(path))
	require.NoError(t, m.Restore())
	require.NoError(t, m.SetPending(&Pending{Phone: "+919876543210", Ticket: "tk", NeedsName: true}))
	require.NoError(t, m.SignIn(&domain.User{UserID: "u1", Name: "Asha"}, "jwt", "rt"))
	assert.Nil(t, m.Pending())

	restored := NewManager(storage.NewFileStore(path))
	require.NoError(t, restored.Restore())
	assert.True(t, restored.IsLoggedIn())
	assert.Equal(t, "jwt", restored.Token())
	assert.Equal(t, "rt", restored.RefreshToken())
	assert.Equal(t, "Asha", restored.User().Name)
	assert.Nil(t, restored.Pending())
	assert.Equal(t, m.DeviceUUID(), restored.DeviceUUID())
}

func TestSignOut_KeepsDeviceUUID(t *testing.T) {
	store := storage.NewMemoryStore()
	m := NewManager(store)
	require.NoError(t, m.Restore())
	device := m.DeviceUUID()
	require.NoError(t, m.SignIn(&domain.User{UserID: "u1"}, "jwt", "rt"))

	require.NoError(t, m.SignOut())
	assert.False(t, m.IsLoggedIn())
	assert.Empty(t, m.Token())
	assert.Nil(t, m.User())

	restored := NewManager(store)
	require.NoError(t, restored.Restore())
	assert.Equal(t, device, restored.DeviceUUID())
	assert.False(t, restored.IsLoggedIn())
	assert.Empty(t, restored.RefreshToken())
}

func TestUser_ReturnsCopy(t *testing.T) {
	m := NewManager(storage.NewMemoryStore())
	require.NoError(t, m.SetUser(&domain.User{UserID: "u1", Name: "Asha"}))
	u := m.User()
	u.Name = "changed"
	assert.Equal(t, "Asha", m.User().Name)
}

func TestSetTokens_Concurrent(t *testing.T) {
	m := NewManager(storage.NewMemoryStore())
	require.NoError(t, m.Restore())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.SetTokens("jwt", "rt")
			_ = m.Token()
		}()
	}
	wg.Wait()
	assert.Equal(t, "jwt", m.Token())
}
