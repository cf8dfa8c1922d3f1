package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/family-connect/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockNotificationStore struct{ mock.Mock }

func (m *mockNotificationStore) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly)
	n, _ := args.Get(0).([]domain.Notification)
	return n, args.Error(1)
}
func (m *mockNotificationStore) Get(ctx context.Context, notificationID string) (*domain.Notification, error) {
	args := m.Called(ctx, notificationID)
	if n, _ := args.Get(0).(*domain.Notification); n != nil {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockNotificationStore) MarkAsRead(ctx context.Context, notificationID string) (*domain.Notification, error) {
	args := m.Called(ctx, notificationID)
	if n, _ := args.Get(0).(*domain.Notification); n != nil {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestList_NilBecomesEmpty(t *testing.T) {
	repo := &mockNotificationStore{}
	repo.On("ListByUser", mock.Anything, "u1", true).Return(nil, nil)

	n, err := NewService(repo).List(context.Background(), "u1", true)
	require.NoError(t, err)
	assert.NotNil(t, n)
	assert.Empty(t, n)
}

func TestMarkAsRead_OtherUser_Forbidden(t *testing.T) {
	repo := &mockNotificationStore{}
	repo.On("Get", mock.Anything, "n1").Return(&domain.Notification{NotificationID: "n1", UserID: "u2"}, nil)

	_, err := NewService(repo).MarkAsRead(context.Background(), "n1", "u1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	repo.AssertNotCalled(t, "MarkAsRead", mock.Anything, mock.Anything)
}

func TestMarkAsRead_AlreadyRead_NoWrite(t *testing.T) {
	repo := &mockNotificationStore{}
	repo.On("Get", mock.Anything, "n1").Return(&domain.Notification{NotificationID: "n1", UserID: "u1", Readed: 1}, nil)

	n, err := NewService(repo).MarkAsRead(context.Background(), "n1", "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, n.Readed)
	repo.AssertNotCalled(t, "MarkAsRead", mock.Anything, mock.Anything)
}

func TestMarkAsRead_HappyPath(t *testing.T) {
	repo := &mockNotificationStore{}
	repo.On("Get", mock.Anything, "n1").Return(&domain.Notification{NotificationID: "n1", UserID: "u1"}, nil)
	repo.On("MarkAsRead", mock.Anything, "n1").Return(&domain.Notification{NotificationID: "n1", UserID: "u1", Readed: 1}, nil)

	n, err := NewService(repo).MarkAsRead(context.Background(), "n1", "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, n.Readed)
}
