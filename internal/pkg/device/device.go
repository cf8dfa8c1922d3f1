package device

import (
	"context"
	"errors"
	"time"

	"github.com/family-connect/internal/domain"
	"github.com/family-connect/internal/pkg/id"
)

// Store is the subset of the device repository Resolve needs.
type Store interface {
	GetByUUID(ctx context.Context, uuid string) (*domain.Device, error)
	Put(ctx context.Context, d *domain.Device) error
	Update(ctx context.Context, deviceID string, updates map[string]interface{}) error
}

// Resolve returns the existing Device for deviceUUID when found, otherwise
// creates a new one associated with userID and persists it. A device that
// changes hands is re-bound to userID, and a non-empty pushToken replaces
// the stored one.
func Resolve(ctx context.Context, repo Store, deviceUUID, pushToken, userID string) (*domain.Device, error) {
	if deviceUUID != "" {
		d, err := repo.GetByUUID(ctx, deviceUUID)
		if err == nil {
			updates := map[string]interface{}{}
			if d.UserID != userID {
				updates["user_id"] = userID
				d.UserID = userID
			}
			if pushToken != "" && (d.PushToken == nil || *d.PushToken != pushToken) {
				updates["push_token"] = pushToken
				d.PushToken = &pushToken
			}
			if !d.Enable {
				updates["enable"] = true
				d.Enable = true
			}
			if len(updates) > 0 {
				if err := repo.Update(ctx, d.DeviceID, updates); err != nil {
					return nil, err
				}
			}
			return d, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	devUUID := id.New()
	if deviceUUID != "" {
		devUUID = deviceUUID
	}
	now := time.Now().UTC()
	d := &domain.Device{
		DeviceID:  id.New(),
		UUID:      devUUID,
		UserID:    userID,
		Enable:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pushToken != "" {
		d.PushToken = &pushToken
	}
	if err := repo.Put(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}
