package repositories

import (
	"context"
	"time"

	"github.com/alaalsalam/hisabi-backend/internal/core/domain"
)

// DeviceRepository manages registered devices and their status.
type DeviceRepository interface {
	// FindDeviceByID retrieves a device by its ID.
	FindDeviceByID(ctx context.Context, deviceID string) (*domain.Device, error)

	// SaveDevice persists a newly registered device.
	SaveDevice(ctx context.Context, device domain.Device) error

	// UpdateDeviceStatus transitions a device between active and revoked.
	UpdateDeviceStatus(ctx context.Context, deviceID string, status domain.DeviceStatus) error

	// TouchDevice records when a device was last seen syncing.
	TouchDevice(ctx context.Context, deviceID string, seenAt time.Time) error
}
