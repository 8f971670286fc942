package domain

import "time"

// DeviceStatus defines the lifecycle states of a registered device.
type DeviceStatus string

const (
	DeviceActive  DeviceStatus = "active"
	DeviceRevoked DeviceStatus = "revoked"
)

// Device is one client installation belonging to a user. Sync requests
// are rejected when the device is revoked, regardless of token validity.
type Device struct {
	DeviceID     string       `json:"deviceID"` // Primary Key (client-supplied, e.g. UUID)
	UserID       string       `json:"userID"`
	Name         string       `json:"name,omitempty"` // e.g. "Pixel 8"
	SecretHash   string       `json:"-"`              // bcrypt hash of the device secret
	Status       DeviceStatus `json:"status"`
	RegisteredAt time.Time    `json:"registeredAt"`
	LastSeenAt   *time.Time   `json:"lastSeenAt,omitempty"`
}

// IsActive reports whether the device may sync.
func (d Device) IsActive() bool {
	return d.Status == DeviceActive
}
