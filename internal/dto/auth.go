package dto

// RegisterDeviceRequest registers a device for a user with a secret the
// device generates and stores locally. Only the bcrypt hash is persisted.
type RegisterDeviceRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	DeviceID string `json:"device_id" binding:"required"`
	Name     string `json:"name,omitempty"`
	Secret   string `json:"secret" binding:"required,min=16"`
}

// DeviceLoginRequest exchanges a device credential for a bearer token.
type DeviceLoginRequest struct {
	DeviceID string `json:"device_id" binding:"required"`
	Secret   string `json:"secret" binding:"required"`
}

// TokenResponse carries an issued bearer token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"` // seconds
}
