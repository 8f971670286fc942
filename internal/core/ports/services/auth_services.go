package services

import (
	"context"

	"github.com/alaalsalam/hisabi-backend/internal/core/domain"
	"github.com/alaalsalam/hisabi-backend/internal/dto"
)

// AuthSvcFacade resolves device credentials into (user, device) and
// manages device lifecycle. The sync core only consumes ResolveDevice.
type AuthSvcFacade interface {
	RegisterDevice(ctx context.Context, req dto.RegisterDeviceRequest) (*domain.Device, error)
	IssueToken(ctx context.Context, req dto.DeviceLoginRequest) (*dto.TokenResponse, error)
	ResolveDevice(ctx context.Context, deviceID string) (*domain.Device, error)
	RevokeDevice(ctx context.Context, userID, deviceID string) error
}
