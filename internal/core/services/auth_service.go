package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/alaalsalam/hisabi-backend/internal/apperrors"
	"github.com/alaalsalam/hisabi-backend/internal/core/domain"
	portsrepo "github.com/alaalsalam/hisabi-backend/internal/core/ports/repositories"
	portssvc "github.com/alaalsalam/hisabi-backend/internal/core/ports/services"
	"github.com/alaalsalam/hisabi-backend/internal/dto"
)

// authService implements the AuthSvcFacade interface.
type authService struct {
	BaseService
	devices     portsrepo.DeviceRepository
	jwtSecret   []byte
	tokenExpiry time.Duration
	now         func() time.Time
}

// NewAuthService creates a new auth service with the provided dependencies.
func NewAuthService(devices portsrepo.DeviceRepository, jwtSecret string, tokenExpiry time.Duration) portssvc.AuthSvcFacade {
	if tokenExpiry <= 0 {
		tokenExpiry = 24 * time.Hour
	}
	return &authService{
		devices:     devices,
		jwtSecret:   []byte(jwtSecret),
		tokenExpiry: tokenExpiry,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

var _ portssvc.AuthSvcFacade = (*authService)(nil)

// RegisterDevice stores a new device with a bcrypt hash of its secret.
// The plaintext secret never leaves the device after this call.
func (s *authService) RegisterDevice(ctx context.Context, req dto.RegisterDeviceRequest) (*domain.Device, error) {
	if _, err := s.devices.FindDeviceByID(ctx, req.DeviceID); err == nil {
		return nil, fmt.Errorf("%w: device %s is already registered", apperrors.ErrDuplicate, req.DeviceID)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Secret), bcrypt.DefaultCost)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash device secret")
		return nil, err
	}

	device := domain.Device{
		DeviceID:     req.DeviceID,
		UserID:       req.UserID,
		Name:         req.Name,
		SecretHash:   string(hash),
		Status:       domain.DeviceActive,
		RegisteredAt: s.now(),
	}
	if err := s.devices.SaveDevice(ctx, device); err != nil {
		s.LogError(ctx, err, "Failed to save device", slog.String("device_id", req.DeviceID))
		return nil, err
	}

	s.LogInfo(ctx, "Device registered",
		slog.String("device_id", req.DeviceID),
		slog.String("user_id", req.UserID))
	return &device, nil
}

// IssueToken exchanges a device id and secret for a signed bearer token
// carrying the owning user and the device as claims.
func (s *authService) IssueToken(ctx context.Context, req dto.DeviceLoginRequest) (*dto.TokenResponse, error) {
	device, err := s.devices.FindDeviceByID(ctx, req.DeviceID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Same error as a bad secret, so callers cannot probe for
			// registered device ids.
			return nil, fmt.Errorf("%w: invalid device credentials", apperrors.ErrUnauthorized)
		}
		return nil, err
	}
	if !device.IsActive() {
		return nil, fmt.Errorf("%w: device revoked", apperrors.ErrForbidden)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(device.SecretHash), []byte(req.Secret)); err != nil {
		return nil, fmt.Errorf("%w: invalid device credentials", apperrors.ErrUnauthorized)
	}

	now := s.now()
	claims := jwt.MapClaims{
		"sub":       device.UserID,
		"device_id": device.DeviceID,
		"iat":       now.Unix(),
		"exp":       now.Add(s.tokenExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		s.LogError(ctx, err, "Failed to sign token", slog.String("device_id", device.DeviceID))
		return nil, err
	}

	if err := s.devices.TouchDevice(ctx, device.DeviceID, now); err != nil {
		s.LogDebug(ctx, "Failed to record device activity", slog.String("error", err.Error()))
	}

	return &dto.TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokenExpiry.Seconds()),
	}, nil
}

// ResolveDevice loads a device and rejects revoked ones. The auth
// middleware calls this on every request carrying a device claim.
func (s *authService) ResolveDevice(ctx context.Context, deviceID string) (*domain.Device, error) {
	device, err := s.devices.FindDeviceByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if !device.IsActive() {
		return nil, fmt.Errorf("%w: device revoked", apperrors.ErrForbidden)
	}
	return device, nil
}

// RevokeDevice disables a device. Only the owning user may revoke it;
// tokens already issued stop working at the next middleware check.
func (s *authService) RevokeDevice(ctx context.Context, userID, deviceID string) error {
	device, err := s.devices.FindDeviceByID(ctx, deviceID)
	if err != nil {
		return err
	}
	if device.UserID != userID {
		return fmt.Errorf("%w: device belongs to another user", apperrors.ErrForbidden)
	}
	if err := s.devices.UpdateDeviceStatus(ctx, deviceID, domain.DeviceRevoked); err != nil {
		s.LogError(ctx, err, "Failed to revoke device", slog.String("device_id", deviceID))
		return err
	}
	s.LogInfo(ctx, "Device revoked", slog.String("device_id", deviceID))
	return nil
}
