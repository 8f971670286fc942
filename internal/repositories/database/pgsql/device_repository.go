package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alaalsalam/hisabi-backend/internal/apperrors"
	"github.com/alaalsalam/hisabi-backend/internal/core/domain"
	portsrepo "github.com/alaalsalam/hisabi-backend/internal/core/ports/repositories"
)

type PgxDeviceRepository struct {
	BaseRepository
}

// newPgxDeviceRepository creates a new repository for registered devices.
func newPgxDeviceRepository(pool *pgxpool.Pool) portsrepo.DeviceRepository {
	return &PgxDeviceRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxDeviceRepository implements portsrepo.DeviceRepository
var _ portsrepo.DeviceRepository = (*PgxDeviceRepository)(nil)

func (r *PgxDeviceRepository) FindDeviceByID(ctx context.Context, deviceID string) (*domain.Device, error) {
	query := `
		SELECT device_id, user_id, name, secret_hash, status, registered_at, last_seen_at
		FROM devices
		WHERE device_id = $1;
	`
	var d domain.Device
	err := r.Pool.QueryRow(ctx, query, deviceID).Scan(
		&d.DeviceID, &d.UserID, &d.Name, &d.SecretHash, &d.Status, &d.RegisteredAt, &d.LastSeenAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find device %s: %w", deviceID, err)
	}
	return &d, nil
}

func (r *PgxDeviceRepository) SaveDevice(ctx context.Context, device domain.Device) error {
	query := `
		INSERT INTO devices (device_id, user_id, name, secret_hash, status, registered_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.Pool.Exec(ctx, query,
		device.DeviceID,
		device.UserID,
		device.Name,
		device.SecretHash,
		device.Status,
		device.RegisteredAt,
		device.LastSeenAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return fmt.Errorf("%w: device %s", apperrors.ErrDuplicate, device.DeviceID)
		}
		return fmt.Errorf("failed to save device %s: %w", device.DeviceID, err)
	}
	return nil
}

func (r *PgxDeviceRepository) UpdateDeviceStatus(ctx context.Context, deviceID string, status domain.DeviceStatus) error {
	query := `UPDATE devices SET status = $2 WHERE device_id = $1;`
	result, err := r.Pool.Exec(ctx, query, deviceID, status)
	if err != nil {
		return fmt.Errorf("failed to update device %s status: %w", deviceID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: device %s", apperrors.ErrNotFound, deviceID)
	}
	return nil
}

func (r *PgxDeviceRepository) TouchDevice(ctx context.Context, deviceID string, seenAt time.Time) error {
	query := `UPDATE devices SET last_seen_at = $2 WHERE device_id = $1;`
	if _, err := r.Pool.Exec(ctx, query, deviceID, seenAt); err != nil {
		return fmt.Errorf("failed to touch device %s: %w", deviceID, err)
	}
	return nil
}
