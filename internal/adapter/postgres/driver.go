package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
	wrap "github.com/Temutjin2k/ambulance-dispatch/pkg/logger/wrapper"
)

const driverColumns = `id, name, username, phone_number, vehicle_number, license_number,
	address, is_available, created_at, updated_at`

type DriverRepo struct {
	db      *pgxpool.Pool
	service string
}

func NewDriverRepo(db *pgxpool.Pool, service string) *DriverRepo {
	return &DriverRepo{db: db, service: service}
}

func scanDriver(row pgx.Row, d *models.DriverProfile, extra ...any) error {
	return row.Scan(append([]any{
		&d.ID, &d.Name, &d.Username, &d.PhoneNumber, &d.VehicleNumber, &d.LicenseNumber,
		&d.Address, &d.IsAvailable, &d.CreatedAt, &d.UpdatedAt,
	}, extra...)...)
}

func (r *DriverRepo) GetProfile(ctx context.Context, driverID uuid.UUID) (_ *models.DriverProfile, err error) {
	const op = "DriverRepo.GetProfile"
	defer observe(r.service, "driver_get", time.Now(), &err)

	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`

	var d models.DriverProfile
	if err = scanDriver(conn(ctx, r.db).QueryRow(ctx, query, driverID), &d); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrDriverNotFound
		}
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return &d, nil
}

// GetCredentials loads a driver and its password hash by username.
func (r *DriverRepo) GetCredentials(ctx context.Context, username string) (_ *models.DriverCredentials, err error) {
	const op = "DriverRepo.GetCredentials"
	defer observe(r.service, "driver_get_credentials", time.Now(), &err)

	query := `SELECT ` + driverColumns + `, password_hash FROM drivers WHERE username = $1`

	var c models.DriverCredentials
	if err = scanDriver(conn(ctx, r.db).QueryRow(ctx, query, username), &c.Profile, &c.PasswordHash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrDriverNotFound
		}
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return &c, nil
}

func setAvailability(ctx context.Context, db *pgxpool.Pool, driverID uuid.UUID, available bool) error {
	const op = "setAvailability"

	tag, err := conn(ctx, db).Exec(ctx, `UPDATE drivers SET is_available = $2, updated_at = now() WHERE id = $1`, driverID, available)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	if tag.RowsAffected() == 0 {
		return types.ErrDriverNotFound
	}
	return nil
}
