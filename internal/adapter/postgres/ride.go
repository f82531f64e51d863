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
	"github.com/Temutjin2k/ambulance-dispatch/pkg/trm"
)

const rideColumns = `r.id, r.name, r.age, r.address, r.phone, r.ambulance_type, r.vehicle_type,
	r.hospital, r.notes, r.charge, r.status, r.latitude, r.longitude,
	r.driver_id, r.driver_latitude, r.driver_longitude, r.requester_id,
	r.created_at, r.updated_at`

type RideRepo struct {
	db      *pgxpool.Pool
	tx      trm.TxManager
	service string
}

func NewRideRepo(db *pgxpool.Pool, tx trm.TxManager, service string) *RideRepo {
	return &RideRepo{db: db, tx: tx, service: service}
}

func scanRide(row pgx.Row, dst *models.RideRequest, extra ...any) error {
	return row.Scan(append([]any{
		&dst.ID, &dst.Name, &dst.Age, &dst.Address, &dst.Phone, &dst.AmbulanceType, &dst.VehicleType,
		&dst.Hospital, &dst.Notes, &dst.Charge, &dst.Status, &dst.Latitude, &dst.Longitude,
		&dst.DriverID, &dst.DriverLatitude, &dst.DriverLongitude, &dst.RequesterID,
		&dst.CreatedAt, &dst.UpdatedAt,
	}, extra...)...)
}

func collectRides(rows pgx.Rows) ([]models.RideRequest, error) {
	defer rows.Close()

	var rides []models.RideRequest
	for rows.Next() {
		var ride models.RideRequest
		if err := scanRide(rows, &ride); err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

// Create inserts a single pending ride and returns the stored row.
// Store errors are returned unwrapped so callers can surface the server message.
// A nil ride with a nil error means the insert returned no row.
func (r *RideRepo) Create(ctx context.Context, ride *models.RideRequest) (_ *models.RideRequest, err error) {
	defer observe(r.service, "ride_create", time.Now(), &err)

	query := `
		INSERT INTO ride_requests AS r (name, age, address, phone, ambulance_type, vehicle_type,
			hospital, notes, charge, status, latitude, longitude, requester_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + rideColumns

	var created models.RideRequest
	err = scanRide(conn(ctx, r.db).QueryRow(ctx, query,
		ride.Name, ride.Age, ride.Address, ride.Phone, ride.AmbulanceType, ride.VehicleType,
		ride.Hospital, ride.Notes, ride.Charge, ride.Status, ride.Latitude, ride.Longitude, ride.RequesterID,
	), &created)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &created, nil
}

// GetWithDriver reads one ride joined with its assigned driver's profile.
func (r *RideRepo) GetWithDriver(ctx context.Context, rideID uuid.UUID) (_ *models.RideWithDriver, err error) {
	const op = "RideRepo.GetWithDriver"
	defer observe(r.service, "ride_get", time.Now(), &err)

	query := `
		SELECT ` + rideColumns + `,
			d.id, d.name, d.username, d.phone_number, d.vehicle_number, d.license_number,
			d.address, d.is_available, d.created_at, d.updated_at
		FROM ride_requests r
		LEFT JOIN drivers d ON d.id = r.driver_id
		WHERE r.id = $1`

	var (
		out models.RideWithDriver

		dID                                  *uuid.UUID
		dName, dUsername                     *string
		dPhone, dVehicle, dLicense, dAddress *string
		dAvailable                           *bool
		dCreated, dUpdated                   *time.Time
	)

	err = scanRide(conn(ctx, r.db).QueryRow(ctx, query, rideID), &out.RideRequest,
		&dID, &dName, &dUsername, &dPhone, &dVehicle, &dLicense, &dAddress, &dAvailable, &dCreated, &dUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrRideNotFound
		}
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	if dID != nil {
		out.Driver = &models.DriverProfile{
			ID:            *dID,
			Name:          deref(dName),
			Username:      deref(dUsername),
			PhoneNumber:   dPhone,
			VehicleNumber: dVehicle,
			LicenseNumber: dLicense,
			Address:       dAddress,
			IsAvailable:   dAvailable != nil && *dAvailable,
		}
		if dCreated != nil {
			out.Driver.CreatedAt = *dCreated
		}
		if dUpdated != nil {
			out.Driver.UpdatedAt = *dUpdated
		}
	}

	return &out, nil
}

// GetActiveForDriver returns the driver's ride that is neither completed nor cancelled, or nil.
func (r *RideRepo) GetActiveForDriver(ctx context.Context, driverID uuid.UUID) (_ *models.RideRequest, err error) {
	const op = "RideRepo.GetActiveForDriver"
	defer observe(r.service, "ride_get_active", time.Now(), &err)

	query := `
		SELECT ` + rideColumns + `
		FROM ride_requests r
		WHERE r.driver_id = $1 AND r.status NOT IN ('completed', 'cancelled')
		ORDER BY r.updated_at DESC
		LIMIT 1`

	var ride models.RideRequest
	if err = scanRide(conn(ctx, r.db).QueryRow(ctx, query, driverID), &ride); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return &ride, nil
}

// ListOpen returns pending rides nobody has claimed, newest first.
func (r *RideRepo) ListOpen(ctx context.Context) (_ []models.RideRequest, err error) {
	const op = "RideRepo.ListOpen"
	defer observe(r.service, "ride_list_open", time.Now(), &err)

	query := `
		SELECT ` + rideColumns + `
		FROM ride_requests r
		WHERE r.status = 'pending' AND r.driver_id IS NULL
		ORDER BY r.created_at DESC`

	rows, err := conn(ctx, r.db).Query(ctx, query)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	rides, err := collectRides(rows)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return rides, nil
}

// Accept assigns the ride to driverID only while it is still pending and unassigned.
// Losing the race yields ErrAcceptanceConflict.
func (r *RideRepo) Accept(ctx context.Context, rideID, driverID uuid.UUID) (_ *models.RideRequest, err error) {
	const op = "RideRepo.Accept"
	defer observe(r.service, "ride_accept", time.Now(), &err)

	query := `
		UPDATE ride_requests AS r
		SET status = 'accepted', driver_id = $2, updated_at = now()
		WHERE r.id = $1 AND r.driver_id IS NULL AND r.status = 'pending'
		RETURNING ` + rideColumns

	var ride models.RideRequest
	err = r.tx.Do(ctx, func(ctx context.Context) error {
		if err := scanRide(conn(ctx, r.db).QueryRow(ctx, query, rideID, driverID), &ride); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return types.ErrAcceptanceConflict
			}
			return err
		}
		return setAvailability(ctx, r.db, driverID, false)
	})
	if err != nil {
		if errors.Is(err, types.ErrAcceptanceConflict) {
			return nil, err
		}
		return nil, wrap.Error(wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed), fmt.Errorf("%s: %w", op, err))
	}

	return &ride, nil
}

// UpdateStatus moves the ride from upd.From to upd.To while it is still held by upd.DriverID.
// A ride that changed underneath (cancelled, reassigned) yields ErrTransitionRejected.
func (r *RideRepo) UpdateStatus(ctx context.Context, upd models.StatusUpdate) (_ *models.RideRequest, err error) {
	const op = "RideRepo.UpdateStatus"
	defer observe(r.service, "ride_update_status", time.Now(), &err)

	var lat, lng *float64
	if upd.Location != nil {
		lat, lng = &upd.Location.Latitude, &upd.Location.Longitude
	}

	query := `
		UPDATE ride_requests AS r
		SET status = $4,
			driver_latitude = COALESCE($5, r.driver_latitude),
			driver_longitude = COALESCE($6, r.driver_longitude),
			updated_at = now()
		WHERE r.id = $1 AND r.driver_id = $2 AND r.status = $3
		RETURNING ` + rideColumns

	var ride models.RideRequest
	err = r.tx.Do(ctx, func(ctx context.Context) error {
		row := conn(ctx, r.db).QueryRow(ctx, query, upd.RideID, upd.DriverID, upd.From, upd.To, lat, lng)
		if err := scanRide(row, &ride); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return types.ErrTransitionRejected
			}
			return err
		}
		if upd.To == types.StatusCompleted {
			return setAvailability(ctx, r.db, upd.DriverID, true)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, types.ErrTransitionRejected) {
			return nil, err
		}
		return nil, wrap.Error(wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed), fmt.Errorf("%s: %w", op, err))
	}

	return &ride, nil
}

// UpdateDriverLocation writes the driver position, scoped by ride, driver and a tracking status.
func (r *RideRepo) UpdateDriverLocation(ctx context.Context, report models.LocationReport) (err error) {
	const op = "RideRepo.UpdateDriverLocation"
	defer observe(r.service, "ride_update_location", time.Now(), &err)

	query := `
		UPDATE ride_requests
		SET driver_latitude = $3, driver_longitude = $4, updated_at = $5
		WHERE id = $1 AND driver_id = $2 AND status IN ('accepted', 'en_route', 'picked_up')`

	tag, err := conn(ctx, r.db).Exec(ctx, query, report.RideID, report.DriverID, report.Latitude, report.Longitude, report.RecordedAt)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	if tag.RowsAffected() == 0 {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, types.ErrRideNotFound))
	}
	return nil
}

// Cancel moves a pending or accepted ride to cancelled and frees its driver.
func (r *RideRepo) Cancel(ctx context.Context, rideID uuid.UUID) (_ *models.RideRequest, err error) {
	const op = "RideRepo.Cancel"
	defer observe(r.service, "ride_cancel", time.Now(), &err)

	query := `
		UPDATE ride_requests AS r
		SET status = 'cancelled', updated_at = now()
		WHERE r.id = $1 AND r.status IN ('pending', 'accepted')
		RETURNING ` + rideColumns

	var ride models.RideRequest
	err = r.tx.Do(ctx, func(ctx context.Context) error {
		if err := scanRide(conn(ctx, r.db).QueryRow(ctx, query, rideID), &ride); err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return err
			}
			var exists bool
			if err := conn(ctx, r.db).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM ride_requests WHERE id = $1)`, rideID).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return types.ErrRideNotFound
			}
			return types.ErrRideCannotBeCancelled
		}
		if ride.DriverID != nil {
			return setAvailability(ctx, r.db, *ride.DriverID, true)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, types.ErrRideNotFound) || errors.Is(err, types.ErrRideCannotBeCancelled) {
			return nil, err
		}
		return nil, wrap.Error(wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed), fmt.Errorf("%s: %w", op, err))
	}

	return &ride, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
