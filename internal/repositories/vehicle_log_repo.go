package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"garageflow/internal/common"
	"garageflow/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// VehicleLogRepository is append-only. Corrections add rows, they never edit.
type VehicleLogRepository interface {
	Create(ctx context.Context, log *models.VehicleLog) error
	CreateCorrection(ctx context.Context, reversal, replacement *models.VehicleLog) error
	GetByID(ctx context.Context, contractID, id uuid.UUID) (*models.VehicleLog, error)
	IsReversed(ctx context.Context, id uuid.UUID) (bool, error)
	ListForVehicle(ctx context.Context, contractID, vehicleID uuid.UUID, from, to time.Time) ([]models.VehicleLog, error)
}

type vehicleLogRepo struct {
	db DB
}

func NewVehicleLogRepo(db DB) VehicleLogRepository {
	return &vehicleLogRepo{db: db}
}

func (r *vehicleLogRepo) Create(ctx context.Context, log *models.VehicleLog) error {
	return insertVehicleLog(ctx, r.db, log)
}

// CreateCorrection writes the reversal and its replacement atomically
func (r *vehicleLogRepo) CreateCorrection(ctx context.Context, reversal, replacement *models.VehicleLog) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := insertVehicleLog(ctx, tx, reversal); err != nil {
			return err
		}
		return insertVehicleLog(ctx, tx, replacement)
	})
}

func insertVehicleLog(ctx context.Context, q querier, log *models.VehicleLog) error {
	query := `
		INSERT INTO mg_vehicle_logs (id, contract_id, vehicle_id, log_date, opening_km, closing_km, total_km, reverses_log_id, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := q.Exec(ctx, query, log.ID, log.ContractID, log.VehicleID, log.LogDate, log.OpeningKm, log.ClosingKm, log.TotalKm,
		log.ReversesLogID, log.Notes, log.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert vehicle log: %w", err)
	}
	return nil
}

func (r *vehicleLogRepo) GetByID(ctx context.Context, contractID, id uuid.UUID) (*models.VehicleLog, error) {
	query := `
		SELECT id, contract_id, vehicle_id, log_date, opening_km, closing_km, total_km, reverses_log_id, notes, created_at
		FROM mg_vehicle_logs
		WHERE contract_id = $1 AND id = $2
	`
	log, err := scanVehicleLog(r.db.QueryRow(ctx, query, contractID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("vehicle log", id)
		}
		return nil, err
	}
	return log, nil
}

func (r *vehicleLogRepo) IsReversed(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM mg_vehicle_logs WHERE reverses_log_id = $1)`
	var reversed bool
	if err := r.db.QueryRow(ctx, query, id).Scan(&reversed); err != nil {
		return false, err
	}
	return reversed, nil
}

// ListForVehicle returns logs with from <= log_date < to, reversals included
func (r *vehicleLogRepo) ListForVehicle(ctx context.Context, contractID, vehicleID uuid.UUID, from, to time.Time) ([]models.VehicleLog, error) {
	query := `
		SELECT id, contract_id, vehicle_id, log_date, opening_km, closing_km, total_km, reverses_log_id, notes, created_at
		FROM mg_vehicle_logs
		WHERE contract_id = $1 AND vehicle_id = $2 AND log_date >= $3 AND log_date < $4
		ORDER BY log_date ASC, created_at ASC
	`
	rows, err := r.db.Query(ctx, query, contractID, vehicleID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []models.VehicleLog{}
	for rows.Next() {
		log, err := scanVehicleLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *log)
	}
	return logs, rows.Err()
}

func scanVehicleLog(row pgx.Row) (*models.VehicleLog, error) {
	log := &models.VehicleLog{}
	err := row.Scan(&log.ID, &log.ContractID, &log.VehicleID, &log.LogDate, &log.OpeningKm, &log.ClosingKm, &log.TotalKm,
		&log.ReversesLogID, &log.Notes, &log.CreatedAt)
	if err != nil {
		return nil, err
	}
	return log, nil
}
