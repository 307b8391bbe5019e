package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"arcade/database"
	"arcade/models"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

// MaintenanceRepository runs cross-guild batch jobs and records them in maintenance_runs
type MaintenanceRepository struct {
	db *database.DB
}

// NewMaintenanceRepository creates a new maintenance repository
func NewMaintenanceRepository(db *database.DB) *MaintenanceRepository {
	return &MaintenanceRepository{db: db}
}

// GetWeeklyReset returns the weekly reset run for the week starting at weekStart, or nil
func (r *MaintenanceRepository) GetWeeklyReset(ctx context.Context, weekStart time.Time) (*models.MaintenanceRun, error) {
	query := `
		SELECT id, run_type, period_start, rows_affected, execution_summary, created_at
		FROM maintenance_runs
		WHERE run_type = $1 AND period_start = $2
	`

	var run models.MaintenanceRun
	var summaryJSON []byte

	err := r.db.QueryRow(ctx, query, models.MaintenanceRunWeeklyReset, models.WeekStart(weekStart)).Scan(
		&run.ID,
		&run.RunType,
		&run.PeriodStart,
		&run.RowsAffected,
		&summaryJSON,
		&run.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get weekly reset for %s: %w", weekStart.Format("2006-01-02"), err)
	}

	if len(summaryJSON) > 0 {
		if err := json.Unmarshal(summaryJSON, &run.ExecutionSummary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal execution summary: %w", err)
		}
	}

	return &run, nil
}

// ResetWeeklyExperience zeroes weekly experience for every guild, at most once per week
func (r *MaintenanceRepository) ResetWeeklyExperience(ctx context.Context, weekStart time.Time) (int64, bool, error) {
	weekStart = models.WeekStart(weekStart)
	var rows int64
	ran := false

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		// Serialise concurrent resets from multiple replicas
		if _, err := tx.Exec(ctx, `LOCK TABLE maintenance_runs IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return fmt.Errorf("failed to lock maintenance runs: %w", err)
		}

		var exists bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM maintenance_runs WHERE run_type = $1 AND period_start = $2)`,
			models.MaintenanceRunWeeklyReset, weekStart,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check weekly reset: %w", err)
		}
		if exists {
			return nil
		}

		tag, err := tx.Exec(ctx, `UPDATE players SET weekly_experience = 0, updated_at = NOW() WHERE weekly_experience <> 0`)
		if err != nil {
			return fmt.Errorf("failed to reset weekly experience: %w", err)
		}
		rows = tag.RowsAffected()

		if err := insertRun(ctx, tx, &models.MaintenanceRun{
			RunType:      models.MaintenanceRunWeeklyReset,
			PeriodStart:  weekStart,
			RowsAffected: rows,
			ExecutionSummary: map[string]any{
				"players_reset": rows,
			},
		}); err != nil {
			return err
		}

		ran = true
		return nil
	})
	if err != nil {
		return 0, false, err
	}

	log.WithFields(log.Fields{
		"weekStart": weekStart.Format("2006-01-02"),
		"rows":      rows,
		"ran":       ran,
	}).Info("Weekly experience reset")

	return rows, ran, nil
}

// DeleteExpiredModifiers removes personal modifiers that expired at or before now
func (r *MaintenanceRepository) DeleteExpiredModifiers(ctx context.Context, now time.Time) (int64, error) {
	var rows int64

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM player_modifiers WHERE expires_at <= $1`, now)
		if err != nil {
			return fmt.Errorf("failed to delete expired modifiers: %w", err)
		}
		rows = tag.RowsAffected()

		return insertRun(ctx, tx, &models.MaintenanceRun{
			RunType:      models.MaintenanceRunModifierSweep,
			PeriodStart:  now,
			RowsAffected: rows,
		})
	})
	if err != nil {
		return 0, err
	}

	return rows, nil
}

func insertRun(ctx context.Context, tx pgx.Tx, run *models.MaintenanceRun) error {
	summaryJSON, err := json.Marshal(run.ExecutionSummary)
	if err != nil {
		return fmt.Errorf("failed to marshal execution summary: %w", err)
	}

	query := `
		INSERT INTO maintenance_runs (run_type, period_start, rows_affected, execution_summary)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	if err := tx.QueryRow(ctx, query, run.RunType, run.PeriodStart, run.RowsAffected, summaryJSON).
		Scan(&run.ID, &run.CreatedAt); err != nil {
		return fmt.Errorf("failed to record %s run: %w", run.RunType, err)
	}
	return nil
}
