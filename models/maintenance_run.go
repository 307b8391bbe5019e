package models

import (
	"time"
)

// MaintenanceRunType identifies a scheduled maintenance job
type MaintenanceRunType string

const (
	MaintenanceRunWeeklyReset   MaintenanceRunType = "weekly_reset"
	MaintenanceRunModifierSweep MaintenanceRunType = "modifier_sweep"
)

// MaintenanceRun records one execution of a maintenance job
type MaintenanceRun struct {
	ID               int64              `db:"id"`
	RunType          MaintenanceRunType `db:"run_type"`
	PeriodStart      time.Time          `db:"period_start"`
	RowsAffected     int64              `db:"rows_affected"`
	ExecutionSummary map[string]any     `db:"execution_summary"`
	CreatedAt        time.Time          `db:"created_at"`
}

// WeekStart returns Monday 00:00 UTC of the week containing t
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -offset)
}
