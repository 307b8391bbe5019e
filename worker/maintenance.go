// Package worker runs the periodic ledger maintenance jobs.
package worker

import (
	"context"
	"fmt"
	"time"

	"arcade/models"
	"arcade/service"

	log "github.com/sirupsen/logrus"
)

// Maintenance wraps the batch operations the scheduler triggers
type Maintenance struct {
	store service.MaintenanceStore
	now   func() time.Time
}

func NewMaintenance(store service.MaintenanceStore) *Maintenance {
	return &Maintenance{store: store, now: time.Now}
}

// ResetWeekly zeroes weekly experience for the current week. Running it
// again in the same week does nothing.
func (m *Maintenance) ResetWeekly(ctx context.Context) error {
	weekStart := models.WeekStart(m.now())

	rows, ran, err := m.store.ResetWeeklyExperience(ctx, weekStart)
	if err != nil {
		return fmt.Errorf("failed to reset weekly experience: %w", err)
	}
	if !ran {
		log.WithField("weekStart", weekStart).Debug("Weekly experience already reset")
		return nil
	}

	log.WithFields(log.Fields{
		"weekStart": weekStart,
		"players":   rows,
	}).Info("Reset weekly experience")
	return nil
}

// SweepModifiers deletes expired personal modifiers
func (m *Maintenance) SweepModifiers(ctx context.Context) error {
	deleted, err := m.store.DeleteExpiredModifiers(ctx, m.now())
	if err != nil {
		return fmt.Errorf("failed to delete expired modifiers: %w", err)
	}
	if deleted > 0 {
		log.WithField("deleted", deleted).Info("Swept expired modifiers")
	}
	return nil
}
