package jsonstore

import (
	"context"
	"time"

	"arcade/models"

	log "github.com/sirupsen/logrus"
)

// ResetWeeklyExperience zeroes weekly experience in every guild file not yet
// reset for the week starting at weekStart
func (s *Store) ResetWeeklyExperience(ctx context.Context, weekStart time.Time) (int64, bool, error) {
	weekStart = models.WeekStart(weekStart)

	ids, err := s.guildIDs()
	if err != nil {
		return 0, false, err
	}

	var rows int64
	ran := false
	for _, guildID := range ids {
		if err := ctx.Err(); err != nil {
			return rows, ran, err
		}
		err := s.update(guildID, func(doc *document) bool {
			if !doc.LastWeeklyReset.Before(weekStart) {
				return false
			}
			for _, p := range doc.Players {
				if p.WeeklyExperience != 0 {
					p.WeeklyExperience = 0
					rows++
				}
			}
			doc.LastWeeklyReset = weekStart
			ran = true
			return true
		})
		if err != nil {
			return rows, ran, err
		}
	}

	log.WithFields(log.Fields{
		"weekStart": weekStart.Format("2006-01-02"),
		"guilds":    len(ids),
		"rows":      rows,
		"ran":       ran,
	}).Info("Weekly experience reset")

	return rows, ran, nil
}

// DeleteExpiredModifiers removes expired personal modifiers from every guild file
func (s *Store) DeleteExpiredModifiers(ctx context.Context, now time.Time) (int64, error) {
	ids, err := s.guildIDs()
	if err != nil {
		return 0, err
	}

	var rows int64
	for _, guildID := range ids {
		if err := ctx.Err(); err != nil {
			return rows, err
		}
		err := s.update(guildID, func(doc *document) bool {
			var n int64
			for playerID := range doc.Modifiers {
				n += deleteExpired(doc, playerID, now)
			}
			rows += n
			return n > 0
		})
		if err != nil {
			return rows, err
		}
	}
	return rows, nil
}
