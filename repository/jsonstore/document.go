package jsonstore

import (
	"time"

	"arcade/models"

	log "github.com/sirupsen/logrus"
)

// historyLimit caps the balance history kept per guild file
const historyLimit = 500

// document is the on-disk shape of one guild file
type document struct {
	Players         map[int64]*models.Player                             `json:"players"`
	Modifiers       map[int64]map[models.ModifierKind]*models.Modifier `json:"modifiers"`
	History         []*models.BalanceHistory                             `json:"history"`
	NextHistoryID   int64                                                `json:"next_history_id"`
	LastWeeklyReset time.Time                                            `json:"last_weekly_reset"`
}

func newDocument() *document {
	return &document{
		Players:   make(map[int64]*models.Player),
		Modifiers: make(map[int64]map[models.ModifierKind]*models.Modifier),
	}
}

// normalize fills maps left nil by older or hand-edited files and repairs
// records that break ledger rules. Each repair is logged.
func (d *document) normalize(guildID, levelExpUnit int64) {
	if d.Players == nil {
		d.Players = make(map[int64]*models.Player)
	}
	if d.Modifiers == nil {
		d.Modifiers = make(map[int64]map[models.ModifierKind]*models.Modifier)
	}

	for id, p := range d.Players {
		if p == nil {
			delete(d.Players, id)
			warnRepair(guildID, id, "empty player record dropped")
			continue
		}
		repairPlayer(guildID, id, p, levelExpUnit)
	}

	for id, byKind := range d.Modifiers {
		for kind, m := range byKind {
			if m == nil {
				delete(byKind, kind)
				warnRepair(guildID, id, "empty modifier record dropped")
			}
		}
		if len(byKind) == 0 {
			delete(d.Modifiers, id)
		}
	}

	kept := d.History[:0]
	for _, h := range d.History {
		if h != nil {
			kept = append(kept, h)
		}
	}
	d.History = kept
}

func repairPlayer(guildID, id int64, p *models.Player, levelExpUnit int64) {
	if p.Badges == nil {
		p.Badges = []string{}
	}
	if p.Balance < 0 {
		warnRepair(guildID, id, "negative balance reset to zero")
		p.Balance = 0
	}
	if p.Debt < 0 {
		warnRepair(guildID, id, "negative debt reset to zero")
		p.Debt = 0
	}
	if p.Experience < 0 {
		warnRepair(guildID, id, "negative experience reset to zero")
		p.Experience = 0
	}
	if p.WeeklyExperience < 0 {
		warnRepair(guildID, id, "negative weekly experience reset to zero")
		p.WeeklyExperience = 0
	}
	if level := models.LevelForExperience(p.Experience, levelExpUnit); p.Level != level {
		warnRepair(guildID, id, "level recomputed from experience")
		p.Level = level
	}
}

func warnRepair(guildID, playerID int64, repair string) {
	log.WithFields(log.Fields{
		"guildID":  guildID,
		"playerID": playerID,
	}).Warnf("Ledger file repaired: %s", repair)
}

func clonePlayer(p *models.Player) *models.Player {
	c := *p
	c.Badges = append([]string{}, p.Badges...)
	return &c
}

func cloneModifier(m *models.Modifier) *models.Modifier {
	c := *m
	return &c
}
