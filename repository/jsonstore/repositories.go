package jsonstore

import (
	"context"
	"slices"
	"sort"
	"time"

	"arcade/models"
)

type playerRepository struct {
	doc     *document
	guildID int64
	now     func() time.Time
}

func (r *playerRepository) GetByID(ctx context.Context, playerID int64) (*models.Player, error) {
	p, ok := r.doc.Players[playerID]
	if !ok {
		return nil, nil
	}
	return clonePlayer(p), nil
}

// GetOrCreateForUpdate needs no row lock; the unit of work already holds the guild lock
func (r *playerRepository) GetOrCreateForUpdate(ctx context.Context, playerID int64) (*models.Player, error) {
	p, ok := r.doc.Players[playerID]
	if !ok {
		p = models.NewPlayer(r.guildID, playerID)
		p.CreatedAt = r.now().UTC()
		p.UpdatedAt = p.CreatedAt
		r.doc.Players[playerID] = p
	}
	return clonePlayer(p), nil
}

func (r *playerRepository) Save(ctx context.Context, player *models.Player) error {
	saved := clonePlayer(player)
	saved.GuildID = r.guildID
	saved.UpdatedAt = r.now().UTC()
	if existing, ok := r.doc.Players[player.PlayerID]; ok {
		saved.CreatedAt = existing.CreatedAt
	} else if saved.CreatedAt.IsZero() {
		saved.CreatedAt = saved.UpdatedAt
	}
	r.doc.Players[player.PlayerID] = saved

	player.GuildID = saved.GuildID
	player.CreatedAt = saved.CreatedAt
	player.UpdatedAt = saved.UpdatedAt
	return nil
}

func (r *playerRepository) GetTop(ctx context.Context, limit int, weekly bool) ([]*models.Player, error) {
	score := func(p *models.Player) int64 {
		if weekly {
			return p.WeeklyExperience
		}
		return p.Experience
	}

	players := make([]*models.Player, 0, len(r.doc.Players))
	for _, p := range r.doc.Players {
		if score(p) > 0 {
			players = append(players, clonePlayer(p))
		}
	}
	sort.Slice(players, func(i, j int) bool {
		if score(players[i]) != score(players[j]) {
			return score(players[i]) > score(players[j])
		}
		return players[i].PlayerID < players[j].PlayerID
	})

	if limit >= 0 && len(players) > limit {
		players = players[:limit]
	}
	return players, nil
}

type balanceHistoryRepository struct {
	doc     *document
	guildID int64
	now     func() time.Time
}

func (r *balanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	r.doc.NextHistoryID++
	history.ID = r.doc.NextHistoryID
	history.GuildID = r.guildID
	history.CreatedAt = r.now().UTC()

	entry := *history
	r.doc.History = append(r.doc.History, &entry)
	if over := len(r.doc.History) - historyLimit; over > 0 {
		r.doc.History = slices.Clone(r.doc.History[over:])
	}
	return nil
}

func (r *balanceHistoryRepository) GetByPlayer(ctx context.Context, playerID int64, limit int) ([]*models.BalanceHistory, error) {
	var out []*models.BalanceHistory
	for i := len(r.doc.History) - 1; i >= 0 && len(out) < limit; i-- {
		if h := r.doc.History[i]; h.PlayerID == playerID {
			entry := *h
			out = append(out, &entry)
		}
	}
	return out, nil
}

type modifierRepository struct {
	doc     *document
	guildID int64
	now     func() time.Time
}

func (r *modifierRepository) GetByPlayer(ctx context.Context, playerID int64) ([]*models.Modifier, error) {
	byKind := r.doc.Modifiers[playerID]
	out := make([]*models.Modifier, 0, len(byKind))
	for _, m := range byKind {
		out = append(out, cloneModifier(m))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out, nil
}

func (r *modifierRepository) Upsert(ctx context.Context, modifier *models.Modifier) error {
	modifier.GuildID = r.guildID
	modifier.Scope = models.ModifierScopePersonal
	modifier.CreatedAt = r.now().UTC()

	byKind, ok := r.doc.Modifiers[modifier.PlayerID]
	if !ok {
		byKind = make(map[models.ModifierKind]*models.Modifier)
		r.doc.Modifiers[modifier.PlayerID] = byKind
	}
	byKind[modifier.Kind] = cloneModifier(modifier)
	return nil
}

func (r *modifierRepository) DeleteExpired(ctx context.Context, playerID int64, now time.Time) (int64, error) {
	return deleteExpired(r.doc, playerID, now), nil
}

func deleteExpired(doc *document, playerID int64, now time.Time) int64 {
	byKind := doc.Modifiers[playerID]
	var n int64
	for kind, m := range byKind {
		if !m.IsActive(now) {
			delete(byKind, kind)
			n++
		}
	}
	if len(byKind) == 0 {
		delete(doc.Modifiers, playerID)
	}
	return n
}
