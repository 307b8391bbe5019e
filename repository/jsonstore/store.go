// Package jsonstore is a file-backed ledger: one JSON document per guild,
// written atomically on commit.
package jsonstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"arcade/events"
	"arcade/models"
	"arcade/service"

	log "github.com/sirupsen/logrus"
)

// Store owns the data directory and serialises units of work per guild
type Store struct {
	dir          string
	bus          *events.Bus
	levelExpUnit int64
	now          func() time.Time

	mu         sync.Mutex
	guildLocks map[int64]*sync.Mutex
}

// NewStore creates the data directory if needed. levelExpUnit is used to
// check stored levels on load.
func NewStore(dir string, bus *events.Bus, levelExpUnit int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	if levelExpUnit <= 0 {
		levelExpUnit = models.DefaultLevelExpUnit
	}
	return &Store{
		dir:          dir,
		bus:          bus,
		levelExpUnit: levelExpUnit,
		now:          time.Now,
		guildLocks:   make(map[int64]*sync.Mutex),
	}, nil
}

// CreateForGuild implements service.UnitOfWorkFactory
func (s *Store) CreateForGuild(guildID int64) service.UnitOfWork {
	return &unitOfWork{
		store:            s,
		guildID:          guildID,
		transactionalBus: events.NewTransactionalBus(s.bus),
	}
}

func (s *Store) guildLock(guildID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.guildLocks[guildID]
	if !ok {
		l = &sync.Mutex{}
		s.guildLocks[guildID] = l
	}
	return l
}

func (s *Store) path(guildID int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("guild_%d.json", guildID))
}

// load reads a guild document. A missing file is an empty document; an
// unreadable or malformed one is logged and replaced by an empty document.
func (s *Store) load(guildID int64) *document {
	path := s.path(guildID)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return newDocument()
	}
	if err != nil {
		log.WithFields(log.Fields{
			"guildID": guildID,
			"path":    path,
			"error":   err,
		}).Warn("Ledger file unreadable, starting from an empty record")
		return newDocument()
	}

	doc := newDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		log.WithFields(log.Fields{
			"guildID": guildID,
			"path":    path,
			"error":   err,
		}).Warn("Ledger file corrupt, starting from an empty record")
		return newDocument()
	}
	doc.normalize(guildID, s.levelExpUnit)
	return doc
}

// save writes the document to a temp file and renames it over the original
func (s *Store) save(guildID int64, doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode guild %d: %w", guildID, err)
	}

	tmp, err := os.CreateTemp(s.dir, fmt.Sprintf("guild_%d.*.tmp", guildID))
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write guild %d: %w", guildID, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync guild %d: %w", guildID, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close guild %d: %w", guildID, err)
	}

	if err := os.Rename(tmpName, s.path(guildID)); err != nil {
		return fmt.Errorf("failed to replace guild %d: %w", guildID, err)
	}
	return nil
}

// guildIDs lists guilds that have a file in the data directory
func (s *Store) guildIDs() ([]int64, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "guild_*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list guild files: %w", err)
	}

	ids := make([]int64, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), "guild_"), ".json")
		id, err := strconv.ParseInt(name, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// update runs fn on a guild's document under the guild lock and saves it when fn reports a change
func (s *Store) update(guildID int64, fn func(doc *document) bool) error {
	l := s.guildLock(guildID)
	l.Lock()
	defer l.Unlock()

	doc := s.load(guildID)
	if !fn(doc) {
		return nil
	}
	return s.save(guildID, doc)
}
