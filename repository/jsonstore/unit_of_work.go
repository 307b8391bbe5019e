package jsonstore

import (
	"context"
	"fmt"
	"sync"

	"arcade/events"
	"arcade/service"
)

// unitOfWork holds the guild lock from Begin until Commit or Rollback and
// works on an in-memory copy of the guild document
type unitOfWork struct {
	store            *Store
	guildID          int64
	lock             *sync.Mutex
	doc              *document
	ctx              context.Context
	transactionalBus *events.TransactionalBus
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.doc != nil {
		return fmt.Errorf("transaction already started")
	}

	u.lock = u.store.guildLock(u.guildID)
	u.lock.Lock()
	u.doc = u.store.load(u.guildID)
	u.ctx = ctx
	return nil
}

func (u *unitOfWork) Commit() error {
	if u.doc == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.store.save(u.guildID, u.doc)
	u.release()
	if err != nil {
		u.transactionalBus.Discard()
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.transactionalBus.Flush(u.ctx)
	return nil
}

func (u *unitOfWork) Rollback() error {
	if u.doc == nil {
		return nil
	}
	u.release()
	u.transactionalBus.Discard()
	return nil
}

func (u *unitOfWork) release() {
	u.doc = nil
	u.lock.Unlock()
}

func (u *unitOfWork) started() *document {
	if u.doc == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.doc
}

func (u *unitOfWork) PlayerRepository() service.PlayerRepository {
	return &playerRepository{doc: u.started(), guildID: u.guildID, now: u.store.now}
}

func (u *unitOfWork) BalanceHistoryRepository() service.BalanceHistoryRepository {
	return &balanceHistoryRepository{doc: u.started(), guildID: u.guildID, now: u.store.now}
}

func (u *unitOfWork) ModifierRepository() service.ModifierRepository {
	return &modifierRepository{doc: u.started(), guildID: u.guildID, now: u.store.now}
}

func (u *unitOfWork) EventBus() service.EventPublisher {
	return u.transactionalBus
}
