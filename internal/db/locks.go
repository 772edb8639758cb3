package db

import (
	"context"
	"sync"
)

type holdingKey struct {
	userID int64
	symbol string
}

// HoldingLocks hands out one exclusive lock per (user, symbol), the in-process
// counterpart of a row lock. Different holdings never contend.
type HoldingLocks struct {
	locks    map[holdingKey]*holdingLock
	mapMutex sync.Mutex // protects the map itself
}

type holdingLock struct {
	sem  chan struct{}
	refs int
}

func NewHoldingLocks() *HoldingLocks {
	return &HoldingLocks{
		locks: make(map[holdingKey]*holdingLock),
	}
}

// Lock blocks until the holding is free or ctx is done. The returned func releases it.
func (hl *HoldingLocks) Lock(ctx context.Context, userID int64, symbol string) (func(), error) {
	key := holdingKey{userID: userID, symbol: symbol}

	hl.mapMutex.Lock()
	lk := hl.locks[key]
	if lk == nil {
		lk = &holdingLock{sem: make(chan struct{}, 1)}
		hl.locks[key] = lk
	}
	lk.refs++
	hl.mapMutex.Unlock()

	select {
	case lk.sem <- struct{}{}:
		return func() {
			<-lk.sem
			hl.release(key, lk)
		}, nil
	case <-ctx.Done():
		hl.release(key, lk)
		return nil, ctx.Err()
	}
}

func (hl *HoldingLocks) release(key holdingKey, lk *holdingLock) {
	hl.mapMutex.Lock()
	defer hl.mapMutex.Unlock()

	lk.refs--
	if lk.refs == 0 {
		delete(hl.locks, key)
	}
}

// size reports how many holdings currently have waiters or owners.
func (hl *HoldingLocks) size() int {
	hl.mapMutex.Lock()
	defer hl.mapMutex.Unlock()
	return len(hl.locks)
}
