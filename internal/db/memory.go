package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/atharvakonge/paper-trader/internal/apperrs"
	"github.com/atharvakonge/paper-trader/internal/models"
)

// MemoryStore implements Store with in-memory maps. Used for tests and for
// running without PostgreSQL; nothing survives a restart.
type MemoryStore struct {
	mu        sync.RWMutex
	users     map[int64]models.User
	positions map[holdingKey]models.Position
	orders    []models.Order

	nextUserID  int64
	nextOrderID int64

	locks *HoldingLocks
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[int64]models.User),
		positions: make(map[holdingKey]models.Position),
		locks:     NewHoldingLocks(),
	}
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	tx := &memTx{
		store:     s,
		held:      make(map[holdingKey]func()),
		positions: make(map[holdingKey]models.Position),
	}
	defer tx.releaseAll()

	if err := fn(tx); err != nil {
		return err
	}
	// a cancelled request must not commit, same as the database would refuse
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	for k, p := range tx.positions {
		s.positions[k] = p
	}
	s.orders = append(s.orders, tx.orders...)
	s.mu.Unlock()

	return nil
}

type memTx struct {
	store     *MemoryStore
	held      map[holdingKey]func()
	positions map[holdingKey]models.Position
	orders    []models.Order
}

func (t *memTx) LockPosition(ctx context.Context, userID int64, symbol string) (models.Position, error) {
	key := holdingKey{userID: userID, symbol: symbol}
	if _, ok := t.held[key]; !ok {
		unlock, err := t.store.locks.Lock(ctx, userID, symbol)
		if err != nil {
			return models.Position{}, err
		}
		t.held[key] = unlock
	}

	if p, ok := t.positions[key]; ok {
		return p, nil
	}

	t.store.mu.RLock()
	p, ok := t.store.positions[key]
	t.store.mu.RUnlock()
	if !ok {
		p = models.Position{UserID: userID, Symbol: symbol}
	}
	return p, nil
}

func (t *memTx) UpsertPosition(_ context.Context, p models.Position) error {
	t.positions[holdingKey{userID: p.UserID, symbol: p.Symbol}] = p
	return nil
}

func (t *memTx) InsertOrder(_ context.Context, o *models.Order) error {
	t.store.mu.Lock()
	t.store.nextOrderID++
	o.ID = t.store.nextOrderID
	t.store.mu.Unlock()

	t.orders = append(t.orders, *o)
	return nil
}

func (t *memTx) releaseAll() {
	for _, unlock := range t.held {
		unlock()
	}
}

func (s *MemoryStore) ListPositions(_ context.Context, userID int64) ([]models.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	positions := make([]models.Position, 0)
	for k, p := range s.positions {
		if k.userID == userID {
			positions = append(positions, p)
		}
	}
	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Symbol < positions[j].Symbol
	})
	return positions, nil
}

func (s *MemoryStore) ListOrders(_ context.Context, userID int64, limit int) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]models.Order, 0)
	for _, o := range s.orders {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt.Time) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt.Time)
		}
		return orders[i].ID > orders[j].ID
	})
	if len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

func (s *MemoryStore) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return apperrs.ErrEmailTaken
		}
	}
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return apperrs.ErrUsernameTaken
		}
	}

	s.nextUserID++
	u.ID = s.nextUserID
	u.CreatedAt = time.Now().UTC()
	s.users[u.ID] = *u
	return nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, apperrs.ErrNotFound
}

func (s *MemoryStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, apperrs.ErrNotFound
	}
	return &u, nil
}
