package liftboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"auto_service_backend/internal/kvstore"
	"auto_service_backend/pkg/utils"
)

// Store persists the board and notifies subscribers of every change.
type Store interface {
	Load(ctx context.Context) (Board, error)
	Save(ctx context.Context, b Board) error
	// Update applies fn to the current board and saves the result atomically
	// with respect to other Update and Save calls on the same store.
	Update(ctx context.Context, fn func(Board) (Board, error)) (Board, error)
	// Subscribe returns a channel that receives the board after each change.
	// Only the latest board is kept for a slow reader.
	Subscribe() (<-chan Board, func())
}

// KVStore keeps the board as JSON under one key of a kvstore.Store.
type KVStore struct {
	kv  kvstore.Store
	key string

	mu     sync.Mutex
	subsMu sync.Mutex
	subs   map[int]chan Board
	nextID int
}

func NewKVStore(kv kvstore.Store) *KVStore {
	return &KVStore{kv: kv, key: StorageKey, subs: make(map[int]chan Board)}
}

// Load reads the board. A missing or unreadable value yields an empty board.
func (s *KVStore) Load(ctx context.Context) (Board, error) {
	return s.load(ctx), nil
}

func (s *KVStore) load(ctx context.Context) Board {
	var b Board
	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			utils.LogWarn("Lift board unreadable, using empty board", map[string]interface{}{"error": err.Error()})
		}
		return b
	}
	if err := json.Unmarshal(raw, &b); err != nil {
		utils.LogWarn("Lift board corrupt, using empty board", map[string]interface{}{"error": err.Error()})
		return Board{}
	}
	return b.normalize()
}

func (s *KVStore) Save(ctx context.Context, b Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.save(ctx, b); err != nil {
		return err
	}
	s.publish(b)
	return nil
}

func (s *KVStore) save(ctx context.Context, b Board) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encoding lift board: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("saving lift board: %w", err)
	}
	return nil
}

func (s *KVStore) Update(ctx context.Context, fn func(Board) (Board, error)) (Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.load(ctx)
	next, err := fn(current)
	if err != nil {
		return current, err
	}
	if err := s.save(ctx, next); err != nil {
		return current, err
	}
	s.publish(next)
	return next, nil
}

func (s *KVStore) Subscribe() (<-chan Board, func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan Board, 1)
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subsMu.Lock()
			defer s.subsMu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (s *KVStore) publish(b Board) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- b:
		default:
			// Replace the unread board with the newer one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- b:
			default:
			}
		}
	}
}
