package wallet

import (
	"context"
	"sync"
)

// memoryRepository keeps wallets in insertion order and mirrors the unique
// constraints of the Postgres schema.
type memoryRepository struct {
	mu      sync.RWMutex
	storage []Wallet
}

// NewMemoryRepository constructs an in-memory repository for tests and local runs.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) Insert(_ context.Context, wallet Wallet) (Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.storage {
		switch {
		case w.AccountNumber == wallet.AccountNumber:
			return Wallet{}, ErrAccountNumberTaken
		case w.Name == wallet.Name:
			return Wallet{}, ErrNameTaken
		}
	}
	r.storage = append(r.storage, wallet)
	return wallet, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.storage {
		if w.ID == id {
			return w, nil
		}
	}
	return Wallet{}, ErrNotFound
}

func (r *memoryRepository) DeleteByID(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, w := range r.storage {
		if w.ID == id {
			r.storage = append(r.storage[:i], r.storage[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (r *memoryRepository) ExistsByAccountNumber(_ context.Context, accountNumber string) (bool, error) {
	return r.any(func(w Wallet) bool { return w.AccountNumber == accountNumber }), nil
}

func (r *memoryRepository) ExistsByName(_ context.Context, name string) (bool, error) {
	return r.any(func(w Wallet) bool { return w.Name == name }), nil
}

func (r *memoryRepository) CountByOwner(_ context.Context, owner string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, w := range r.storage {
		if w.Owner == owner {
			n++
		}
	}
	return n, nil
}

func (r *memoryRepository) CountAll(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.storage), nil
}

func (r *memoryRepository) ListPage(_ context.Context, offset, limit int) ([]Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return window(r.storage, offset, limit), nil
}

func (r *memoryRepository) ListPageByOwner(_ context.Context, owner string, offset, limit int) ([]Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var owned []Wallet
	for _, w := range r.storage {
		if w.Owner == owner {
			owned = append(owned, w)
		}
	}
	return window(owned, offset, limit), nil
}

func (r *memoryRepository) any(match func(Wallet) bool) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.storage {
		if match(w) {
			return true
		}
	}
	return false
}

func window(src []Wallet, offset, limit int) []Wallet {
	if offset < 0 || offset >= len(src) || limit <= 0 {
		return []Wallet{}
	}
	end := offset + limit
	if end > len(src) || end < offset {
		end = len(src)
	}
	out := make([]Wallet, end-offset)
	copy(out, src[offset:end])
	return out
}
