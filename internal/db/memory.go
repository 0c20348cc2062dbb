package db

import (
	"context"
	"sort"
	"sync"

	"github.com/arzan03/PalavraDoDia/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryAccountRepository keeps accounts in process memory. It backs the
// "memory" storage driver and the tests.
type MemoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[primitive.ObjectID]models.Account
}

func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{accounts: make(map[primitive.ObjectID]models.Account)}
}

func (r *MemoryAccountRepository) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.accounts {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *MemoryAccountRepository) FindByID(_ context.Context, id string) (*models.Account, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[objID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &a, nil
}

func (r *MemoryAccountRepository) ExistsWithRole(_ context.Context, role string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.accounts {
		if a.Role == role {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryAccountRepository) Create(_ context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.accounts {
		if a.Email == account.Email {
			return models.ErrDuplicateEmail
		}
	}
	if account.ID.IsZero() {
		account.ID = primitive.NewObjectID()
	}
	r.accounts[account.ID] = *account
	return nil
}

// Delete removes an account. Only tests use it; accounts are never deleted
// through the API.
func (r *MemoryAccountRepository) Delete(id primitive.ObjectID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.accounts, id)
}

// MemoryEntryRepository keeps entries in process memory with the same
// filtering and ordering rules as the Mongo repository.
type MemoryEntryRepository struct {
	mu      sync.RWMutex
	entries map[primitive.ObjectID]models.Entry
	calls   int
}

func NewMemoryEntryRepository() *MemoryEntryRepository {
	return &MemoryEntryRepository{entries: make(map[primitive.ObjectID]models.Entry)}
}

func cloneEntry(e models.Entry) *models.Entry {
	if e.UpdatedBy != nil {
		by := *e.UpdatedBy
		e.UpdatedBy = &by
	}
	return &e
}

func (r *MemoryEntryRepository) Create(_ context.Context, entry *models.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++

	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	r.entries[entry.ID] = *cloneEntry(*entry)
	return nil
}

func (r *MemoryEntryRepository) FindByID(_ context.Context, id string) (*models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}
	e, ok := r.entries[objID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return cloneEntry(e), nil
}

func (r *MemoryEntryRepository) List(_ context.Context, f models.EntryFilter, p models.Pagination) ([]models.Entry, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++

	matched := make([]*models.Entry, 0, len(r.entries))
	for _, e := range r.entries {
		if f.Matches(&e) {
			matched = append(matched, cloneEntry(e))
		}
	}
	sort.Slice(matched, func(i, j int) bool { return models.Newer(matched[i], matched[j]) })

	total := int64(len(matched))
	items := []models.Entry{}
	for i := p.Skip(); i < total && len(items) < p.Limit; i++ {
		items = append(items, *matched[i])
	}
	return items, total, nil
}

func (r *MemoryEntryRepository) Update(_ context.Context, id string, patch models.EntryPatch) (*models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}
	e, ok := r.entries[objID]
	if !ok {
		return nil, models.ErrNotFound
	}
	e.Apply(patch)
	r.entries[objID] = e
	return cloneEntry(e), nil
}

func (r *MemoryEntryRepository) Delete(_ context.Context, id string) (*models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}
	e, ok := r.entries[objID]
	if !ok {
		return nil, models.ErrNotFound
	}
	delete(r.entries, objID)
	return cloneEntry(e), nil
}

// CallCount returns how many repository calls have been made.
func (r *MemoryEntryRepository) CallCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.calls
}
