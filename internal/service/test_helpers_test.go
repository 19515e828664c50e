package service

import (
	"context"
	"sync"

	"github.com/finsend/transfer-service/internal/domain"
	"github.com/finsend/transfer-service/internal/repository"
	"github.com/google/uuid"
)

// fakeTransferRepo is an in-memory TransferRepository with the same
// compare-and-swap semantics as the Postgres implementation. Reads hand out
// copies so callers mutate their own snapshot, the way a row scan would.
type fakeTransferRepo struct {
	mu        sync.Mutex
	transfers map[uuid.UUID]*domain.Transfer
	events    []domain.Event

	// duplicateCreates makes the next N Create calls fail as if the
	// transaction_code unique index fired.
	duplicateCreates int
	// staleRead, when set, is returned by the next GetByID call in place of
	// the stored row. Used to replay the read half of a lost race.
	staleRead *domain.Transfer
}

func newFakeTransferRepo() *fakeTransferRepo {
	return &fakeTransferRepo{transfers: make(map[uuid.UUID]*domain.Transfer)}
}

func cloneTransfer(t *domain.Transfer) *domain.Transfer {
	c := *t
	if t.ConvertedAmount != nil {
		converted := *t.ConvertedAmount
		c.ConvertedAmount = &converted
	}
	if t.FXRate != nil {
		rate := *t.FXRate
		c.FXRate = &rate
	}
	if t.DeletedAt != nil {
		deleted := *t.DeletedAt
		c.DeletedAt = &deleted
	}
	return &c
}

func (f *fakeTransferRepo) GetByTransactionCode(ctx context.Context, code string) (*domain.Transfer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, t := range f.transfers {
		if t.TransactionCode == code && t.DeletedAt == nil {
			return cloneTransfer(t), nil
		}
	}
	return nil, domain.NewError(domain.KindTransferNotFound, "transfer not found")
}

func (f *fakeTransferRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transfer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.staleRead != nil {
		stale := f.staleRead
		f.staleRead = nil
		return cloneTransfer(stale), nil
	}

	t, ok := f.transfers[id]
	if !ok || t.DeletedAt != nil {
		return nil, domain.NewError(domain.KindTransferNotFound, "transfer not found")
	}
	return cloneTransfer(t), nil
}

func (f *fakeTransferRepo) Create(ctx context.Context, t *domain.Transfer, ev domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.duplicateCreates > 0 {
		f.duplicateCreates--
		return repository.ErrDuplicateTransactionCode
	}
	for _, existing := range f.transfers {
		if existing.TransactionCode == t.TransactionCode {
			return repository.ErrDuplicateTransactionCode
		}
	}

	f.transfers[t.ID] = cloneTransfer(t)
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeTransferRepo) UpdateStatus(ctx context.Context, t *domain.Transfer, expected domain.Status, ev domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.transfers[t.ID]
	if !ok || stored.DeletedAt != nil {
		return domain.NewError(domain.KindTransferNotFound, "transfer not found")
	}
	if stored.Status != expected {
		return domain.NewError(domain.KindConcurrentModification, "transfer status changed concurrently")
	}

	stored.Status = t.Status
	stored.UpdatedAt = t.UpdatedAt
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeTransferRepo) SoftDelete(ctx context.Context, t *domain.Transfer, ev domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.transfers[t.ID]
	if !ok || stored.DeletedAt != nil {
		return domain.NewError(domain.KindTransferNotFound, "transfer not found")
	}

	deleted := *t.DeletedAt
	stored.DeletedAt = &deleted
	stored.UpdatedAt = t.UpdatedAt
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeTransferRepo) storedStatus(id uuid.UUID) domain.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transfers[id].Status
}

func (f *fakeTransferRepo) eventKinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	kinds := make([]string, 0, len(f.events))
	for _, ev := range f.events {
		kinds = append(kinds, ev.Kind())
	}
	return kinds
}
