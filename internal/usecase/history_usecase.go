package usecase

import (
	"context"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// SyncHistoryUseCase отдаёт записи журнала синхронизации.
type SyncHistoryUseCase struct {
	historyRepo SyncHistoryRepository
}

func NewSyncHistoryUC(historyRepo SyncHistoryRepository) *SyncHistoryUseCase {
	return &SyncHistoryUseCase{historyRepo: historyRepo}
}

func (u *SyncHistoryUseCase) Get(ctx context.Context, id string) (*domain.SyncHistory, error) {
	const op = "SyncHistoryUseCase.Get"

	h, err := u.historyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return h, nil
}

// List возвращает последние записи журнала, новые первыми.
func (u *SyncHistoryUseCase) List(ctx context.Context, filter SyncHistoryFilter) ([]*domain.SyncHistory, error) {
	const op = "SyncHistoryUseCase.List"

	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultHistoryLimit
	case filter.Limit > maxHistoryLimit:
		filter.Limit = maxHistoryLimit
	}

	list, err := u.historyRepo.List(ctx, filter)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return list, nil
}
