package service

import (
	"context"
	"errors"
	"strings"

	"github.com/finsend/transfer-service/internal/domain"
	"github.com/finsend/transfer-service/internal/fx"
	"github.com/finsend/transfer-service/internal/observability"
	"github.com/finsend/transfer-service/internal/repository"
	"github.com/finsend/transfer-service/internal/result"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// codeRetryLimit bounds regeneration after a transaction_code collision.
const codeRetryLimit = 3

// TransferService hosts the transfer command and query handlers. Handlers
// are stateless and independently invocable; all collaborators arrive via
// the constructor.
type TransferService struct {
	repo      repository.TransferRepository
	converter fx.Converter
	logger    *zap.Logger
}

func NewTransferService(repo repository.TransferRepository, converter fx.Converter, logger *zap.Logger) *TransferService {
	return &TransferService{
		repo:      repo,
		converter: converter,
		logger:    logger,
	}
}

// CreateTransferCmd is the input to CreateTransfer. TargetCurrency is
// optional; when set and different from Currency the amount is converted at
// creation time.
type CreateTransferCmd struct {
	SenderCustomerID   uuid.UUID
	ReceiverCustomerID uuid.UUID
	AmountMicros       int64
	Currency           string
	TargetCurrency     string
}

// CreateTransfer validates the creation invariants, applies currency
// conversion when requested, and persists the transfer together with its
// TransferCreated event in one transaction. The transfer starts PENDING.
func (s *TransferService) CreateTransfer(ctx context.Context, cmd CreateTransferCmd) result.Result[TransferDTO] {
	amount := domain.NewMoney(cmd.AmountMicros, strings.ToUpper(strings.TrimSpace(cmd.Currency)))

	transfer, err := domain.NewTransfer(cmd.SenderCustomerID, cmd.ReceiverCustomerID, amount)
	if err != nil {
		return result.FailErr[TransferDTO](err)
	}

	target := strings.ToUpper(strings.TrimSpace(cmd.TargetCurrency))
	if target != "" && target != amount.Currency {
		converted, rate, err := s.converter.Convert(ctx, amount, target)
		if err != nil {
			observability.IncrementConversionFailure(amount.Currency, target)
			return result.FailErr[TransferDTO](err)
		}
		if err := transfer.ApplyConversion(converted, rate); err != nil {
			return result.FailErr[TransferDTO](err)
		}
	}

	for attempt := 0; ; attempt++ {
		err = s.repo.Create(ctx, transfer, domain.NewTransferCreated(transfer))
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrDuplicateTransactionCode) && attempt < codeRetryLimit {
			transfer.TransactionCode = domain.NewTransactionCode()
			continue
		}
		if errors.Is(err, repository.ErrDuplicateTransactionCode) {
			return result.Fail[TransferDTO](domain.NewError(domain.KindStorageUnavailable,
				"could not allocate a unique transaction code"))
		}
		return result.FailErr[TransferDTO](err)
	}

	observability.IncrementTransferCreated(transfer.Amount.Currency)
	s.logger.Info("transfer created",
		zap.String("transfer_id", transfer.ID.String()),
		zap.String("transaction_code", transfer.TransactionCode),
		zap.String("amount", transfer.Amount.String()),
	)
	return result.Ok(ToTransferDTO(transfer))
}

// GetTransferByCode is the idempotent read path: a caller who lost a create
// response recovers the result here without risk of double-creating.
// Read-only and side-effect free.
func (s *TransferService) GetTransferByCode(ctx context.Context, code string) result.Result[TransferDTO] {
	code = strings.TrimSpace(code)
	if code == "" {
		return result.Fail[TransferDTO](domain.NewError(domain.KindTransferNotFound,
			"transaction code is required"))
	}

	transfer, err := s.repo.GetByTransactionCode(ctx, code)
	if err != nil {
		return result.FailErr[TransferDTO](err)
	}
	return result.Ok(ToTransferDTO(transfer))
}

// GetTransferByID looks a transfer up by its identifier.
func (s *TransferService) GetTransferByID(ctx context.Context, id uuid.UUID) result.Result[TransferDTO] {
	transfer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return result.FailErr[TransferDTO](err)
	}
	return result.Ok(ToTransferDTO(transfer))
}

// UpdateTransferStatus moves a transfer along the transition graph. The
// write is a compare-and-swap against the status observed here, so of two
// racing transitions exactly one wins; the loser gets
// ConcurrentModification and must re-read and retry.
func (s *TransferService) UpdateTransferStatus(ctx context.Context, id uuid.UUID, next domain.Status) result.Result[TransferDTO] {
	transfer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return result.FailErr[TransferDTO](err)
	}

	expected := transfer.Status
	ev, err := transfer.TransitionTo(next)
	if err != nil {
		return result.FailErr[TransferDTO](err)
	}

	if err := s.repo.UpdateStatus(ctx, transfer, expected, ev); err != nil {
		return result.FailErr[TransferDTO](err)
	}

	observability.IncrementStatusTransition(string(expected), string(next))
	s.logger.Info("transfer status changed",
		zap.String("transfer_id", transfer.ID.String()),
		zap.String("old_status", string(expected)),
		zap.String("new_status", string(next)),
	)
	return result.Ok(ToTransferDTO(transfer))
}

// DeleteTransfer tombstones a transfer. Rows are retained for audit; a
// deleted transfer stops resolving by id or code.
func (s *TransferService) DeleteTransfer(ctx context.Context, id uuid.UUID) result.Result[TransferDTO] {
	transfer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return result.FailErr[TransferDTO](err)
	}

	ev, err := transfer.MarkDeleted()
	if err != nil {
		return result.FailErr[TransferDTO](err)
	}

	if err := s.repo.SoftDelete(ctx, transfer, ev); err != nil {
		return result.FailErr[TransferDTO](err)
	}

	s.logger.Info("transfer deleted", zap.String("transfer_id", transfer.ID.String()))
	return result.Ok(ToTransferDTO(transfer))
}
