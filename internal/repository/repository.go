package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/finsend/transfer-service/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrDuplicateTransactionCode signals a unique-index collision on
// transaction_code. The caller regenerates the code and retries.
var ErrDuplicateTransactionCode = errors.New("duplicate transaction code")

// TransferRepository is the persistence contract consumed by the transfer
// handlers. Mutations record the corresponding domain event in the outbox
// within the same transaction, so an event is never recorded for a transfer
// that failed to persist.
type TransferRepository interface {
	GetByTransactionCode(ctx context.Context, code string) (*domain.Transfer, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transfer, error)
	Create(ctx context.Context, t *domain.Transfer, ev domain.Event) error
	// UpdateStatus is a compare-and-swap against the previously observed
	// status. It fails with ConcurrentModification when the stored status no
	// longer matches expected.
	UpdateStatus(ctx context.Context, t *domain.Transfer, expected domain.Status, ev domain.Event) error
	SoftDelete(ctx context.Context, t *domain.Transfer, ev domain.Event) error
}

// PostgresRepository implements TransferRepository on a pgx connection pool.
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const transferColumns = `id, transaction_code, sender_customer_id, receiver_customer_id,
	amount_micros, currency, converted_micros, converted_currency, fx_rate,
	status, created_at, updated_at, deleted_at`

func (r *PostgresRepository) GetByTransactionCode(ctx context.Context, code string) (*domain.Transfer, error) {
	query := fmt.Sprintf(`SELECT %s FROM transfers WHERE transaction_code = $1 AND deleted_at IS NULL`, transferColumns)
	return r.getOne(ctx, query, code)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transfer, error) {
	query := fmt.Sprintf(`SELECT %s FROM transfers WHERE id = $1 AND deleted_at IS NULL`, transferColumns)
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*domain.Transfer, error) {
	row := r.db.QueryRow(ctx, query, arg)
	t, err := scanTransfer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewError(domain.KindTransferNotFound, "transfer not found")
		}
		return nil, domain.WrapError(domain.KindStorageUnavailable, "load transfer", err)
	}
	return t, nil
}

func (r *PostgresRepository) Create(ctx context.Context, t *domain.Transfer, ev domain.Event) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		var convertedMicros *int64
		var convertedCurrency, fxRate *string
		if t.ConvertedAmount != nil {
			convertedMicros = &t.ConvertedAmount.Amount
			convertedCurrency = &t.ConvertedAmount.Currency
		}
		if t.FXRate != nil {
			s := t.FXRate.String()
			fxRate = &s
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO transfers (id, transaction_code, sender_customer_id, receiver_customer_id,
				amount_micros, currency, converted_micros, converted_currency, fx_rate,
				status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			t.ID, t.TransactionCode, t.SenderCustomerID, t.ReceiverCustomerID,
			t.Amount.Amount, t.Amount.Currency, convertedMicros, convertedCurrency, fxRate,
			t.Status, t.CreatedAt, t.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err, "transaction_code") {
				return ErrDuplicateTransactionCode
			}
			return domain.WrapError(domain.KindStorageUnavailable, "insert transfer", err)
		}

		return insertOutboxEvent(ctx, tx, ev)
	})
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, t *domain.Transfer, expected domain.Status, ev domain.Event) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE transfers SET status = $1, updated_at = $2
			WHERE id = $3 AND status = $4 AND deleted_at IS NULL`,
			t.Status, t.UpdatedAt, t.ID, expected)
		if err != nil {
			return domain.WrapError(domain.KindStorageUnavailable, "update transfer status", err)
		}
		if tag.RowsAffected() == 0 {
			return r.casFailure(ctx, tx, t.ID)
		}

		return insertOutboxEvent(ctx, tx, ev)
	})
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, t *domain.Transfer, ev domain.Event) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE transfers SET deleted_at = $1, updated_at = $2
			WHERE id = $3 AND deleted_at IS NULL`,
			t.DeletedAt, t.UpdatedAt, t.ID)
		if err != nil {
			return domain.WrapError(domain.KindStorageUnavailable, "delete transfer", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.NewError(domain.KindTransferNotFound, "transfer not found")
		}

		return insertOutboxEvent(ctx, tx, ev)
	})
}

// casFailure distinguishes a lost race from a missing row after a zero-row
// conditional write.
func (r *PostgresRepository) casFailure(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM transfers WHERE id = $1 AND deleted_at IS NULL)`, id).Scan(&exists)
	if err != nil {
		return domain.WrapError(domain.KindStorageUnavailable, "check transfer existence", err)
	}
	if exists {
		return domain.NewError(domain.KindConcurrentModification, "transfer status changed concurrently")
	}
	return domain.NewError(domain.KindTransferNotFound, "transfer not found")
}

func (r *PostgresRepository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.WrapError(domain.KindStorageUnavailable, "begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.WrapError(domain.KindStorageUnavailable, "commit transaction", err)
	}
	return nil
}

func insertOutboxEvent(ctx context.Context, tx pgx.Tx, ev domain.Event) error {
	if ev == nil {
		return nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO transfer_events (id, transfer_id, kind, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), ev.AggregateID(), ev.Kind(), payload, ev.OccurredAt())
	if err != nil {
		return domain.WrapError(domain.KindStorageUnavailable, "insert outbox event", err)
	}
	return nil
}

func isUniqueViolation(err error, constraintFragment string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != "23505" {
		return false
	}
	return constraintFragment == "" ||
		strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintFragment))
}

func scanTransfer(row pgx.Row) (*domain.Transfer, error) {
	var (
		t                 domain.Transfer
		amountMicros      int64
		currency          string
		convertedMicros   *int64
		convertedCurrency *string
		fxRate            *string
		status            string
	)
	err := row.Scan(&t.ID, &t.TransactionCode, &t.SenderCustomerID, &t.ReceiverCustomerID,
		&amountMicros, &currency, &convertedMicros, &convertedCurrency, &fxRate,
		&status, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt)
	if err != nil {
		return nil, err
	}

	t.Amount = domain.NewMoney(amountMicros, currency)
	t.Status = domain.Status(status)
	if convertedMicros != nil && convertedCurrency != nil {
		converted := domain.NewMoney(*convertedMicros, *convertedCurrency)
		t.ConvertedAmount = &converted
	}
	if fxRate != nil {
		rate, err := decimal.NewFromString(*fxRate)
		if err != nil {
			return nil, fmt.Errorf("corrupted fx_rate %q: %w", *fxRate, err)
		}
		t.FXRate = &rate
	}
	return &t, nil
}
