// Package worker mirrors committed expense changes into a spreadsheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"spendlog/internal/amqp"
	"spendlog/internal/core"
	applog "spendlog/internal/log"
	"spendlog/internal/sheets"
)

// ExpenseLister is the read side of the record store used for reconciliation.
type ExpenseLister interface {
	ListExpenses(ctx context.Context, filter core.ExpenseFilter) ([]core.Expense, error)
}

// SyncWorker applies expense events to the mirror.
type SyncWorker struct {
	mirror  sheets.ExpenseMirror
	records ExpenseLister
	logger  *slog.Logger
}

// NewSyncWorker builds a worker. records may be nil, which disables Reconcile.
func NewSyncWorker(mirror sheets.ExpenseMirror, records ExpenseLister, logger *slog.Logger) *SyncWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncWorker{
		mirror:  mirror,
		records: records,
		logger:  logger.With(applog.FieldComponent, applog.ComponentWorker),
	}
}

// HandleEvent processes a single expense event from AMQP. A returned error
// asks the broker to redeliver.
func (w *SyncWorker) HandleEvent(ctx context.Context, ev *amqp.ExpenseEvent) error {
	w.logger.InfoContext(ctx, "Processing expense event", "type", ev.Type, applog.FieldExpenseID, ev.ID)

	switch ev.Type {
	case amqp.EventExpenseCreated:
		ref, err := w.mirror.Append(ctx, ev.Expense())
		if err != nil {
			return fmt.Errorf("append expense %s to mirror: %w", ev.ID, err)
		}
		w.logger.InfoContext(ctx, "Successfully synced expense",
			applog.FieldExpenseID, ev.ID,
			applog.FieldSheetsRef, ref,
			applog.FieldAmountCents, ev.AmountCents)
	case amqp.EventExpenseDeleted:
		if err := w.mirror.Delete(ctx, ev.ID); err != nil {
			return fmt.Errorf("delete expense %s from mirror: %w", ev.ID, err)
		}
		w.logger.InfoContext(ctx, "Successfully deleted expense", applog.FieldExpenseID, ev.ID)
	default:
		w.logger.WarnContext(ctx, "Ignoring unknown event type", "type", ev.Type, applog.FieldExpenseID, ev.ID)
	}
	return nil
}

// Reconcile appends every stored expense to the mirror. Appends are
// idempotent, so this recovers events missed while the worker was down.
// Per-expense failures are logged and counted, and do not stop the pass.
func (w *SyncWorker) Reconcile(ctx context.Context) (synced, failed int, err error) {
	if w.records == nil {
		return 0, 0, nil
	}
	expenses, err := w.records.ListExpenses(ctx, core.ExpenseFilter{})
	if err != nil {
		return 0, 0, fmt.Errorf("list expenses for reconciliation: %w", err)
	}

	// Oldest first so a fresh sheet reads chronologically.
	for i := len(expenses) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return synced, failed, err
		}
		e := expenses[i]
		if _, err := w.mirror.Append(ctx, e); err != nil {
			w.logger.ErrorContext(ctx, "Failed to sync expense during reconciliation",
				applog.FieldExpenseID, e.ID, applog.FieldError, err)
			failed++
			continue
		}
		synced++
	}

	w.logger.InfoContext(ctx, "Reconciliation completed",
		"total", len(expenses), "synced", synced, "errors", failed)
	return synced, failed, nil
}
