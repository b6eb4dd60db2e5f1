package command

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/wareline/warehouse-receiving/internal/receiving/domain"
)

// RecordScanCommand reports scanning progress for a barcode capture task.
// ScannedQuantity is the absolute count so far, not an increment.
type RecordScanCommand struct {
	TaskID          uint
	ScannedQuantity int
	Completed       bool
}

// RecordScanHandler handles the record scan command.
type RecordScanHandler struct {
	uow domain.UnitOfWork
}

// NewRecordScanHandler creates a new record scan handler.
func NewRecordScanHandler(uow domain.UnitOfWork) *RecordScanHandler {
	return &RecordScanHandler{uow: uow}
}

// Handle updates the task. The task completes when scanning reaches the
// expected count or when the scanner signals completion explicitly.
func (h *RecordScanHandler) Handle(ctx context.Context, cmd RecordScanCommand) (*domain.BarcodeCaptureTask, error) {
	if cmd.TaskID == 0 {
		return nil, domain.NewValidationError("task_id", "is required")
	}
	if cmd.ScannedQuantity < 0 {
		return nil, domain.NewValidationError("scanned_quantity", "must not be negative")
	}

	var task *domain.BarcodeCaptureTask

	err := h.uow.Execute(ctx, func(ctx context.Context, s domain.Store) error {
		t, err := s.BarcodeTasks().FindByID(ctx, cmd.TaskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &domain.NotFoundError{Entity: "barcode task", ID: cmd.TaskID}
			}
			return fmt.Errorf("failed to load barcode task: %w", err)
		}

		t.ScannedQuantity = cmd.ScannedQuantity
		if cmd.Completed {
			t.CompletedManually = true
		}
		t.SyncStatus()

		if err := s.BarcodeTasks().Update(ctx, t); err != nil {
			return fmt.Errorf("failed to update barcode task: %w", err)
		}
		task = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}
