package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wareline/warehouse-receiving/internal/receiving/domain"
)

func seedScanTask(expected int) (*memStore, uint) {
	store := newMemStore()
	task := &domain.BarcodeCaptureTask{ExpectedQuantity: expected, Status: domain.BarcodeTaskPending}
	store.tasks[1] = task
	task.ID = 1
	store.nextID = 1
	return store, task.ID
}

func TestRecordScanProgress(t *testing.T) {
	store, taskID := seedScanTask(10)
	handler := NewRecordScanHandler(memUOW{store})

	task, err := handler.Handle(context.Background(), RecordScanCommand{TaskID: taskID, ScannedQuantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, task.ScannedQuantity)
	assert.Equal(t, domain.BarcodeTaskPending, task.Status)

	task, err = handler.Handle(context.Background(), RecordScanCommand{TaskID: taskID, ScannedQuantity: 10})
	require.NoError(t, err)
	assert.Equal(t, domain.BarcodeTaskCompleted, task.Status)
}

func TestRecordScanExplicitCompletionWinsOverCount(t *testing.T) {
	store, taskID := seedScanTask(10)

	task, err := NewRecordScanHandler(memUOW{store}).Handle(context.Background(), RecordScanCommand{
		TaskID:          taskID,
		ScannedQuantity: 7,
		Completed:       true,
	})
	require.NoError(t, err)

	assert.Equal(t, 7, task.ScannedQuantity)
	assert.Equal(t, domain.BarcodeTaskCompleted, task.Status)
}

func TestRecordScanValidation(t *testing.T) {
	store, taskID := seedScanTask(10)
	handler := NewRecordScanHandler(memUOW{store})

	var validation *domain.ValidationError

	_, err := handler.Handle(context.Background(), RecordScanCommand{ScannedQuantity: 1})
	require.ErrorAs(t, err, &validation)

	_, err = handler.Handle(context.Background(), RecordScanCommand{TaskID: taskID, ScannedQuantity: -1})
	require.ErrorAs(t, err, &validation)

	var notFound *domain.NotFoundError
	_, err = handler.Handle(context.Background(), RecordScanCommand{TaskID: 99, ScannedQuantity: 1})
	require.ErrorAs(t, err, &notFound)
}
