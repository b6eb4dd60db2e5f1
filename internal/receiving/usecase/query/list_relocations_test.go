package query

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wareline/warehouse-receiving/internal/receiving/domain"
	whdomain "github.com/wareline/warehouse-receiving/internal/warehouse/domain"
)

// relocationStore only serves relocation tasks; every other accessor panics
// through the embedded nil Store if touched.
type relocationStore struct {
	domain.Store
	tasks *fakeRelocationTasks
}

func (s relocationStore) RelocationTasks() whdomain.RelocationTaskRepository { return s.tasks }

type fakeRelocationTasks struct {
	tasks     []whdomain.RelocationTask
	gotLimit  int
	gotOffset int
}

func (r *fakeRelocationTasks) Create(_ context.Context, task *whdomain.RelocationTask) error {
	r.tasks = append(r.tasks, *task)
	return nil
}

func (r *fakeRelocationTasks) FindPending(_ context.Context, limit, offset int) ([]whdomain.RelocationTask, error) {
	r.gotLimit = limit
	r.gotOffset = offset
	if offset >= len(r.tasks) {
		return nil, nil
	}
	out := r.tasks[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func pendingTask(id uint) whdomain.RelocationTask {
	return whdomain.RelocationTask{
		ID:             id,
		ProductID:      1,
		FromLocationID: 30,
		Quantity:       decimal.NewFromInt(5),
		Status:         whdomain.RelocationStatusPending,
	}
}

func TestListRelocationTasksPages(t *testing.T) {
	repo := &fakeRelocationTasks{tasks: []whdomain.RelocationTask{
		pendingTask(1), pendingTask(2), pendingTask(3),
	}}
	handler := NewListRelocationTasksHandler(relocationStore{tasks: repo})

	tasks, err := handler.Handle(context.Background(), 2, 1)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, uint(2), tasks[0].ID)
	assert.Equal(t, uint(3), tasks[1].ID)
	assert.Equal(t, 2, repo.gotLimit)
	assert.Equal(t, 1, repo.gotOffset)
}

func TestListRelocationTasksClampsPaging(t *testing.T) {
	cases := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{"zero limit falls back", 0, 0, 50, 0},
		{"negative paging falls back", -5, -3, 50, 0},
		{"oversized limit falls back", 1000, 0, 50, 0},
		{"in-range paging passes through", 25, 10, 25, 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeRelocationTasks{}
			handler := NewListRelocationTasksHandler(relocationStore{tasks: repo})

			_, err := handler.Handle(context.Background(), tc.limit, tc.offset)
			require.NoError(t, err)
			assert.Equal(t, tc.wantLimit, repo.gotLimit)
			assert.Equal(t, tc.wantOffset, repo.gotOffset)
		})
	}
}
