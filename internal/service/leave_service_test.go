package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr-portal/internal/model"
	"hr-portal/pkg/apierror"
)

type memLeaves struct {
	rows map[int64]*model.LeaveRequest
	next int64
}

func (m *memLeaves) Create(_ context.Context, employeeID int64, leaveType model.LeaveType, startDate string, endDate string, reason *string) (model.LeaveRequest, error) {
	m.next++
	row := &model.LeaveRequest{
		ID: m.next, EmployeeID: employeeID, Type: leaveType,
		StartDate: startDate, EndDate: endDate, Reason: reason,
		Status: model.LeavePending, CreatedAt: time.Now(),
	}
	m.rows[m.next] = row
	return *row, nil
}

func (m *memLeaves) FindByID(_ context.Context, id int64) (model.LeaveRequest, error) {
	if row, ok := m.rows[id]; ok {
		return *row, nil
	}
	return model.LeaveRequest{}, model.ErrLeaveNotFound
}

func (m *memLeaves) ListByEmployee(_ context.Context, employeeID int64) ([]model.LeaveRequest, error) {
	out := make([]model.LeaveRequest, 0)
	for _, row := range m.rows {
		if row.EmployeeID == employeeID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (m *memLeaves) ListPending(_ context.Context) ([]model.LeaveRequest, error) {
	out := make([]model.LeaveRequest, 0)
	for _, row := range m.rows {
		if row.Status == model.LeavePending {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (m *memLeaves) Decide(_ context.Context, id int64, status model.LeaveStatus, deciderID string, note *string, at time.Time) (model.LeaveRequest, error) {
	row, ok := m.rows[id]
	if !ok || row.Status != model.LeavePending {
		return model.LeaveRequest{}, model.ErrLeaveAlreadyDecided
	}
	row.Status = status
	row.DecidedBy = &deciderID
	row.DecisionNote = note
	row.DecidedAt = &at
	return *row, nil
}

func newLeaveFixture() (*LeaveService, *memLeaves) {
	store := &memLeaves{rows: map[int64]*model.LeaveRequest{}}
	return NewLeaveService(store, NewAuditService(&fakeAuditStore{})), store
}

func TestLeaveSubmitAndDecide(t *testing.T) {
	svc, _ := newLeaveFixture()
	ctx := context.Background()

	leave, err := svc.Submit(ctx, "user-1", 1, model.LeaveSubmitRequest{
		Type: "ANNUAL", StartDate: "2026-09-01", EndDate: "2026-09-05",
	})
	require.NoError(t, err)
	assert.Equal(t, model.LeavePending, leave.Status)

	pending, err := svc.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	note := "enjoy"
	decided, err := svc.Decide(ctx, "manager-1", leave.ID, model.LeaveDecideRequest{Approve: true, Note: &note})
	require.NoError(t, err)
	assert.Equal(t, model.LeaveApproved, decided.Status)
	require.NotNil(t, decided.DecidedBy)
	assert.Equal(t, "manager-1", *decided.DecidedBy)

	pending, err = svc.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestLeaveDecideTwiceConflicts(t *testing.T) {
	svc, _ := newLeaveFixture()
	ctx := context.Background()

	leave, err := svc.Submit(ctx, "user-1", 1, model.LeaveSubmitRequest{
		Type: "SICK", StartDate: "2026-09-01", EndDate: "2026-09-01",
	})
	require.NoError(t, err)

	_, err = svc.Decide(ctx, "manager-1", leave.ID, model.LeaveDecideRequest{Approve: false})
	require.NoError(t, err)

	_, err = svc.Decide(ctx, "manager-1", leave.ID, model.LeaveDecideRequest{Approve: true})
	assert.ErrorIs(t, err, model.ErrLeaveAlreadyDecided)
}

func TestLeaveDecideMissingReportsNotFound(t *testing.T) {
	svc, _ := newLeaveFixture()

	_, err := svc.Decide(context.Background(), "manager-1", 404, model.LeaveDecideRequest{Approve: true})
	assert.ErrorIs(t, err, model.ErrLeaveNotFound)
}

func TestLeaveSubmitValidation(t *testing.T) {
	svc, _ := newLeaveFixture()
	ctx := context.Background()

	tests := []struct {
		name string
		req  model.LeaveSubmitRequest
	}{
		{"unknown type", model.LeaveSubmitRequest{Type: "SABBATICAL", StartDate: "2026-09-01", EndDate: "2026-09-02"}},
		{"bad start date", model.LeaveSubmitRequest{Type: "ANNUAL", StartDate: "01-09-2026", EndDate: "2026-09-02"}},
		{"bad end date", model.LeaveSubmitRequest{Type: "ANNUAL", StartDate: "2026-09-01", EndDate: "soon"}},
		{"end before start", model.LeaveSubmitRequest{Type: "ANNUAL", StartDate: "2026-09-05", EndDate: "2026-09-01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, "user-1", 1, tt.req)
			var apiErr *apierror.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, 400, apiErr.HTTPStatus)
		})
	}
}

func TestLeaveListMineScopedToEmployee(t *testing.T) {
	svc, _ := newLeaveFixture()
	ctx := context.Background()

	_, err := svc.Submit(ctx, "user-1", 1, model.LeaveSubmitRequest{Type: "ANNUAL", StartDate: "2026-09-01", EndDate: "2026-09-02"})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "user-2", 2, model.LeaveSubmitRequest{Type: "SICK", StartDate: "2026-09-03", EndDate: "2026-09-03"})
	require.NoError(t, err)

	mine, err := svc.ListMine(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, int64(1), mine[0].EmployeeID)
}
