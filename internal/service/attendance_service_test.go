package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr-portal/internal/model"
	"hr-portal/pkg/apierror"
)

type memAttendance struct {
	rows map[string]*model.Attendance
	next int64
}

func (m *memAttendance) key(employeeID int64, date string) string {
	return fmt.Sprintf("%s/%d", date, employeeID)
}

func (m *memAttendance) FindForDate(_ context.Context, employeeID int64, date string) (model.Attendance, bool, error) {
	if row, ok := m.rows[m.key(employeeID, date)]; ok {
		return *row, true, nil
	}
	return model.Attendance{}, false, nil
}

func (m *memAttendance) CheckIn(_ context.Context, employeeID int64, date string, at time.Time, lat *float64, lng *float64, note *string) (model.Attendance, error) {
	m.next++
	row := &model.Attendance{
		ID: m.next, EmployeeID: employeeID, AttendanceDate: date,
		CheckInAt: &at, CheckInLat: lat, CheckInLng: lng, Note: note,
	}
	m.rows[m.key(employeeID, date)] = row
	return *row, nil
}

func (m *memAttendance) CheckOut(_ context.Context, employeeID int64, date string, at time.Time, lat *float64, lng *float64) (model.Attendance, error) {
	row, ok := m.rows[m.key(employeeID, date)]
	if !ok {
		return model.Attendance{}, model.ErrNotCheckedIn
	}
	row.CheckOutAt = &at
	row.CheckOutLat = lat
	row.CheckOutLng = lng
	return *row, nil
}

func newAttendanceFixture() (*AttendanceService, *memAttendance) {
	store := &memAttendance{rows: map[string]*model.Attendance{}}
	svc := NewAttendanceService(store, NewAuditService(&fakeAuditStore{}))
	return svc, store
}

func testIdentity() model.Identity {
	return model.Identity{
		Kind:   model.IdentityCustom,
		Claims: &model.SessionClaims{UserID: "user-1", JTI: "jti-1"},
	}
}

func TestAttendanceCheckInThenOut(t *testing.T) {
	svc, _ := newAttendanceFixture()
	ctx := context.Background()

	row, err := svc.Today(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, row)

	lat, lng := -6.2, 106.8
	logged, err := svc.Log(ctx, testIdentity(), 1, model.AttendanceLogRequest{Mode: "in", Lat: &lat, Lng: &lng})
	require.NoError(t, err)
	require.NotNil(t, logged.CheckInAt)
	assert.Nil(t, logged.CheckOutAt)

	logged, err = svc.Log(ctx, testIdentity(), 1, model.AttendanceLogRequest{Mode: "out"})
	require.NoError(t, err)
	assert.NotNil(t, logged.CheckOutAt)

	row, err = svc.Today(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.NotNil(t, row.CheckOutAt)
}

func TestAttendanceDoubleCheckInConflicts(t *testing.T) {
	svc, _ := newAttendanceFixture()
	ctx := context.Background()

	_, err := svc.Log(ctx, testIdentity(), 1, model.AttendanceLogRequest{Mode: "in"})
	require.NoError(t, err)

	_, err = svc.Log(ctx, testIdentity(), 1, model.AttendanceLogRequest{Mode: "in"})
	assert.ErrorIs(t, err, model.ErrAlreadyCheckedIn)
}

func TestAttendanceCheckOutOrdering(t *testing.T) {
	svc, _ := newAttendanceFixture()
	ctx := context.Background()

	_, err := svc.Log(ctx, testIdentity(), 1, model.AttendanceLogRequest{Mode: "out"})
	assert.ErrorIs(t, err, model.ErrNotCheckedIn)

	_, err = svc.Log(ctx, testIdentity(), 1, model.AttendanceLogRequest{Mode: "in"})
	require.NoError(t, err)
	_, err = svc.Log(ctx, testIdentity(), 1, model.AttendanceLogRequest{Mode: "out"})
	require.NoError(t, err)

	_, err = svc.Log(ctx, testIdentity(), 1, model.AttendanceLogRequest{Mode: "out"})
	assert.ErrorIs(t, err, model.ErrAlreadyCheckedOut)
}

func TestAttendanceRejectsUnknownMode(t *testing.T) {
	svc, _ := newAttendanceFixture()

	_, err := svc.Log(context.Background(), testIdentity(), 1, model.AttendanceLogRequest{Mode: "sideways"})
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.HTTPStatus)
}

func TestAttendanceIsPerEmployee(t *testing.T) {
	svc, _ := newAttendanceFixture()
	ctx := context.Background()

	_, err := svc.Log(ctx, testIdentity(), 1, model.AttendanceLogRequest{Mode: "in"})
	require.NoError(t, err)

	row, err := svc.Today(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, row)
}
