package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hr-portal/internal/model"
)

type AttendanceRepository struct {
	pool *pgxpool.Pool
}

func NewAttendanceRepository(pool *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

const attendanceColumns = `id, employee_id, attendance_date::text, check_in_at, check_out_at,
	check_in_lat, check_in_lng, check_out_lat, check_out_lng, note`

func scanAttendance(row pgx.Row) (model.Attendance, error) {
	var a model.Attendance
	err := row.Scan(&a.ID, &a.EmployeeID, &a.AttendanceDate, &a.CheckInAt, &a.CheckOutAt,
		&a.CheckInLat, &a.CheckInLng, &a.CheckOutLat, &a.CheckOutLng, &a.Note)
	return a, err
}

// FindForDate returns the attendance row for an employee on a given day, or
// (zero, false) when none exists.
func (r *AttendanceRepository) FindForDate(ctx context.Context, employeeID int64, date string) (model.Attendance, bool, error) {
	a, err := scanAttendance(r.pool.QueryRow(ctx,
		`SELECT `+attendanceColumns+` FROM attendance
		 WHERE employee_id = $1 AND attendance_date = $2::date`,
		employeeID, date))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Attendance{}, false, nil
	}
	if err != nil {
		return model.Attendance{}, false, fmt.Errorf("find attendance: %w", err)
	}
	return a, true, nil
}

func (r *AttendanceRepository) CheckIn(ctx context.Context, employeeID int64, date string, at time.Time, lat *float64, lng *float64, note *string) (model.Attendance, error) {
	a, err := scanAttendance(r.pool.QueryRow(ctx,
		`INSERT INTO attendance (employee_id, attendance_date, check_in_at, check_in_lat, check_in_lng, note)
		 VALUES ($1, $2::date, $3, $4, $5, $6)
		 RETURNING `+attendanceColumns,
		employeeID, date, at, lat, lng, note))
	if err != nil {
		return model.Attendance{}, fmt.Errorf("check in: %w", err)
	}
	return a, nil
}

func (r *AttendanceRepository) CheckOut(ctx context.Context, employeeID int64, date string, at time.Time, lat *float64, lng *float64) (model.Attendance, error) {
	a, err := scanAttendance(r.pool.QueryRow(ctx,
		`UPDATE attendance
		 SET check_out_at = $3, check_out_lat = $4, check_out_lng = $5
		 WHERE employee_id = $1 AND attendance_date = $2::date
		 RETURNING `+attendanceColumns,
		employeeID, date, at, lat, lng))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Attendance{}, model.ErrNotCheckedIn
	}
	if err != nil {
		return model.Attendance{}, fmt.Errorf("check out: %w", err)
	}
	return a, nil
}
