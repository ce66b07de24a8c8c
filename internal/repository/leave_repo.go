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

type LeaveRepository struct {
	pool *pgxpool.Pool
}

func NewLeaveRepository(pool *pgxpool.Pool) *LeaveRepository {
	return &LeaveRepository{pool: pool}
}

const leaveColumns = `id, employee_id, type, start_date::text, end_date::text, reason,
	status, decided_by, decided_at, decision_note, created_at`

func scanLeave(row pgx.Row) (model.LeaveRequest, error) {
	var l model.LeaveRequest
	err := row.Scan(&l.ID, &l.EmployeeID, &l.Type, &l.StartDate, &l.EndDate, &l.Reason,
		&l.Status, &l.DecidedBy, &l.DecidedAt, &l.DecisionNote, &l.CreatedAt)
	return l, err
}

func (r *LeaveRepository) Create(ctx context.Context, employeeID int64, leaveType model.LeaveType, startDate string, endDate string, reason *string) (model.LeaveRequest, error) {
	l, err := scanLeave(r.pool.QueryRow(ctx,
		`INSERT INTO leave_requests (employee_id, type, start_date, end_date, reason)
		 VALUES ($1, $2, $3::date, $4::date, $5)
		 RETURNING `+leaveColumns,
		employeeID, leaveType, startDate, endDate, reason))
	if err != nil {
		return model.LeaveRequest{}, fmt.Errorf("create leave request: %w", err)
	}
	return l, nil
}

func (r *LeaveRepository) FindByID(ctx context.Context, id int64) (model.LeaveRequest, error) {
	l, err := scanLeave(r.pool.QueryRow(ctx,
		`SELECT `+leaveColumns+` FROM leave_requests WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.LeaveRequest{}, model.ErrLeaveNotFound
	}
	if err != nil {
		return model.LeaveRequest{}, fmt.Errorf("find leave request: %w", err)
	}
	return l, nil
}

func (r *LeaveRepository) ListByEmployee(ctx context.Context, employeeID int64) ([]model.LeaveRequest, error) {
	return r.list(ctx,
		`SELECT `+leaveColumns+` FROM leave_requests WHERE employee_id = $1 ORDER BY created_at DESC`,
		employeeID)
}

func (r *LeaveRepository) ListPending(ctx context.Context) ([]model.LeaveRequest, error) {
	return r.list(ctx,
		`SELECT `+leaveColumns+` FROM leave_requests WHERE status = $1 ORDER BY created_at`,
		model.LeavePending)
}

func (r *LeaveRepository) list(ctx context.Context, query string, args ...any) ([]model.LeaveRequest, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leave requests: %w", err)
	}
	defer rows.Close()

	leaves := make([]model.LeaveRequest, 0)
	for rows.Next() {
		l, err := scanLeave(rows)
		if err != nil {
			return nil, fmt.Errorf("scan leave request: %w", err)
		}
		leaves = append(leaves, l)
	}
	return leaves, rows.Err()
}

// Decide transitions a PENDING request; deciding an already-decided request
// affects no rows and reports a conflict.
func (r *LeaveRepository) Decide(ctx context.Context, id int64, status model.LeaveStatus, deciderID string, note *string, at time.Time) (model.LeaveRequest, error) {
	l, err := scanLeave(r.pool.QueryRow(ctx,
		`UPDATE leave_requests
		 SET status = $2, decided_by = $3, decision_note = $4, decided_at = $5
		 WHERE id = $1 AND status = $6
		 RETURNING `+leaveColumns,
		id, status, deciderID, note, at, model.LeavePending))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.LeaveRequest{}, model.ErrLeaveAlreadyDecided
	}
	if err != nil {
		return model.LeaveRequest{}, fmt.Errorf("decide leave request: %w", err)
	}
	return l, nil
}
