package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hr-portal/internal/model"
)

type EmployeeRepository struct {
	pool *pgxpool.Pool
}

func NewEmployeeRepository(pool *pgxpool.Pool) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

const snapshotQuery = `
	SELECT e.id, e.full_name, d.name, p.title, e.employment_status
	FROM employees e
	LEFT JOIN departments d ON d.id = e.department_id
	LEFT JOIN positions p ON p.id = e.position_id`

func scanSnapshot(row pgx.Row) (*model.EmployeeSnapshot, error) {
	var s model.EmployeeSnapshot
	var status string
	if err := row.Scan(&s.ID, &s.FullName, &s.Department, &s.Position, &status); err != nil {
		return nil, err
	}
	s.EmploymentStatus = &status
	return &s, nil
}

// SnapshotByUserID loads the denormalized employee record linked to a user.
// A missing linkage is not an error; it returns (nil, nil).
func (r *EmployeeRepository) SnapshotByUserID(ctx context.Context, userID string) (*model.EmployeeSnapshot, error) {
	s, err := scanSnapshot(r.pool.QueryRow(ctx, snapshotQuery+` WHERE e.user_id = $1`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load employee snapshot by user: %w", err)
	}
	return s, nil
}

func (r *EmployeeRepository) SnapshotByID(ctx context.Context, id int64) (*model.EmployeeSnapshot, error) {
	s, err := scanSnapshot(r.pool.QueryRow(ctx, snapshotQuery+` WHERE e.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load employee snapshot: %w", err)
	}
	return s, nil
}

func (r *EmployeeRepository) SnapshotByEmail(ctx context.Context, email string) (*model.EmployeeSnapshot, error) {
	s, err := scanSnapshot(r.pool.QueryRow(ctx, snapshotQuery+` WHERE lower(e.email) = lower($1)`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load employee snapshot by email: %w", err)
	}
	return s, nil
}

func (r *EmployeeRepository) List(ctx context.Context) ([]model.Employee, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT e.id, e.user_id, e.full_name, e.email, d.name, p.title, e.employment_status, e.created_at
		FROM employees e
		LEFT JOIN departments d ON d.id = e.department_id
		LEFT JOIN positions p ON p.id = e.position_id
		ORDER BY e.full_name`)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	employees := make([]model.Employee, 0)
	for rows.Next() {
		var e model.Employee
		if err := rows.Scan(&e.ID, &e.UserID, &e.FullName, &e.Email,
			&e.Department, &e.Position, &e.EmploymentStatus, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (r *EmployeeRepository) UpdateStatus(ctx context.Context, id int64, status string) (model.Employee, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE employees SET employment_status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return model.Employee{}, fmt.Errorf("update employee status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.Employee{}, model.ErrEmployeeNotFound
	}

	var e model.Employee
	err = r.pool.QueryRow(ctx, `
		SELECT e.id, e.user_id, e.full_name, e.email, d.name, p.title, e.employment_status, e.created_at
		FROM employees e
		LEFT JOIN departments d ON d.id = e.department_id
		LEFT JOIN positions p ON p.id = e.position_id
		WHERE e.id = $1`, id).
		Scan(&e.ID, &e.UserID, &e.FullName, &e.Email,
			&e.Department, &e.Position, &e.EmploymentStatus, &e.CreatedAt)
	if err != nil {
		return model.Employee{}, fmt.Errorf("reload employee: %w", err)
	}
	return e, nil
}
