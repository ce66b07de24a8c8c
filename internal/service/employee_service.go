package service

import (
	"context"

	"hr-portal/internal/model"
	"hr-portal/pkg/apierror"
)

type employeeAdminStore interface {
	List(ctx context.Context) ([]model.Employee, error)
	UpdateStatus(ctx context.Context, id int64, status string) (model.Employee, error)
}

var validEmploymentStatuses = map[string]bool{
	"ACTIVE":     true,
	"ON_LEAVE":   true,
	"TERMINATED": true,
}

type EmployeeService struct {
	employees employeeAdminStore
	audit     *AuditService
}

func NewEmployeeService(employees employeeAdminStore, audit *AuditService) *EmployeeService {
	return &EmployeeService{employees: employees, audit: audit}
}

func (s *EmployeeService) List(ctx context.Context) ([]model.Employee, error) {
	return s.employees.List(ctx)
}

func (s *EmployeeService) UpdateStatus(ctx context.Context, actorID string, id int64, status string) (model.Employee, error) {
	if !validEmploymentStatuses[status] {
		return model.Employee{}, apierror.BadRequest("status must be ACTIVE, ON_LEAVE or TERMINATED")
	}

	employee, err := s.employees.UpdateStatus(ctx, id, status)
	if err != nil {
		return model.Employee{}, err
	}
	s.audit.Record(ctx, &actorID, "EMPLOYEE", "STATUS_CHANGE", "Employment status set to "+status)
	return employee, nil
}
