package service

import (
	"context"
	"time"

	"hr-portal/internal/model"
	"hr-portal/pkg/apierror"
)

type leaveStore interface {
	Create(ctx context.Context, employeeID int64, leaveType model.LeaveType, startDate string, endDate string, reason *string) (model.LeaveRequest, error)
	FindByID(ctx context.Context, id int64) (model.LeaveRequest, error)
	ListByEmployee(ctx context.Context, employeeID int64) ([]model.LeaveRequest, error)
	ListPending(ctx context.Context) ([]model.LeaveRequest, error)
	Decide(ctx context.Context, id int64, status model.LeaveStatus, deciderID string, note *string, at time.Time) (model.LeaveRequest, error)
}

type LeaveService struct {
	leaves leaveStore
	audit  *AuditService
	now    func() time.Time
}

func NewLeaveService(leaves leaveStore, audit *AuditService) *LeaveService {
	return &LeaveService{leaves: leaves, audit: audit, now: time.Now}
}

const dateLayout = "2006-01-02"

// Submit validates and files a new leave request for the caller's employee
// record.
func (s *LeaveService) Submit(ctx context.Context, userID string, employeeID int64, req model.LeaveSubmitRequest) (model.LeaveRequest, error) {
	leaveType := model.LeaveType(req.Type)
	if leaveType != model.LeaveAnnual && leaveType != model.LeaveSick {
		return model.LeaveRequest{}, apierror.BadRequest("type must be ANNUAL or SICK")
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return model.LeaveRequest{}, apierror.BadRequest("start_date must be YYYY-MM-DD")
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return model.LeaveRequest{}, apierror.BadRequest("end_date must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return model.LeaveRequest{}, apierror.BadRequest("end_date must not precede start_date")
	}

	leave, err := s.leaves.Create(ctx, employeeID, leaveType, req.StartDate, req.EndDate, req.Reason)
	if err != nil {
		return model.LeaveRequest{}, err
	}
	s.audit.Record(ctx, &userID, "LEAVE", "SUBMIT", "Leave request submitted")
	return leave, nil
}

func (s *LeaveService) ListMine(ctx context.Context, employeeID int64) ([]model.LeaveRequest, error) {
	return s.leaves.ListByEmployee(ctx, employeeID)
}

func (s *LeaveService) ListPending(ctx context.Context) ([]model.LeaveRequest, error) {
	return s.leaves.ListPending(ctx)
}

// Decide approves or rejects a pending request. The existence check runs
// first so a missing id reports not-found rather than a decision conflict.
func (s *LeaveService) Decide(ctx context.Context, deciderID string, id int64, req model.LeaveDecideRequest) (model.LeaveRequest, error) {
	if _, err := s.leaves.FindByID(ctx, id); err != nil {
		return model.LeaveRequest{}, err
	}

	status := model.LeaveRejected
	action := "REJECT"
	if req.Approve {
		status = model.LeaveApproved
		action = "APPROVE"
	}

	leave, err := s.leaves.Decide(ctx, id, status, deciderID, req.Note, s.now().UTC())
	if err != nil {
		return model.LeaveRequest{}, err
	}
	s.audit.Record(ctx, &deciderID, "LEAVE", action, "Leave request decided")
	return leave, nil
}
