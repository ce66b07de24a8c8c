package service

import (
	"context"
	"time"

	"hr-portal/internal/model"
	"hr-portal/pkg/apierror"
)

type attendanceStore interface {
	FindForDate(ctx context.Context, employeeID int64, date string) (model.Attendance, bool, error)
	CheckIn(ctx context.Context, employeeID int64, date string, at time.Time, lat *float64, lng *float64, note *string) (model.Attendance, error)
	CheckOut(ctx context.Context, employeeID int64, date string, at time.Time, lat *float64, lng *float64) (model.Attendance, error)
}

type AttendanceService struct {
	attendance attendanceStore
	audit      *AuditService
	now        func() time.Time
}

func NewAttendanceService(attendance attendanceStore, audit *AuditService) *AttendanceService {
	return &AttendanceService{attendance: attendance, audit: audit, now: time.Now}
}

func (s *AttendanceService) today() string {
	return s.now().UTC().Format("2006-01-02")
}

// Today returns the caller's attendance row for the current day, or nil when
// nothing was logged yet.
func (s *AttendanceService) Today(ctx context.Context, employeeID int64) (*model.Attendance, error) {
	a, found, err := s.attendance.FindForDate(ctx, employeeID, s.today())
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &a, nil
}

// Log records a check-in or check-out for today. A second check-in or a
// check-out after check-out conflicts; a check-out without a check-in fails.
func (s *AttendanceService) Log(ctx context.Context, identity model.Identity, employeeID int64, req model.AttendanceLogRequest) (model.Attendance, error) {
	date := s.today()
	at := s.now().UTC()

	existing, found, err := s.attendance.FindForDate(ctx, employeeID, date)
	if err != nil {
		return model.Attendance{}, err
	}

	switch req.Mode {
	case "in":
		if found {
			return model.Attendance{}, model.ErrAlreadyCheckedIn
		}
		a, err := s.attendance.CheckIn(ctx, employeeID, date, at, req.Lat, req.Lng, req.Note)
		if err != nil {
			return model.Attendance{}, err
		}
		s.recordAudit(ctx, identity, "CHECK_IN")
		return a, nil
	case "out":
		if !found {
			return model.Attendance{}, model.ErrNotCheckedIn
		}
		if existing.CheckOutAt != nil {
			return model.Attendance{}, model.ErrAlreadyCheckedOut
		}
		a, err := s.attendance.CheckOut(ctx, employeeID, date, at, req.Lat, req.Lng)
		if err != nil {
			return model.Attendance{}, err
		}
		s.recordAudit(ctx, identity, "CHECK_OUT")
		return a, nil
	default:
		return model.Attendance{}, apierror.BadRequest("mode must be \"in\" or \"out\"")
	}
}

func (s *AttendanceService) recordAudit(ctx context.Context, identity model.Identity, action string) {
	var userID *string
	if identity.Kind == model.IdentityCustom {
		userID = &identity.Claims.UserID
	}
	s.audit.Record(ctx, userID, "ATTENDANCE", action, "Attendance "+action)
}
