package model

import "time"

type LeaveStatus string

const (
	LeavePending  LeaveStatus = "PENDING"
	LeaveApproved LeaveStatus = "APPROVED"
	LeaveRejected LeaveStatus = "REJECTED"
)

type LeaveType string

const (
	LeaveAnnual LeaveType = "ANNUAL"
	LeaveSick   LeaveType = "SICK"
)

type LeaveRequest struct {
	ID         int64       `json:"id"`
	EmployeeID int64       `json:"employee_id"`
	Type       LeaveType   `json:"type"`
	StartDate  string      `json:"start_date"`
	EndDate    string      `json:"end_date"`
	Reason     *string     `json:"reason"`
	Status     LeaveStatus `json:"status"`
	DecidedBy  *string     `json:"decided_by"`
	DecidedAt  *time.Time  `json:"decided_at"`
	DecisionNote *string   `json:"decision_note"`
	CreatedAt  time.Time   `json:"created_at"`
}
