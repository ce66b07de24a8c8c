package model

import "time"

type Attendance struct {
	ID             int64      `json:"id"`
	EmployeeID     int64      `json:"employee_id"`
	AttendanceDate string     `json:"attendance_date"`
	CheckInAt      *time.Time `json:"check_in_at"`
	CheckOutAt     *time.Time `json:"check_out_at"`
	CheckInLat     *float64   `json:"check_in_lat"`
	CheckInLng     *float64   `json:"check_in_lng"`
	CheckOutLat    *float64   `json:"check_out_lat"`
	CheckOutLng    *float64   `json:"check_out_lng"`
	Note           *string    `json:"note"`
}
