package model

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type AttendanceLogRequest struct {
	Mode string   `json:"mode"` // "in" or "out"
	Lat  *float64 `json:"lat"`
	Lng  *float64 `json:"lng"`
	Note *string  `json:"note"`
}

type LeaveSubmitRequest struct {
	Type      string  `json:"type"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Reason    *string `json:"reason"`
}

type LeaveDecideRequest struct {
	Approve bool    `json:"approve"`
	Note    *string `json:"note"`
}

type AnnouncementCreateRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type EmployeeStatusRequest struct {
	Status string `json:"status"`
}
