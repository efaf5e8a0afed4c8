// Package model defines domain entities exchanged with the backend and kept in drafts.
package model

import "strings"

// Role is a user's role on the backend.
type Role string

const (
	RoleDriver Role = "driver"
	RoleAdmin  Role = "admin"
)

// User is an account known to the backend, keyed by the platform (Telegram) id.
type User struct {
	TgID       string `json:"tg_id"`
	DriverName string `json:"driver_name"`
	Role       Role   `json:"role"`
	SheetID    string `json:"g_sheet_id"` // opaque spreadsheet reference
	TgUsername string `json:"tg_username,omitempty"`
}

// IsAdmin reports whether the user has the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// ReportPayload is the body of a shift report as entered in the form.
type ReportPayload struct {
	Date            string `json:"date"` // YYYY-MM-DD
	Project         string `json:"project"`
	Vehicle         string `json:"vehicle"`
	Address         string `json:"address"`
	ShiftStart      string `json:"shift_start"` // HH:MM
	ShiftEnd        string `json:"shift_end"`
	Trailer         string `json:"trailer"` // empty = no trailer
	TrailerDiffTime bool   `json:"trailer_diff_time"`
	TrailerStart    string `json:"trailer_start"`
	TrailerEnd      string `json:"trailer_end"`
	Overrun         string `json:"overrun"` // km, numeric string
	Comment         string `json:"comment"`
}

// HasTrailer reports whether a trailer is selected.
func (p ReportPayload) HasTrailer() bool { return strings.TrimSpace(p.Trailer) != "" }

// TrailerTimes returns the times that apply to the trailer: its own only when
// a trailer is selected and flagged as running on different time.
func (p ReportPayload) TrailerTimes() (start, end string) {
	if p.HasTrailer() && p.TrailerDiffTime {
		return p.TrailerStart, p.TrailerEnd
	}
	return p.ShiftStart, p.ShiftEnd
}

// Report is a submitted payload with server-assigned id and status.
type Report struct {
	ReportID int64         `json:"report_id"`
	Status   string        `json:"status"`
	Payload  ReportPayload `json:"payload"`
}

// Vehicle is a known vehicle.
type Vehicle struct {
	VehicleName string `json:"vehicle_name"`
}

// Trailer is a known trailer; the backend reuses the vehicle_name column.
type Trailer struct {
	VehicleName string `json:"vehicle_name"`
}

// RecentProject is a recently used project name.
type RecentProject struct {
	Project string `json:"project"`
}

// FormReferenceData holds the per-session choice lists for the form.
type FormReferenceData struct {
	Vehicles       []Vehicle       `json:"vehicles"`
	Trailers       []Trailer       `json:"trailers"`
	RecentProjects []RecentProject `json:"recentProjects"`
}

// VehicleNames returns vehicle names in backend order.
func (d FormReferenceData) VehicleNames() []string {
	out := make([]string, 0, len(d.Vehicles))
	for _, v := range d.Vehicles {
		out = append(out, v.VehicleName)
	}
	return out
}

// TrailerNames returns trailer names in backend order.
func (d FormReferenceData) TrailerNames() []string {
	out := make([]string, 0, len(d.Trailers))
	for _, t := range d.Trailers {
		out = append(out, t.VehicleName)
	}
	return out
}

// ProjectNames returns recent project names in backend order.
func (d FormReferenceData) ProjectNames() []string {
	out := make([]string, 0, len(d.RecentProjects))
	for _, p := range d.RecentProjects {
		out = append(out, p.Project)
	}
	return out
}

// SubmitResult is the success payload of submit/edit calls.
type SubmitResult struct {
	Success  bool  `json:"success"`
	ReportID int64 `json:"report_id"`
}

// ToastKind is the flavour of a transient notification.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

// Toast is a self-dismissing message.
type Toast struct {
	Message string
	Kind    ToastKind
}
