package bookedapi

import (
	"encoding/json"
	"time"
)

// Wire shapes of the /api/v2 endpoints the dashboard caches. Payloads are
// cached as raw JSON; these types are for callers that need the decoded form.

// Appointment is one booking on a barber's calendar.
type Appointment struct {
	ID         string    `json:"id"`
	BarberID   string    `json:"barber_id"`
	ClientName string    `json:"client_name"`
	Service    string    `json:"service"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Status     string    `json:"status"` // confirmed | pending | cancelled | completed
	PriceCents int64     `json:"price_cents"`
}

// StaffMember is a barber or shop employee.
type StaffMember struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Email  string `json:"email"`
	Active bool   `json:"active"`
}

// AnalyticsSummary is the rollup behind the revenue and utilization cards.
type AnalyticsSummary struct {
	Range           string  `json:"range"` // e.g. "7d", "30d"
	RevenueCents    int64   `json:"revenue_cents"`
	Appointments    int     `json:"appointments"`
	NewClients      int     `json:"new_clients"`
	UtilizationPct  float64 `json:"utilization_pct"`
	RebookingRate   float64 `json:"rebooking_rate"`
	AvgTicketCents  int64   `json:"avg_ticket_cents"`
	NoShowRate      float64 `json:"no_show_rate"`
}

func DecodeAppointments(data []byte) ([]Appointment, error) {
	var out []Appointment
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func DecodeStaff(data []byte) ([]StaffMember, error) {
	var out []StaffMember
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func DecodeAnalyticsSummary(data []byte) (AnalyticsSummary, error) {
	var out AnalyticsSummary
	err := json.Unmarshal(data, &out)
	return out, err
}
