package events

import "time"

type ClaimSubmittedV1 struct {
	EventID     string    `json:"event_id"`
	OrgID       string    `json:"org_id"`
	StaffID     string    `json:"staff_id"`
	PatientRef  string    `json:"patient_ref"`
	ClaimID     string    `json:"claim_id"`
	InsurerName string    `json:"insurer_name,omitempty"`
	AmountCents int64     `json:"amount_cents,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type ClaimProcessedV1 struct {
	EventID     string    `json:"event_id"`
	OrgID       string    `json:"org_id"`
	StaffID     string    `json:"staff_id"`
	ClaimID     string    `json:"claim_id"`
	Status      string    `json:"status"`
	ProcessedAt time.Time `json:"processed_at"`
}

type ClaimResponseReceivedV1 struct {
	EventID    string    `json:"event_id"`
	OrgID      string    `json:"org_id"`
	StaffID    string    `json:"staff_id"`
	ClaimID    string    `json:"claim_id"`
	Response   string    `json:"response"`
	ReceivedAt time.Time `json:"received_at"`
}

type SelectionMadeV1 struct {
	EventID     string    `json:"event_id"`
	OrgID       string    `json:"org_id"`
	StaffID     string    `json:"staff_id"`
	PatientRef  string    `json:"patient_ref"`
	InsurerName string    `json:"insurer_name"`
	PlanName    string    `json:"plan_name,omitempty"`
	SelectedAt  time.Time `json:"selected_at"`
}

type SelectionConfirmedV1 struct {
	EventID     string    `json:"event_id"`
	OrgID       string    `json:"org_id"`
	StaffID     string    `json:"staff_id"`
	PatientRef  string    `json:"patient_ref"`
	InsurerName string    `json:"insurer_name"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

type SelectionFailedV1 struct {
	EventID    string    `json:"event_id"`
	OrgID      string    `json:"org_id"`
	StaffID    string    `json:"staff_id"`
	PatientRef string    `json:"patient_ref"`
	Reason     string    `json:"reason"`
	FailedAt   time.Time `json:"failed_at"`
}
