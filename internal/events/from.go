package events

import (
	"encoding/json"
	"fmt"

	"github.com/wardline/notify-hub/internal/notifications"
)

// The From* constructors shape typed domain payloads into emit requests, so
// callers emitting from business code get the event name, routing target and
// display text in one place instead of assembling them by hand. The typed
// payload rides along verbatim as the opaque data field.

// FromClaimSubmitted shapes a claim submission. Claim submissions broadcast,
// so no target staff is set.
func FromClaimSubmitted(p ClaimSubmittedV1) EmitRequest {
	return EmitRequest{
		Event:     notifications.TypeClaimSubmission,
		EventID:   p.EventID,
		Title:     "Insurance claim submitted",
		Message:   fmt.Sprintf("Claim %s was submitted for patient %s.", p.ClaimID, p.PatientRef),
		Data:      rawPayload(p),
		Timestamp: p.SubmittedAt,
	}
}

// FromClaimProcessed shapes a processed-claim result directed at the staff
// member who owns the claim.
func FromClaimProcessed(p ClaimProcessedV1) EmitRequest {
	return EmitRequest{
		Event:     notifications.TypeClaimResponse,
		EventID:   p.EventID,
		StaffID:   p.StaffID,
		Title:     "Insurance claim processed",
		Message:   fmt.Sprintf("Claim %s was processed: %s.", p.ClaimID, p.Status),
		Data:      rawPayload(p),
		Timestamp: p.ProcessedAt,
	}
}

// FromClaimResponseReceived shapes an insurer response directed at the staff
// member awaiting it. Clients raise a native alert for this event.
func FromClaimResponseReceived(p ClaimResponseReceivedV1) EmitRequest {
	return EmitRequest{
		Event:     notifications.TypeResponseReceived,
		EventID:   p.EventID,
		StaffID:   p.StaffID,
		Title:     "Claim response received",
		Message:   fmt.Sprintf("A response arrived for claim %s.", p.ClaimID),
		Data:      rawPayload(p),
		Timestamp: p.ReceivedAt,
	}
}

// FromSelectionMade shapes an insurance selection directed at the staff
// member handling the patient.
func FromSelectionMade(p SelectionMadeV1) EmitRequest {
	return EmitRequest{
		Event:     notifications.TypeSelectionMade,
		EventID:   p.EventID,
		StaffID:   p.StaffID,
		Title:     "Insurance selection made",
		Message:   fmt.Sprintf("%s was selected for patient %s.", p.InsurerName, p.PatientRef),
		Data:      rawPayload(p),
		Timestamp: p.SelectedAt,
	}
}

// FromSelectionConfirmed shapes a confirmed selection directed at the staff
// member who made it.
func FromSelectionConfirmed(p SelectionConfirmedV1) EmitRequest {
	return EmitRequest{
		Event:     notifications.TypeSelectionConfirmed,
		EventID:   p.EventID,
		StaffID:   p.StaffID,
		Title:     "Insurance selection confirmed",
		Message:   fmt.Sprintf("%s was confirmed for patient %s.", p.InsurerName, p.PatientRef),
		Data:      rawPayload(p),
		Timestamp: p.ConfirmedAt,
	}
}

// FromSelectionFailed shapes a failed selection directed at the staff member
// who attempted it.
func FromSelectionFailed(p SelectionFailedV1) EmitRequest {
	return EmitRequest{
		Event:     notifications.TypeSelectionError,
		EventID:   p.EventID,
		StaffID:   p.StaffID,
		Title:     "Insurance selection failed",
		Message:   fmt.Sprintf("Selection for patient %s failed: %s.", p.PatientRef, p.Reason),
		Data:      rawPayload(p),
		Timestamp: p.FailedAt,
	}
}

func rawPayload(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}
