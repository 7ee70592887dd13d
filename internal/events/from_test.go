package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardline/notify-hub/internal/notifications"
)

func TestFromClaimSubmitted_BuildsBroadcastEnvelope(t *testing.T) {
	submitted := time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC)
	env, err := Build(FromClaimSubmitted(ClaimSubmittedV1{
		EventID:     "evt-claim-1",
		OrgID:       "org-1",
		StaffID:     "staff-7",
		PatientRef:  "pat-42",
		ClaimID:     "clm-9",
		InsurerName: "Acme Health",
		SubmittedAt: submitted,
	}))
	require.NoError(t, err)

	assert.Equal(t, AudienceBroadcast, env.Audience)
	assert.Equal(t, notifications.TypeClaimSubmission, env.Event)
	assert.Equal(t, "evt-claim-1", env.Notification.ID)
	assert.Equal(t, submitted, env.Notification.Timestamp)
	assert.Contains(t, env.Notification.Message, "clm-9")

	var data ClaimSubmittedV1
	require.NoError(t, json.Unmarshal(env.Notification.Data, &data))
	assert.Equal(t, "Acme Health", data.InsurerName)
}

func TestFromConstructors_DirectedRouting(t *testing.T) {
	now := time.Now().UTC()

	cases := []struct {
		name  string
		req   EmitRequest
		event string
	}{
		{
			name: "claim processed",
			req: FromClaimProcessed(ClaimProcessedV1{
				EventID: "e1", StaffID: "staff-1", ClaimID: "clm-1",
				Status: "approved", ProcessedAt: now,
			}),
			event: notifications.TypeClaimResponse,
		},
		{
			name: "claim response received",
			req: FromClaimResponseReceived(ClaimResponseReceivedV1{
				EventID: "e2", StaffID: "staff-1", ClaimID: "clm-1",
				Response: "paid", ReceivedAt: now,
			}),
			event: notifications.TypeResponseReceived,
		},
		{
			name: "selection made",
			req: FromSelectionMade(SelectionMadeV1{
				EventID: "e3", StaffID: "staff-1", PatientRef: "pat-1",
				InsurerName: "Acme Health", SelectedAt: now,
			}),
			event: notifications.TypeSelectionMade,
		},
		{
			name: "selection confirmed",
			req: FromSelectionConfirmed(SelectionConfirmedV1{
				EventID: "e4", StaffID: "staff-1", PatientRef: "pat-1",
				InsurerName: "Acme Health", ConfirmedAt: now,
			}),
			event: notifications.TypeSelectionConfirmed,
		},
		{
			name: "selection failed",
			req: FromSelectionFailed(SelectionFailedV1{
				EventID: "e5", StaffID: "staff-1", PatientRef: "pat-1",
				Reason: "plan not accepted", FailedAt: now,
			}),
			event: notifications.TypeSelectionError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env, err := Build(tc.req)
			require.NoError(t, err)
			assert.Equal(t, AudienceDirected, env.Audience)
			assert.Equal(t, "staff-1", env.TargetStaff)
			assert.Equal(t, tc.event, env.Event)
			assert.Equal(t, now, env.Notification.Timestamp)
			assert.NotEmpty(t, env.Notification.Title)
			assert.NotEmpty(t, env.Notification.Data)
		})
	}
}

func TestFromSelectionFailed_MessageNamesReason(t *testing.T) {
	req := FromSelectionFailed(SelectionFailedV1{
		EventID: "e6", StaffID: "staff-1", PatientRef: "pat-1",
		Reason: "coverage lapsed", FailedAt: time.Now().UTC(),
	})
	assert.Contains(t, req.Message, "coverage lapsed")
	assert.Contains(t, req.Message, "pat-1")
}
