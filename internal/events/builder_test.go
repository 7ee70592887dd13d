package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wardline/notify-hub/internal/notifications"
)

func TestBuild_DirectedEvent(t *testing.T) {
	payload, _ := json.Marshal(SelectionConfirmedV1{
		EventID:     "evt-1",
		OrgID:       "org-1",
		StaffID:     "staff-7",
		PatientRef:  "pat-3",
		InsurerName: "Acme Health",
		ConfirmedAt: time.Now().UTC(),
	})

	env, err := Build(EmitRequest{
		Event:   notifications.TypeSelectionConfirmed,
		EventID: "evt-1",
		StaffID: "staff-7",
		Title:   "Confirmed",
		Message: "Insurance Acme Health confirmed",
		Data:    payload,
	})
	require.NoError(t, err)

	assert.Equal(t, AudienceDirected, env.Audience)
	assert.Equal(t, "staff-7", env.TargetStaff)
	assert.Equal(t, "evt-1", env.Notification.ID)
	assert.Equal(t, notifications.TypeSelectionConfirmed, env.Notification.Type)
	assert.False(t, env.Notification.Read)
	assert.False(t, env.Notification.Timestamp.IsZero())
}

func TestBuild_ClaimSubmissionBroadcasts(t *testing.T) {
	env, err := Build(EmitRequest{
		Event: notifications.TypeClaimSubmission,
		Title: "Claim submitted",
	})
	require.NoError(t, err)
	assert.Equal(t, AudienceBroadcast, env.Audience)
	assert.Empty(t, env.TargetStaff)
}

func TestBuild_MintsStableIDOnlyWhenAbsent(t *testing.T) {
	a, err := Build(EmitRequest{Event: notifications.TypeClaimSubmission, Title: "t"})
	require.NoError(t, err)
	b, err := Build(EmitRequest{Event: notifications.TypeClaimSubmission, Title: "t"})
	require.NoError(t, err)
	assert.NotEmpty(t, a.Notification.ID)
	assert.NotEqual(t, a.Notification.ID, b.Notification.ID)

	c, err := Build(EmitRequest{Event: notifications.TypeClaimSubmission, Title: "t", EventID: "stable"})
	require.NoError(t, err)
	assert.Equal(t, "stable", c.Notification.ID)
}

func TestBuild_Rejections(t *testing.T) {
	_, err := Build(EmitRequest{Event: "mystery-event", Title: "t"})
	assert.Error(t, err)

	_, err = Build(EmitRequest{Event: notifications.TypeSelectionMade, Title: "t"})
	assert.Error(t, err, "directed event without target")

	_, err = Build(EmitRequest{Event: notifications.TypeClaimSubmission})
	assert.Error(t, err, "missing title")
}
