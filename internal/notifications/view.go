package notifications

import (
	"fmt"
	"time"
)

// Action is what the UI does when a notification is clicked.
type Action int

const (
	// ActionOpenDetail is the generic fallback for unknown types.
	ActionOpenDetail Action = iota
	// ActionOpenClaimDrawer opens the insurance-claim drawer.
	ActionOpenClaimDrawer
	// ActionOpenBillingRecord navigates to the related billing record.
	ActionOpenBillingRecord
)

func (a Action) String() string {
	switch a {
	case ActionOpenClaimDrawer:
		return "open-claim-drawer"
	case ActionOpenBillingRecord:
		return "open-billing-record"
	default:
		return "open-detail"
	}
}

// ActionFor maps an event type to its click action. Unknown types fall back
// to the generic detail view rather than erroring.
func ActionFor(typ string) Action {
	switch typ {
	case TypeClaimSubmission, TypeClaimResponse, TypeResponseReceived:
		return ActionOpenClaimDrawer
	case TypeSelectionMade, TypeSelectionConfirmed, TypeSelectionError:
		return ActionOpenBillingRecord
	default:
		return ActionOpenDetail
	}
}

// BadgeLabel renders the unread badge, capping the display at "99+".
func BadgeLabel(unread int) string {
	if unread <= 0 {
		return ""
	}
	if unread > 99 {
		return "99+"
	}
	return fmt.Sprintf("%d", unread)
}

// RelativeTime formats t relative to now for display. Computed at render
// time, never stored.
func RelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 48*time.Hour:
		return "yesterday"
	default:
		return t.Format("Jan 2")
	}
}
