package limits

import (
	"github.com/envioexpress/platform/pkg/plan"
)

// Action is a guarded, resource-creating operation.
type Action string

const (
	ActionCreateContact Action = "create_contact"
	ActionSendMessage   Action = "send_message"
	ActionCreateGroup   Action = "create_group"
	ActionUploadImage   Action = "upload_image"
	ActionInviteUser    Action = "invite_user"
)

// actionResources maps each guarded action to the plan resource whose cap
// governs it. Extending enforcement to a new action means adding a row here
// and registering a counter for its resource.
var actionResources = map[Action]plan.Resource{
	ActionCreateContact: plan.ResourceContacts,
	ActionSendMessage:   plan.ResourceMonthlyMessages,
	ActionCreateGroup:   plan.ResourceGroups,
	ActionUploadImage:   plan.ResourceImages,
	ActionInviteUser:    plan.ResourceUsers,
}

// resourceLabels are the human-readable names used in denial messages.
var resourceLabels = map[plan.Resource]string{
	plan.ResourceContacts:        "contacts",
	plan.ResourceMonthlyMessages: "monthly messages",
	plan.ResourceUsers:           "users",
	plan.ResourceGroups:          "groups",
	plan.ResourceImages:          "images",
}

// Result is the outcome of a limit check. Denial is data, not an error:
// exceeding a cap is the expected outcome of quota enforcement and is never
// logged as a failure.
type Result struct {
	Allowed bool   `json:"allowed"`
	Limit   int64  `json:"limit,omitempty"`
	Current int64  `json:"current,omitempty"`
	Reason  string `json:"error,omitempty"`
}

// UsageInfo pairs a live count with its cap for dashboard display.
// Percent is capped at 100 and -1 for unlimited resources.
type UsageInfo struct {
	Current int64 `json:"current"`
	Limit   int64 `json:"limit"`
	Percent int   `json:"percent"`
}

// WarnPercent is the display threshold at which dashboards flag a resource
// as approaching its cap.
const WarnPercent = 80

// Stats is the usage snapshot backing dashboards and limit-percentage
// displays: live inventory counts plus the period message ledger.
type Stats struct {
	Contacts        int64  `json:"contacts"`
	Groups          int64  `json:"groups"`
	Images          int64  `json:"images"`
	Users           int64  `json:"users"`
	MonthlyMessages int64  `json:"monthlyMessages"`
	CurrentPeriod   string `json:"currentPeriod"`
}
