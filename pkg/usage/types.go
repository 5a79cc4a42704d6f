package usage

import (
	"time"

	"github.com/google/uuid"
)

// Metric names an additive usage counter.
type Metric string

const (
	MetricContacts    Metric = "contacts"
	MetricMessages    Metric = "messages"
	MetricGroups      Metric = "groups"
	MetricImages      Metric = "images"
	MetricUsers       Metric = "users"
	MetricAPIRequests Metric = "api_requests"
)

// Valid reports whether m is a known metric.
func (m Metric) Valid() bool {
	switch m {
	case MetricContacts, MetricMessages, MetricGroups, MetricImages, MetricUsers, MetricAPIRequests:
		return true
	}
	return false
}

// Metrics is one tenant's counter row for a single calendar month.
// Counters only ever grow: deleting a contact elsewhere does not roll back
// ContactsCount. They track activity, not live inventory.
type Metrics struct {
	TenantID uuid.UUID
	Period   string // "YYYY-MM"

	ContactsCount int64
	MessagesCount int64
	GroupsCount   int64
	ImagesCount   int64
	UsersCount    int64
	APIRequests   int64
	StorageUsed   int64 // bytes
}

// Period formats a time as the calendar-month bucket key, e.g. "2025-06".
func Period(t time.Time) string {
	return t.UTC().Format("2006-01")
}
