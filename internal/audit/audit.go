package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Action names a console write forwarded to the backend.
type Action string

const (
	ActionAlarmUpdate    Action = "alarm.update"
	ActionRuleCreate     Action = "rule.create"
	ActionRuleUpdate     Action = "rule.update"
	ActionRuleDelete     Action = "rule.delete"
	ActionLayoutCreate   Action = "layout.create"
	ActionLayoutUpdate   Action = "layout.update"
	ActionReportCreate   Action = "report.create"
	ActionReportExport   Action = "report.export"
	ActionScheduleDelete Action = "report_schedule.delete"
)

// Resource is the resource type an action applies to.
func (a Action) Resource() string {
	resource, _, _ := strings.Cut(string(a), ".")
	return resource
}

// Entry is one audited user intent.
type Entry struct {
	ID            string
	RequestID     string
	Site          string
	Actor         string
	ActorName     string
	Role          string
	Action        Action
	ResourceType  string
	ResourceID    string
	Metadata      json.RawMessage
	PayloadDigest string
	IP            string
	UserAgent     string
	CreatedAt     time.Time
}

// Logger writes audit entries.
type Logger interface {
	Log(ctx context.Context, entry Entry) error
}

// NewID generates a random audit id.
func NewID() string {
	return "audit-" + uuid.NewString()
}

// DigestJSON computes a SHA256 hex digest for metadata payloads.
func DigestJSON(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func prepare(entry Entry) Entry {
	if entry.ID == "" {
		entry.ID = NewID()
	}
	if entry.ResourceType == "" {
		entry.ResourceType = entry.Action.Resource()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.PayloadDigest == "" {
		entry.PayloadDigest = DigestJSON(entry.Metadata)
	}
	return entry
}
