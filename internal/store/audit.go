package store

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/teachsync/internal/model"
)

// UUIDv7Generator generates time-sortable audit entry ids.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// appendAudit completes entry and appends it to the document's log.
func (s *Store) appendAudit(ctx context.Context, doc *model.Document, entry model.AuditEntry, now time.Time) model.AuditEntry {
	entry.ID = s.ids.Generate()
	entry.Timestamp = now.UTC().Format(time.RFC3339)
	entry.Actor = s.actor(ctx)
	doc.AuditLog = append(doc.AuditLog, entry)
	return entry
}

// diff accumulates field-level changes for an update entry.
type diff struct {
	changes []model.FieldChange
}

func (d *diff) record(field, old, new string) {
	if old != new {
		d.changes = append(d.changes, model.FieldChange{Field: field, Old: old, New: new})
	}
}

// str applies a trimmed string patch value to dst.
func (d *diff) str(field string, dst *string, src *string) {
	if src == nil {
		return
	}
	v := strings.TrimSpace(*src)
	d.record(field, *dst, v)
	*dst = v
}

func (d *diff) boolean(field string, dst *bool, src *bool) {
	if src == nil {
		return
	}
	d.record(field, strconv.FormatBool(*dst), strconv.FormatBool(*src))
	*dst = *src
}

func (d *diff) integer(field string, dst *int, src *int) {
	if src == nil {
		return
	}
	d.record(field, strconv.Itoa(*dst), strconv.Itoa(*src))
	*dst = *src
}

func (d *diff) list(field string, old, new []string) {
	d.record(field, strings.Join(old, ", "), strings.Join(new, ", "))
}

func (d *diff) osRequirements(field string, old, new []model.OSRequirement) {
	d.record(field, joinOS(old), joinOS(new))
}

// osList renders nil as "inherited" so switching between inherited and an
// explicit empty list is still visible in the log.
func (d *diff) osList(field string, old, new model.OSList) {
	d.record(field, formatOSList(old), formatOSList(new))
}

func formatOSList(l model.OSList) string {
	if l == nil {
		return "inherited"
	}
	return strings.Join(l, ", ")
}

func joinOS(reqs []model.OSRequirement) string {
	parts := make([]string, len(reqs))
	for i, r := range reqs {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}
