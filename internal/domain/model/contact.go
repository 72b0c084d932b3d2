package model

import "strings"

// ContactType is the cohort a contact belongs to. Cold outreach only
// targets prospects and leads; trials and paying customers are excluded
// when the source is loaded.
type ContactType string

const (
	ContactTypeProspect ContactType = "prospect"
	ContactTypeLead     ContactType = "lead"
)

// ContactRecord is one row of the source contact database. Records are
// immutable once loaded; all derived values (segment, size band, prompt)
// are recomputed from the record each run.
type ContactRecord struct {
	Email        string
	FirstName    string
	Company      string
	PMS          string
	PropertyType string
	Region       string

	// UnitCount is the number of managed units, a proxy for company scale.
	// Zero when missing or unparseable in the source.
	UnitCount int

	GenericDomain bool
	Unsubscribed  bool
	BlockedDomain bool

	// EmailsSent counts prior outbound touches to this contact.
	EmailsSent int

	Type ContactType
}

// ParseContactType normalizes a raw "type" cell into a cohort.
// Unknown values (trial, customer, blank) return false.
func ParseContactType(raw string) (ContactType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "prospect":
		return ContactTypeProspect, true
	case "lead":
		return ContactTypeLead, true
	default:
		return "", false
	}
}

// SplitCohorts partitions contacts into prospects and leads, preserving
// input order within each cohort. Each cohort gets separately drafted
// email copy downstream.
func SplitCohorts(contacts []ContactRecord) (prospects, leads []ContactRecord) {
	for _, c := range contacts {
		switch c.Type {
		case ContactTypeProspect:
			prospects = append(prospects, c)
		case ContactTypeLead:
			leads = append(leads, c)
		}
	}
	return prospects, leads
}
