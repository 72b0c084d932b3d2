package model

import "strings"

// Segment is the firmographic classification of a contact, used to pick
// the messaging angle. Classification is a pure function of the record:
// no hidden state, no model call.
type Segment string

const (
	SegmentEnterprise Segment = "enterprise"
	SegmentGrowthPMS  Segment = "growth_pms"
	SegmentEarlyStage Segment = "early_stage"
	SegmentGeneral    Segment = "general"
)

// SizeBand is a coarse scale bucket derived from the managed-unit count,
// independent of segment.
type SizeBand string

const (
	SizeBandSmall      SizeBand = "small"
	SizeBandMid        SizeBand = "mid"
	SizeBandEnterprise SizeBand = "enterprise"
	SizeBandUnknown    SizeBand = "unknown"
)

// SegmentOf classifies a contact by deterministic business rules.
// Rules are checked most-specific first; the last variant is the
// explicit fallback.
func SegmentOf(c ContactRecord) Segment {
	switch {
	case c.UnitCount >= 50:
		return SegmentEnterprise
	case strings.Contains(strings.ToLower(c.PMS), "hostaway") && c.UnitCount >= 10:
		return SegmentGrowthPMS
	case c.GenericDomain:
		return SegmentEarlyStage
	default:
		return SegmentGeneral
	}
}

// SizeBandOf buckets the managed-unit count into a company size band.
func SizeBandOf(c ContactRecord) SizeBand {
	n := c.UnitCount
	switch {
	case n > 50:
		return SizeBandEnterprise
	case n >= 6:
		return SizeBandMid
	case n >= 1:
		return SizeBandSmall
	default:
		return SizeBandUnknown
	}
}
