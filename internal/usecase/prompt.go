package usecase

import (
	"strings"

	"outbound-email-engine/internal/domain/model"
)

// Each segment gets a tailored angle telling the model what to emphasise.
// The switch is exhaustive over the closed segment enum; general doubles
// as the fallback angle.
func segmentAngle(seg model.Segment) string {
	switch seg {
	case model.SegmentEnterprise:
		return "This contact manages a large portfolio (50+ units). " +
			"Emphasise portfolio-wide revenue analytics, bulk pricing controls, " +
			"and how dynamic pricing scales across hundreds of listings without manual work."
	case model.SegmentGrowthPMS:
		return "This contact runs a growing operation on a modern property-management system. " +
			"Emphasise the native PMS integration, real-time rate syncing, " +
			"and how teams their size typically lift revenue per listing within the first season."
	case model.SegmentEarlyStage:
		return "This contact looks early-stage (generic email domain, small footprint). " +
			"Keep it light: emphasise quick setup, no long-term commitment, " +
			"and that data-driven pricing works even for a handful of listings."
	default:
		return "Keep the angle broad: introduce data-driven dynamic pricing for hospitality, " +
			"highlight ease of setup, and invite them to explore with a trial or demo."
	}
}

func cohortFraming(t model.ContactType) string {
	if t == model.ContactTypeLead {
		return "This contact is a warm lead who has already shown interest. " +
			"Write a friendly follow-up that moves them toward a demo."
	}
	return "This contact is a cold prospect (first touch). " +
		"Write one short, personalized cold email."
}

// BuildPrompt composes the generation prompt for one contact. Pure string
// assembly: fields absent from the record are omitted entirely rather
// than rendered as a placeholder, so the model never sees sentinel text.
func BuildPrompt(c model.ContactRecord, seg model.Segment, band model.SizeBand, cohort model.ContactType) string {
	var sb strings.Builder

	sb.WriteString("You are an outbound SDR at a dynamic-pricing platform for hospitality. ")
	sb.WriteString(cohortFraming(cohort))
	sb.WriteString("\n\nSegment angle: ")
	sb.WriteString(segmentAngle(seg))

	sb.WriteString("\n\nRules:\n")
	sb.WriteString("- Body under 200 words. One clear CTA. No fluff. Sound human and friendly, not AI.\n")
	sb.WriteString("- Reference their PMS, property type, or region where it fits naturally.\n")

	sb.WriteString("\nOutput fields:\n")
	sb.WriteString("- subject: A compelling, concise email subject line.\n")
	sb.WriteString("- greeting: The opening greeting (e.g. \"Hi <first name>,\").\n")
	sb.WriteString("- body: The core email content with value prop and CTA, split in 2 paragraphs. ")
	sb.WriteString("Do NOT include the greeting or sign-off here.\n")

	sb.WriteString("\nContact (use these for personalization):\n")
	writeField(&sb, "First name", c.FirstName)
	writeField(&sb, "Company", c.Company)
	writeField(&sb, "PMS", c.PMS)
	writeField(&sb, "Property type", c.PropertyType)
	writeField(&sb, "Region", c.Region)
	if band != model.SizeBandUnknown {
		writeField(&sb, "Company size (by listing count)", string(band))
	}

	return strings.TrimSpace(sb.String())
}

func writeField(sb *strings.Builder, label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	sb.WriteString("- ")
	sb.WriteString(label)
	sb.WriteString(": ")
	sb.WriteString(value)
	sb.WriteString("\n")
}
