//go:build !integration

package usecase_test

import (
	"strings"
	"testing"

	"outbound-email-engine/internal/domain/model"
	"outbound-email-engine/internal/usecase"
)

func TestBuildPrompt_OmitsMissingFields(t *testing.T) {
	c := model.ContactRecord{
		Email:     "sam@example.com",
		FirstName: "Sam",
		Type:      model.ContactTypeProspect,
		// no company, PMS, property type, or region
	}
	p := usecase.BuildPrompt(c, model.SegmentGeneral, model.SizeBandUnknown, model.ContactTypeProspect)

	for _, sentinel := range []string{"Not specified", "unknown", "N/A", "<nil>"} {
		if strings.Contains(p, sentinel) {
			t.Errorf("prompt leaks sentinel %q", sentinel)
		}
	}
	for _, label := range []string{"Company:", "PMS:", "Property type:", "Region:", "Company size"} {
		if strings.Contains(p, label) {
			t.Errorf("prompt contains label %q for a missing field", label)
		}
	}
	if !strings.Contains(p, "First name: Sam") {
		t.Errorf("present field missing from prompt:\n%s", p)
	}
}

func TestBuildPrompt_IncludesPresentFields(t *testing.T) {
	c := model.ContactRecord{
		FirstName:    "Ana",
		Company:      "Seaside Stays",
		PMS:          "Hostaway",
		PropertyType: "Vacation Rental",
		Region:       "Portugal",
		UnitCount:    12,
	}
	p := usecase.BuildPrompt(c, model.SegmentGrowthPMS, model.SizeBandOf(c), model.ContactTypeProspect)

	for _, want := range []string{
		"First name: Ana",
		"Company: Seaside Stays",
		"PMS: Hostaway",
		"Property type: Vacation Rental",
		"Region: Portugal",
		"Company size (by listing count): mid",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
}

func TestBuildPrompt_AngleVariesBySegment(t *testing.T) {
	c := model.ContactRecord{FirstName: "Sam"}
	seen := map[string]model.Segment{}
	for _, seg := range []model.Segment{
		model.SegmentEnterprise,
		model.SegmentGrowthPMS,
		model.SegmentEarlyStage,
		model.SegmentGeneral,
	} {
		p := usecase.BuildPrompt(c, seg, model.SizeBandUnknown, model.ContactTypeProspect)
		if prev, dup := seen[p]; dup {
			t.Errorf("segments %q and %q produce an identical prompt", prev, seg)
		}
		seen[p] = seg
	}
}

func TestBuildPrompt_CohortChangesFraming(t *testing.T) {
	c := model.ContactRecord{FirstName: "Sam"}
	prospect := usecase.BuildPrompt(c, model.SegmentGeneral, model.SizeBandUnknown, model.ContactTypeProspect)
	lead := usecase.BuildPrompt(c, model.SegmentGeneral, model.SizeBandUnknown, model.ContactTypeLead)

	if prospect == lead {
		t.Fatal("prospect and lead cohorts must get different email framing")
	}
	if !strings.Contains(prospect, "cold prospect") {
		t.Errorf("prospect framing missing:\n%s", prospect)
	}
	if !strings.Contains(lead, "warm lead") {
		t.Errorf("lead framing missing:\n%s", lead)
	}
}

func TestBuildPrompt_NamesOutputFields(t *testing.T) {
	p := usecase.BuildPrompt(model.ContactRecord{}, model.SegmentGeneral, model.SizeBandUnknown, model.ContactTypeProspect)
	for _, field := range []string{"subject:", "greeting:", "body:"} {
		if !strings.Contains(p, field) {
			t.Errorf("prompt does not describe output field %q", field)
		}
	}
}
