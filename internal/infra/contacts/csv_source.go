package contacts

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"outbound-email-engine/internal/domain"
	"outbound-email-engine/internal/domain/model"
	"outbound-email-engine/internal/domain/ports/repository"
)

// Compile-time check
var _ repository.ContactSource = (*CSVContactSource)(nil)

// Filters are the active eligibility rules. Each toggle drops rows the
// cold-outreach run must not touch.
type Filters struct {
	ExcludeUnsubscribed   bool
	ExcludeBlockedDomains bool
	ExcludeContacted      bool
}

// CSVContactSource streams the contact database from a CSV file. Headers
// are matched case-insensitively; cells are parsed leniently (an
// unparseable unit count becomes 0, never an error) so one dirty row
// cannot sink a run.
type CSVContactSource struct {
	path    string
	filters Filters
	log     *zerolog.Logger
}

func NewCSVContactSource(path string, filters Filters, logger *zerolog.Logger) *CSVContactSource {
	return &CSVContactSource{path: path, filters: filters, log: logger}
}

// Load reads and filters the database, preserving file order. A missing
// file or a header without the email/type columns is a configuration
// error; nothing about the run can be salvaged without them.
func (s *CSVContactSource) Load(ctx context.Context) ([]model.ContactRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open contact database %s: %v: %w", s.path, err, domain.ErrConfiguration)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate ragged rows

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %v: %w", s.path, err, domain.ErrConfiguration)
	}
	cols := headerIndex(header)
	for _, required := range []string{"email", "type"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("contact database missing %q column: %w", required, domain.ErrConfiguration)
		}
	}

	var (
		records  []model.ContactRecord
		line     = 1
		skipped  int
		filtered int
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s line %d: %v: %w", s.path, line+1, err, domain.ErrConfiguration)
		}
		line++

		rec, ok := s.parseRow(cols, row)
		if !ok {
			skipped++
			continue
		}
		if s.excluded(rec) {
			filtered++
			continue
		}
		records = append(records, rec)
	}

	s.log.Info().
		Str("path", s.path).
		Int("loaded", len(records)).
		Int("skipped", skipped).
		Int("filtered", filtered).
		Msg("contact database loaded")
	return records, nil
}

func (s *CSVContactSource) parseRow(cols map[string]int, row []string) (model.ContactRecord, bool) {
	email := strings.TrimSpace(cell(cols, row, "email"))
	if email == "" {
		return model.ContactRecord{}, false
	}
	ctype, ok := model.ParseContactType(cell(cols, row, "type"))
	if !ok {
		// trials, customers, and blank types are not cold-outreach targets
		return model.ContactRecord{}, false
	}

	return model.ContactRecord{
		Email:         email,
		FirstName:     strings.TrimSpace(cell(cols, row, "first_name")),
		Company:       strings.TrimSpace(cell(cols, row, "company_name")),
		PMS:           strings.TrimSpace(cell(cols, row, "pms")),
		PropertyType:  strings.TrimSpace(cell(cols, row, "type_of_properties_managed")),
		Region:        strings.TrimSpace(cell(cols, row, "region")),
		UnitCount:     atoiOrZero(cell(cols, row, "mu_count")),
		GenericDomain: truthy(cell(cols, row, "is_generic_domain")),
		Unsubscribed:  truthy(cell(cols, row, "unsubscribed")),
		BlockedDomain: truthy(cell(cols, row, "is_blocked_domain")),
		EmailsSent:    atoiOrZero(cell(cols, row, "total_emails_sent")),
		Type:          ctype,
	}, true
}

func (s *CSVContactSource) excluded(rec model.ContactRecord) bool {
	switch {
	case s.filters.ExcludeUnsubscribed && rec.Unsubscribed:
		return true
	case s.filters.ExcludeBlockedDomains && rec.BlockedDomain:
		return true
	case s.filters.ExcludeContacted && rec.EmailsSent > 0:
		return true
	}
	return false
}

func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols
}

func cell(cols map[string]int, row []string, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

var truthyValues = map[string]struct{}{
	"true": {}, "1": {}, "yes": {}, "y": {}, "t": {},
}

func truthy(s string) bool {
	_, ok := truthyValues[strings.ToLower(strings.TrimSpace(s))]
	return ok
}
