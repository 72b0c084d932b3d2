package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"

	"outbound-email-engine/internal/domain/model"
	"outbound-email-engine/internal/domain/ports/repository"
)

// Compile-time check
var _ repository.ResultSink = (*CSVResultSink)(nil)

var outputHeader = []string{
	"type", "email", "segment",
	"subject", "greeting", "body", "signature", "generated_email",
	"model", "input_tokens", "output_tokens", "total_tokens", "cost_usd",
}

// CSVResultSink writes output rows as CSV files under a fixed directory.
type CSVResultSink struct {
	dir string
	log *zerolog.Logger
}

func NewCSVResultSink(dir string, logger *zerolog.Logger) *CSVResultSink {
	if dir == "" {
		dir = "."
	}
	return &CSVResultSink{dir: dir, log: logger}
}

// Write persists rows to <dir>/<name>.csv and returns the full path.
// The write is all-or-nothing from the caller's point of view: a file is
// only reported once every row has been flushed.
func (s *CSVResultSink) Write(ctx context.Context, name string, rows []model.OutputRow) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(s.dir, name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(outputHeader); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	for _, row := range rows {
		record := []string{
			string(row.Type),
			row.Email,
			string(row.Segment),
			row.Subject,
			row.Greeting,
			row.Body,
			row.Signature,
			row.DisplayEmail,
			row.Model,
			strconv.Itoa(row.InputTokens),
			strconv.Itoa(row.OutputTokens),
			strconv.Itoa(row.TotalTokens),
			strconv.FormatFloat(row.CostUSD, 'f', 6, 64),
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush %s: %w", path, err)
	}

	s.log.Info().Str("path", path).Int("rows", len(rows)).Msg("results written")
	return path, nil
}
