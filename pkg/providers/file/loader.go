// Package file loads billing records from exported CSV or JSON files,
// for accounts analyzed offline or without API access.
package file

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/DrSkyle/costscope/pkg/billing"
)

// Provider reads one billing export file. Format is inferred from the
// extension: .csv or .json.
type Provider struct {
	Path   string
	logger *slog.Logger
}

func New(path string, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Provider{Path: path, logger: logger}
}

func (p *Provider) Name() string { return "file:" + filepath.Base(p.Path) }

func (p *Provider) Fetch(ctx context.Context) ([]billing.CostRecord, int, error) {
	switch strings.ToLower(filepath.Ext(p.Path)) {
	case ".csv":
		return p.loadCSV()
	case ".json":
		return p.loadJSON()
	default:
		return nil, 0, fmt.Errorf("unsupported billing export format: %s", p.Path)
	}
}

// loadCSV expects a header row with at least date, service, and cost
// columns. Unknown columns are ignored; rows missing required fields
// are dropped and counted.
func (p *Provider) loadCSV() ([]billing.CostRecord, int, error) {
	f, err := os.Open(p.Path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read csv header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"date", "service", "cost"} {
		if _, ok := col[required]; !ok {
			return nil, 0, fmt.Errorf("csv missing required column %q", required)
		}
	}

	var (
		records []billing.CostRecord
		dropped int
	)
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			dropped++
			continue
		}

		rec, ok := parseRow(row, col)
		if !ok {
			dropped++
			continue
		}
		records = append(records, rec)
	}

	if dropped > 0 {
		p.logger.Warn("dropped malformed csv rows", "path", p.Path, "dropped", dropped)
	}
	return records, dropped, nil
}

func parseRow(row []string, col map[string]int) (billing.CostRecord, bool) {
	field := func(name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	date, err := time.Parse("2006-01-02", field("date"))
	if err != nil {
		return billing.CostRecord{}, false
	}
	service := field("service")
	if service == "" {
		return billing.CostRecord{}, false
	}
	cost, err := strconv.ParseFloat(field("cost"), 64)
	if err != nil {
		return billing.CostRecord{}, false
	}

	currency := field("currency")
	if currency == "" {
		currency = "USD"
	}
	return billing.CostRecord{
		Date:       date,
		Service:    service,
		Region:     field("region"),
		ResourceID: field("resource_id"),
		Cost:       cost,
		Currency:   currency,
		Provider:   "file",
	}, true
}

// loadJSON expects an array of records in the report's native shape.
func (p *Provider) loadJSON() ([]billing.CostRecord, int, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, 0, err
	}

	var raw []billing.CostRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("failed to parse billing export: %w", err)
	}

	var (
		records []billing.CostRecord
		dropped int
	)
	for _, rec := range raw {
		if rec.Date.IsZero() || rec.Service == "" {
			dropped++
			continue
		}
		rec.Provider = "file"
		if rec.Currency == "" {
			rec.Currency = "USD"
		}
		records = append(records, rec)
	}

	if dropped > 0 {
		p.logger.Warn("dropped malformed json records", "path", p.Path, "dropped", dropped)
	}
	return records, dropped, nil
}
