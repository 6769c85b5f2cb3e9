// Package ingest turns the master workbook into content files: help
// articles as markdown with frontmatter, everything else as JSON
// records under the schemas tree.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Semior001/aidhub/app/content"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"golang.org/x/exp/slog"
)

// Sheet describes how a single workbook sheet maps onto content files.
type Sheet struct {
	Dir           string
	KeyCandidates []string
	Markdown      bool
	Shape         func(row map[string]string, key string) map[string]any
}

// Sheets routes known workbook sheets to their targets. Sheets not
// listed here are skipped with a log line.
var Sheets = map[string]Sheet{
	"entity_info": {
		Dir:           "schemas/organization",
		KeyCandidates: []string{"slug", "entity_name", "name", "title"},
		Shape:         passthrough,
	},
	"Services": {
		Dir:           "schemas/services",
		KeyCandidates: []string{"slug", "service_name", "name", "title"},
		Shape:         shapeService,
	},
	"Products": {
		Dir:           "schemas/products",
		KeyCandidates: []string{"slug", "product_name", "name", "title"},
		Shape:         passthrough,
	},
	"FAQs": {
		Dir:           "schemas/faqs",
		KeyCandidates: []string{"slug", "question"},
		Shape:         shapeFAQ,
	},
	"Help Articles": {
		Dir:           "schemas/help-articles",
		KeyCandidates: []string{"slug", "title"},
		Markdown:      true,
	},
	"Reviews": {
		Dir:           "schemas/reviews",
		KeyCandidates: []string{"slug", "review_id", "title", "customer_name", "author"},
		Shape:         passthrough,
	},
	"Locations": {
		Dir:           "schemas/locations",
		KeyCandidates: []string{"slug", "location_id", "location_name", "entity_name", "name"},
		Shape:         passthrough,
	},
	"Team": {
		Dir:           "schemas/team",
		KeyCandidates: []string{"slug", "member_name", "name", "title"},
		Shape:         shapeTeam,
	},
	"Awards & Certifications": {
		Dir:           "schemas/awards",
		KeyCandidates: []string{"slug", "title", "name", "award_name"},
		Shape:         passthrough,
	},
	// some workbooks carry either spelling
	"Press/News Mentions": {
		Dir:           "schemas/press",
		KeyCandidates: []string{"slug", "title", "name", "press_id"},
		Shape:         passthrough,
	},
	"PressNews Mentions": {
		Dir:           "schemas/press",
		KeyCandidates: []string{"slug", "title", "name", "press_id"},
		Shape:         passthrough,
	},
	"Case Studies": {
		Dir:           "schemas/case-studies",
		KeyCandidates: []string{"slug", "case_id", "title", "name"},
		Shape:         passthrough,
	},
}

// Service reads the workbook and writes content files. The same key
// always lands in the same file, re-ingesting overwrites instead of
// duplicating.
type Service struct {
	Log *slog.Logger
	Out string // content root the schemas tree is written under
}

// Run ingests the workbook at path. Returns the number of items written.
func (s *Service) Run(ctx context.Context, path string) (int, error) {
	runID := uuid.New().String()
	lg := s.Log.With(slog.String("run_id", runID))

	f, err := excelize.OpenFile(path)
	if err != nil {
		return 0, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			lg.WarnCtx(ctx, "failed to close workbook", slog.Any("err", err))
		}
	}()

	total := 0
	for _, name := range f.GetSheetList() {
		sheet, ok := Sheets[name]
		if !ok {
			lg.InfoCtx(ctx, "skipping unsupported sheet", slog.String("sheet", name))
			continue
		}

		rows, err := f.GetRows(name)
		if err != nil {
			return total, fmt.Errorf("read sheet %s: %w", name, err)
		}
		if len(rows) < 2 {
			lg.InfoCtx(ctx, "sheet is empty, skipping", slog.String("sheet", name))
			continue
		}

		count, err := s.processSheet(ctx, lg, sheet, rows)
		if err != nil {
			return total, fmt.Errorf("process sheet %s: %w", name, err)
		}

		lg.InfoCtx(ctx, "sheet processed",
			slog.String("sheet", name), slog.Int("items", count))
		total += count
	}

	lg.InfoCtx(ctx, "ingest finished", slog.Int("total", total))
	return total, nil
}

func (s *Service) processSheet(ctx context.Context, lg *slog.Logger, sheet Sheet, rows [][]string) (int, error) {
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	count := 0
	for _, cells := range rows[1:] {
		row := map[string]string{}
		for i, cell := range cells {
			if i >= len(headers) || headers[i] == "" {
				continue
			}
			if cell = strings.TrimSpace(cell); cell != "" {
				row[headers[i]] = cell
			}
		}
		if len(row) == 0 {
			continue
		}

		key := content.StableKey(row, sheet.KeyCandidates)

		var err error
		if sheet.Markdown {
			err = s.writeArticle(sheet.Dir, key, row)
		} else {
			err = s.writeRecord(sheet.Dir, key, sheet.Shape(row, key))
		}
		if err != nil {
			return count, err
		}

		lg.DebugCtx(ctx, "item written", slog.String("dir", sheet.Dir), slog.String("key", key))
		count++
	}

	return count, nil
}

func (s *Service) writeArticle(dir, key string, row map[string]string) error {
	title := row["title"]
	if title == "" {
		title = titleFromKey(key)
	}

	body := firstOf(row, "article", "content", "body")

	a := content.Article{Title: title, Slug: key, Body: body}
	return s.writeFile(filepath.Join(dir, key+".md"), a.Render())
}

func (s *Service) writeRecord(dir, key string, data map[string]any) error {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("marshal record %s: %w", key, err)
	}

	return s.writeFile(filepath.Join(dir, key+".json"), buf.Bytes())
}

func (s *Service) writeFile(rel string, data []byte) error {
	path := filepath.Join(s.Out, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("make dir for %s: %w", rel, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}

func passthrough(row map[string]string, _ string) map[string]any {
	data := make(map[string]any, len(row))
	for k, v := range row {
		data[k] = v
	}
	return data
}

func shapeService(row map[string]string, key string) map[string]any {
	data := map[string]any{
		"name": coalesce(firstOf(row, "service_name", "name", "title"), titleFromKey(key)),
	}
	setIfPresent(data, row, "description", "description")
	setIfPresent(data, row, "priceRange", "price_range")
	setIfPresent(data, row, "license", "license_number")
	setIfPresent(data, row, "barNumber", "bar_number")
	setIfPresent(data, row, "npiNumber", "npi_number")
	setIfPresent(data, row, "certification", "certification_body")
	return data
}

func shapeFAQ(row map[string]string, key string) map[string]any {
	return map[string]any{
		"question": coalesce(row["question"], titleFromKey(key)),
		"answer":   row["answer"],
	}
}

func shapeTeam(row map[string]string, key string) map[string]any {
	data := map[string]any{
		"name": coalesce(firstOf(row, "member_name", "name", "title"), titleFromKey(key)),
		"role": row["role"],
	}
	data["description"] = firstOf(row, "bio", "description")
	setIfPresent(data, row, "license", "license_number")
	setIfPresent(data, row, "barNumber", "bar_number")
	setIfPresent(data, row, "npiNumber", "npi_number")
	return data
}

func setIfPresent(data map[string]any, row map[string]string, to, from string) {
	if v := row[from]; v != "" {
		data[to] = v
	}
}

func firstOf(row map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := row[k]; v != "" {
			return v
		}
	}
	return ""
}

func coalesce(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// titleFromKey recovers a readable title from a slugified key.
func titleFromKey(key string) string {
	words := strings.Split(key, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
