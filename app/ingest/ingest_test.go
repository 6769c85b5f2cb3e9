package ingest

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Semior001/aidhub/app/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/exp/slog"
)

func writeWorkbook(t *testing.T) string {
	t.Helper()

	f := excelize.NewFile()
	defer func() { require.NoError(t, f.Close()) }()

	require.NoError(t, f.SetSheetName("Sheet1", "Help Articles"))
	require.NoError(t, f.SetSheetRow("Help Articles", "A1", &[]any{"title ", "slug", "article"}))
	require.NoError(t, f.SetSheetRow("Help Articles", "A2", &[]any{"How Bail Works", "", "Bail is a deposit."}))
	require.NoError(t, f.SetSheetRow("Help Articles", "A3", &[]any{"", "dui-stops", "Officers need cause."}))

	_, err := f.NewSheet("FAQs")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("FAQs", "A1", &[]any{"question", "answer"}))
	require.NoError(t, f.SetSheetRow("FAQs", "A2", &[]any{"What is bail?", "A deposit the court holds."}))

	_, err = f.NewSheet("Services")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Services", "A1", &[]any{"service_name", "description", "price_range"}))
	require.NoError(t, f.SetSheetRow("Services", "A2", &[]any{"DUI Defense", "Representation for DUI charges.", "$$$"}))

	_, err = f.NewSheet("Unknown Sheet")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Unknown Sheet", "A1", &[]any{"whatever"}))
	require.NoError(t, f.SetSheetRow("Unknown Sheet", "A2", &[]any{"data"}))

	_, err = f.NewSheet("Reviews") // header only, must be skipped
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Reviews", "A1", &[]any{"author", "rating"}))

	path := filepath.Join(t.TempDir(), "master.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestService_Run(t *testing.T) {
	out := t.TempDir()
	svc := &Service{Log: slog.Default(), Out: out}

	total, err := svc.Run(context.Background(), writeWorkbook(t))
	require.NoError(t, err)
	assert.Equal(t, 4, total)

	t.Run("help article from title", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(out, "schemas/help-articles/how-bail-works.md"))
		require.NoError(t, err)

		articles, issues := content.ParseFile("how-bail-works.md", data)
		require.Len(t, articles, 1)
		require.Empty(t, issues)
		assert.Equal(t, "How Bail Works", articles[0].Title)
		assert.Equal(t, "how-bail-works", articles[0].Slug)
		assert.Equal(t, "Bail is a deposit.", articles[0].Body)
	})

	t.Run("explicit slug wins, title recovered", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(out, "schemas/help-articles/dui-stops.md"))
		require.NoError(t, err)

		articles, _ := content.ParseFile("dui-stops.md", data)
		require.Len(t, articles, 1)
		assert.Equal(t, "Dui Stops", articles[0].Title)
	})

	t.Run("faq shaped record", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(out, "schemas/faqs/what-is-bail.json"))
		require.NoError(t, err)

		var rec map[string]any
		require.NoError(t, json.Unmarshal(data, &rec))
		assert.Equal(t, "What is bail?", rec["question"])
		assert.Equal(t, "A deposit the court holds.", rec["answer"])
	})

	t.Run("service shaped record", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(out, "schemas/services/dui-defense.json"))
		require.NoError(t, err)

		var rec map[string]any
		require.NoError(t, json.Unmarshal(data, &rec))
		assert.Equal(t, "DUI Defense", rec["name"])
		assert.Equal(t, "$$$", rec["priceRange"])
	})

	t.Run("unknown and empty sheets produce nothing", func(t *testing.T) {
		_, err := os.Stat(filepath.Join(out, "schemas/reviews"))
		assert.True(t, os.IsNotExist(err))
	})
}

func TestService_Run_Overwrites(t *testing.T) {
	out := t.TempDir()
	svc := &Service{Log: slog.Default(), Out: out}
	path := writeWorkbook(t)

	_, err := svc.Run(context.Background(), path)
	require.NoError(t, err)
	_, err = svc.Run(context.Background(), path)
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(out, "schemas/help-articles"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestService_Run_MissingFile(t *testing.T) {
	svc := &Service{Log: slog.Default(), Out: t.TempDir()}
	_, err := svc.Run(context.Background(), filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}
