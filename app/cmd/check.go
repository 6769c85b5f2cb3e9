package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Semior001/aidhub/app/content"
	"github.com/mattn/go-runewidth"
	"golang.org/x/exp/slog"
)

// Check is a command to validate the content tree and report issues.
type Check struct {
	Dir string `long:"dir" env:"DIR" default:"." description:"content root to check"`
}

// Execute runs the command.
func (c Check) Execute(_ []string) error {
	lg := slog.Default()

	corpus, err := content.Load(filepath.Join(c.Dir, "schemas", "help-articles"))
	if err != nil {
		return fmt.Errorf("load articles: %w", err)
	}
	corpus = content.Resolve(corpus)

	lg.Info("corpus loaded",
		slog.Int("articles", len(corpus.Articles)),
		slog.Int("issues", len(corpus.Issues)))

	if len(corpus.Issues) > 0 {
		printReport(corpus.Issues)
	}

	if errs := corpus.Errors(); len(errs) > 0 {
		return fmt.Errorf("%d blocking issues found", len(errs))
	}

	fmt.Println("content is valid")
	return nil
}

func printReport(issues []content.Issue) {
	sevW, ruleW, locW := 0, 0, 0
	locs := make([]string, len(issues))

	for i, issue := range issues {
		locs[i] = issue.Path
		if issue.Part > 0 {
			locs[i] = fmt.Sprintf("%s#%d", issue.Path, issue.Part)
		}

		sevW = max(sevW, runewidth.StringWidth(string(issue.Severity)))
		ruleW = max(ruleW, runewidth.StringWidth(issue.Rule))
		locW = max(locW, runewidth.StringWidth(locs[i]))
	}

	sb := &strings.Builder{}
	for i, issue := range issues {
		fmt.Fprintf(sb, "%s  %s  %s  %s\n",
			runewidth.FillRight(strings.ToUpper(string(issue.Severity)), sevW),
			runewidth.FillRight(issue.Rule, ruleW),
			runewidth.FillRight(locs[i], locW),
			issue.Msg,
		)
	}

	fmt.Fprint(os.Stderr, sb.String())
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
