package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// weights of a term hit per field.
const (
	titleWeight    = 3
	keywordsWeight = 2
	bodyWeight     = 1
)

// Hit is a single search result with its score.
type Hit struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Score int    `json:"score"`
}

// Search runs term-weighted scoring over the whole catalog: hits in the
// title weigh more than ones in keywords, which weigh more than ones in
// the body. Results are ordered by score, ties by slug.
func Search(ctx context.Context, s Interface, query string, limit int) ([]Hit, error) {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil, nil
	}

	articles, err := s.List(ctx, ListRequest{})
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}

	var hits []Hit
	for _, a := range articles {
		title := strings.ToLower(a.Title)
		keywords := strings.ToLower(strings.Join(a.Keywords, " "))
		body := strings.ToLower(a.Body)

		score := 0
		for _, term := range terms {
			score += strings.Count(title, term) * titleWeight
			score += strings.Count(keywords, term) * keywordsWeight
			score += strings.Count(body, term) * bodyWeight
		}
		if score == 0 {
			continue
		}

		hits = append(hits, Hit{Slug: a.Slug, Title: a.Title, Score: score})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Slug < hits[j].Slug
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}
