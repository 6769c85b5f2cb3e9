package content

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Record is a structured sibling of the help articles: entity info,
// FAQs, services, reviews, locations and the like, stored as JSON or
// YAML under the schemas tree.
type Record struct {
	Path string
	Data map[string]any
}

// Get returns the first non-empty string among the given keys.
func (r Record) Get(keys ...string) string {
	for _, k := range keys {
		if s := asString(r.Data[k]); s != "" {
			return s
		}
	}
	return ""
}

// List returns the value under key as a string list; a comma-separated
// scalar is split the same way keywords are.
func (r Record) List(key string) []string {
	return asList(r.Data[key])
}

// LoadRecords reads every .json/.yaml/.yml file under dir; a file may
// hold a single record or a list of them.
func LoadRecords(dir string) ([]Record, error) {
	var records []Record

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if name := d.Name(); name != "." && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			return nil
		}

		parsed, err := parseRecords(ext, data)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		for _, rec := range parsed {
			records = append(records, Record{Path: filepath.ToSlash(rel), Data: rec})
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	return records, nil
}

func parseRecords(ext string, data []byte) ([]map[string]any, error) {
	var raw any
	if ext == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	}

	switch v := raw.(type) {
	case []any:
		var out []map[string]any
		for _, item := range v {
			if m, ok := normalizeMap(item); ok {
				out = append(out, m)
			}
		}
		return out, nil
	default:
		if m, ok := normalizeMap(raw); ok {
			return []map[string]any{m}, nil
		}
		return nil, nil
	}
}

// normalizeMap converts yaml's map[any]any trees to map[string]any.
func normalizeMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

// orgScalarOrder is the field preference used when merging org records:
// the first record carrying a non-empty value wins.
var orgScalarOrder = []string{
	"entity_name", "name", "legal_name", "brand", "site_title",
	"description", "mission", "vision",
	"logo_url", "logo",
	"website", "main_website_url", "url",
	"phone", "email",
}

// socialKeys are unioned rather than picked.
var socialKeys = []string{"sameAs", "same_as", "social", "social_links"}

// MergeOrgs merges several org records into one: scalars are picked
// first-non-empty over the preference order, social-profile lists are
// unioned with order-preserving dedup under the "sameAs" key.
func MergeOrgs(orgs []Record) Record {
	merged := Record{Data: map[string]any{}}

	for _, key := range orgScalarOrder {
		for _, org := range orgs {
			if v := asString(org.Data[key]); v != "" {
				merged.Data[key] = v
				break
			}
		}
	}

	var socials []string
	seen := map[string]struct{}{}
	for _, org := range orgs {
		for _, key := range socialKeys {
			for _, s := range asList(org.Data[key]) {
				if _, ok := seen[s]; ok {
					continue
				}
				seen[s] = struct{}{}
				socials = append(socials, s)
			}
		}
	}
	if len(socials) > 0 {
		merged.Data["sameAs"] = socials
	}

	return merged
}

var nonDigitRe = regexp.MustCompile(`\D+`)

// LocationKey builds the dedup signature of a location record: entity,
// contact person, digits-only phone, lowercase email, address and map
// URL, normalized and joined.
func LocationKey(rec Record) string {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

	parts := []string{
		norm(rec.Get("entity_name", "organization", "company", "location_name", "name")),
		norm(rec.Get("contact_person", "contact", "contact_name")),
		nonDigitRe.ReplaceAllString(rec.Get("phone", "telephone", "tel", "phone_number"), ""),
		norm(rec.Get("email", "contact_email", "email_address")),
		norm(rec.Get("address", "address_street", "streetAddress", "street")),
		norm(rec.Get("map_embed_url", "google_maps_url", "maps_url", "map_url")),
	}

	return strings.Join(parts, "|")
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case int, int64, float64, bool:
		return strings.TrimSpace(fmt.Sprint(s))
	case map[string]any:
		// json-ld style {"@value": "..."} wrapper
		return asString(s["@value"])
	}
	return ""
}

func asList(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case []any:
		var out []string
		for _, item := range val {
			if s := asString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		var out []string
		for _, s := range val {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, s := range strings.Split(val, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// SortRecords orders records by path for deterministic page output.
func SortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool { return records[i].Path < records[j].Path })
}
