package content

import (
	"crypto/md5" //nolint:gosec // non-cryptographic, key derivation only
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf16"
)

var (
	nonSlugRe    = regexp.MustCompile(`[^a-zA-Z0-9\s-]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Slugify produces a clean URL-friendly slug: strips everything but
// letters, digits, spaces and hyphens, collapses whitespace into a
// single hyphen and lowercases the result.
func Slugify(text string) string {
	text = nonSlugRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), "-")
	if text == "" {
		return "untitled"
	}
	return text
}

// fallbackKeys are tried when none of the explicit candidates is set.
var fallbackKeys = []string{
	"entity_name", "name", "title", "question", "member_name",
	"service_name", "product_name",
}

// StableKey derives a deterministic file key for a record: the first
// non-empty candidate field slugified, common naming fields as a
// fallback, and as a last resort a digest over the sorted payload.
func StableKey(payload map[string]string, candidates []string) string {
	if cand := firstNonEmpty(payload, candidates); cand != "" {
		return Slugify(cand)
	}
	if cand := firstNonEmpty(payload, fallbackKeys); cand != "" {
		return Slugify(cand)
	}

	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// same shape the workbook exporter hashed: a sorted JSON object
	sb := &strings.Builder{}
	sb.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(sb, "%s: %s", jsonEscape(k), jsonEscape(payload[k]))
	}
	sb.WriteString("}")

	digest := fmt.Sprintf("%x", md5.Sum([]byte(sb.String()))) //nolint:gosec
	return "item-" + digest[:12]
}

// jsonEscape quotes s the way json.dumps does with its default
// ensure_ascii: non-ASCII runes become lowercase \uXXXX escapes,
// astral ones a surrogate pair. Keeps digests stable across exporters.
func jsonEscape(s string) string {
	sb := &strings.Builder{}
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		default:
			switch {
			case r > 0xffff:
				r1, r2 := utf16.EncodeRune(r)
				fmt.Fprintf(sb, `\u%04x\u%04x`, r1, r2)
			case r < 0x20 || r > 0x7f:
				fmt.Fprintf(sb, `\u%04x`, r)
			default:
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func firstNonEmpty(payload map[string]string, keys []string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(payload[k]); v != "" {
			return v
		}
	}
	return ""
}
