package site

import (
	"encoding/json"
	"fmt"
	"html/template"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Semior001/aidhub/app/content"
	"github.com/samber/lo"
)

// PageNames lists the public pages in build order.
var PageNames = []string{
	"index.html", "about.html", "services.html",
	"testimonials.html", "faqs.html", "help.html", "contact.html",
}

// recordKinds are the schemas subtrees the pages are rendered from.
var recordKinds = []string{
	"organization", "services", "products", "faqs", "reviews",
	"locations", "team", "awards", "press", "case-studies",
}

// Data is everything the public pages are rendered from.
type Data struct {
	Articles []content.Article
	Records  map[string][]content.Record
	Files    []string // repo-relative raw data files
}

// LoadData reads the resolved corpus and the structured records from
// the content root.
func LoadData(root string) (Data, error) {
	corpus, err := content.Load(filepath.Join(root, "schemas", "help-articles"))
	if err != nil {
		return Data{}, fmt.Errorf("load articles: %w", err)
	}
	corpus = content.Resolve(corpus)

	d := Data{Articles: corpus.Articles, Records: map[string][]content.Record{}}
	for _, kind := range recordKinds {
		records, err := content.LoadRecords(filepath.Join(root, "schemas", kind))
		if err != nil {
			return Data{}, fmt.Errorf("load %s records: %w", kind, err)
		}
		content.SortRecords(records)
		d.Records[kind] = records
	}

	if d.Files, err = DataFiles(root); err != nil {
		return Data{}, fmt.Errorf("list data files: %w", err)
	}

	return d, nil
}

// Renderer renders the public pages from loaded data.
type Renderer struct {
	Origin Origin
	Now    func() time.Time
}

var shellTmpl = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>{{.SiteName}}{{if .Title}} — {{.Title}}{{end}}</title>
    <meta name="application-name" content="{{.SiteName}}">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <meta name="theme-color" content="#2c3e50">
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, sans-serif; max-width: 900px; margin: 0 auto; padding: 20px; line-height: 1.7; }
        h1, h2, h3 { color: #2c3e50; }
        a { color: #3498db; text-decoration: none; }
        a:hover { text-decoration: underline; }
        .page-header { background: #ecf0f1; padding: 2rem; border-radius: 8px; margin-bottom: 2rem; text-align: center; }
        .card { border: 1px solid #eee; padding: 1.5rem; border-radius: 8px; margin: 2rem 0; }
        .badge { background: #3498db; color: white; padding: 0.25rem 0.5rem; border-radius: 4px; font-size: 0.9em; }
        .toc { background: #fff; padding: 1rem; border: 1px solid #eee; border-radius: 8px; margin-bottom: 1.5rem; }
    </style>
</head>
<body>
    <nav style="background: #2c3e50; padding: 1rem; margin-bottom: 2rem;">
        <ul style="list-style: none; display: flex; gap: 2rem; margin: 0; padding: 0; flex-wrap: wrap; justify-content: center;">
            <li><a href="index.html" style="color: white;">Home</a></li>
            <li><a href="about.html" style="color: white;">About</a></li>
            <li><a href="services.html" style="color: white;">Services</a></li>
            <li><a href="testimonials.html" style="color: white;">Testimonials</a></li>
            <li><a href="faqs.html" style="color: white;">FAQs</a></li>
            <li><a href="help.html" style="color: white;">Help</a></li>
            <li><a href="contact.html" style="color: white;">Contact</a></li>
        </ul>
    </nav>
    <div class="page-header">
        <h1>{{if .Title}}{{.Title}}{{else}}{{.SiteName}}{{end}}</h1>
    </div>
    {{.Content}}
    <footer style="margin-top: 4rem; padding-top: 2rem; border-top: 1px solid #eee; color: #7f8c8d;">
        <p style="text-align:center;">© {{.Year}} — Generated from structured data. Last updated: {{.Updated}}</p>
    </footer>
</body>
</html>
`))

type shellData struct {
	SiteName string
	Title    string
	Content  template.HTML
	Year     int
	Updated  string
}

// Pages renders every public page; keys are file names.
func (r *Renderer) Pages(d Data) (map[string][]byte, error) {
	org := content.MergeOrgs(d.Records["organization"])
	siteName := r.siteName(org)

	builders := map[string]func(Data, content.Record) template.HTML{
		"index.html":        r.indexPage,
		"about.html":        r.aboutPage,
		"services.html":     r.servicesPage,
		"testimonials.html": r.testimonialsPage,
		"faqs.html":         r.faqsPage,
		"help.html":         r.helpPage,
		"contact.html":      r.contactPage,
	}

	titles := map[string]string{
		"index.html":        "Welcome to " + siteName,
		"about.html":        "",
		"services.html":     "Our Services",
		"testimonials.html": "Testimonials",
		"faqs.html":         "Frequently Asked Questions",
		"help.html":         "Help Center",
		"contact.html":      "Contact Us",
	}

	now := r.now()
	pages := map[string][]byte{}
	for _, name := range PageNames {
		sb := &strings.Builder{}
		err := shellTmpl.Execute(sb, shellData{
			SiteName: siteName,
			Title:    titles[name],
			Content:  builders[name](d, org),
			Year:     now.Year(),
			Updated:  now.UTC().Format("2006-01-02 15:04 UTC"),
		})
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", name, err)
		}
		pages[name] = []byte(sb.String())
	}

	return pages, nil
}

func (r *Renderer) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Renderer) siteName(org content.Record) string {
	if name := org.Get("entity_name", "name", "legal_name", "brand", "site_title"); name != "" {
		return name
	}
	_, repo, _ := strings.Cut(r.Origin.Slug, "/")
	if repo == "" {
		return "Site"
	}
	return titleWords(strings.ReplaceAll(repo, "-", " "))
}

func esc(s string) string { return template.HTMLEscapeString(s) }

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func (r *Renderer) indexPage(d Data, _ content.Record) template.HTML {
	sb := &strings.Builder{}

	sb.WriteString(`<p>Welcome to our AI-optimized data hub. Below are quick links to key sections, or browse all machine-readable files.</p>`)
	sb.WriteString(`<h2>Quick Navigation</h2><ul style="list-style: none; padding: 0;">`)
	links := [][2]string{
		{"About Us", "about.html"}, {"Our Services", "services.html"},
		{"Testimonials", "testimonials.html"}, {"FAQs", "faqs.html"},
		{"Help Center", "help.html"}, {"Contact Us", "contact.html"},
	}
	for _, l := range links {
		fmt.Fprintf(sb, `<li style="margin: 0.5rem 0;"><a href="%s">%s</a></li>`, l[1], esc(l[0]))
	}
	sb.WriteString(`</ul>`)

	sb.WriteString(`<h2 id="files">All Schema Files</h2><ul>`)
	for _, f := range d.Files {
		fmt.Fprintf(sb, `<li><a href="%s/%s" target="_blank">%s</a></li>`,
			esc(r.Origin.RawBase()), esc(f), esc(strings.TrimPrefix(f, "schemas/")))
	}
	sb.WriteString(`</ul>`)

	//nolint:gosec // built from escaped pieces only
	return template.HTML(sb.String())
}

func (r *Renderer) aboutPage(d Data, org content.Record) template.HTML {
	sb := &strings.Builder{}

	desc := org.Get("description")
	if desc == "" {
		desc = r.siteName(org) + " is a results-driven law firm focused on client advocacy and outstanding outcomes."
	}
	fmt.Fprintf(sb, `<section id="overview" class="card"><h2>Overview</h2><p>%s</p>`, esc(desc))
	if mission := org.Get("mission"); mission != "" {
		fmt.Fprintf(sb, `<h3>Our Mission</h3><p>%s</p>`, esc(mission))
	}
	if vision := org.Get("vision"); vision != "" {
		fmt.Fprintf(sb, `<h3>Our Vision</h3><p>%s</p>`, esc(vision))
	}
	sb.WriteString(`</section>`)

	sb.WriteString(`<section id="facts" class="card"><h2>Key Facts</h2><ul>`)
	facts := []struct {
		label string
		count int
	}{
		{"Services", len(d.Records["services"])},
		{"FAQs", len(d.Records["faqs"])},
		{"Help Articles", len(d.Articles)},
		{"Team Members", len(d.Records["team"])},
		{"Locations", len(d.Records["locations"])},
	}
	for _, f := range facts {
		fmt.Fprintf(sb, `<li><strong>%s:</strong> %d</li>`, esc(f.label), f.count)
	}
	if reviews := d.Records["reviews"]; len(reviews) > 0 {
		if avg, ok := averageRating(reviews); ok {
			fmt.Fprintf(sb, `<li><strong>Reviews:</strong> %d (avg %.1f)</li>`, len(reviews), avg)
		} else {
			fmt.Fprintf(sb, `<li><strong>Reviews:</strong> %d</li>`, len(reviews))
		}
	}
	sb.WriteString(`</ul></section>`)

	if socials := org.List("sameAs"); len(socials) > 0 || org.Get("website", "main_website_url", "url") != "" {
		sb.WriteString(`<section id="profiles" class="card"><h2>Social &amp; Profiles</h2><ul>`)
		if site := org.Get("website", "main_website_url", "url"); site != "" {
			fmt.Fprintf(sb, `<li><a href="%s" target="_blank" rel="nofollow">Website</a></li>`, esc(site))
		}
		for _, s := range socials {
			fmt.Fprintf(sb, `<li><a href="%s" target="_blank" rel="nofollow">%s</a></li>`, esc(s), esc(s))
		}
		sb.WriteString(`</ul></section>`)
	}

	sb.WriteString(jsonLD(r.siteName(org), org))

	//nolint:gosec // built from escaped pieces only
	return template.HTML(sb.String())
}

// jsonLD renders the LegalService structured-data block.
func jsonLD(siteName string, org content.Record) string {
	block := map[string]any{
		"@context": "https://schema.org",
		"@type":    "LegalService",
		"name":     siteName,
	}
	if v := org.Get("website", "main_website_url", "url"); v != "" {
		block["url"] = v
	}
	if v := org.Get("logo_url", "logo"); v != "" {
		block["logo"] = v
	}
	if v := org.Get("phone"); v != "" {
		block["telephone"] = v
	}
	if v := org.Get("email"); v != "" {
		block["email"] = v
	}
	if socials := org.List("sameAs"); len(socials) > 0 {
		block["sameAs"] = socials
	}

	data, err := json.Marshal(block)
	if err != nil {
		return ""
	}
	return `<script type="application/ld+json">` + string(data) + `</script>`
}

func averageRating(reviews []content.Record) (float64, bool) {
	var sum float64
	var n int
	for _, rev := range reviews {
		var rating float64
		if _, err := fmt.Sscanf(rev.Get("rating"), "%f", &rating); err == nil && rating > 0 {
			sum += rating
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func (r *Renderer) servicesPage(d Data, _ content.Record) template.HTML {
	services := d.Records["services"]
	if len(services) == 0 {
		return "<p>No services found yet.</p>"
	}

	sb := &strings.Builder{}
	for _, svc := range services {
		title := svc.Get("title", "service_name", "name", "headline", "category", "type", "label")
		if title == "" {
			title = titleFromPath(svc.Path)
		}
		slug := svc.Get("slug")
		if slug == "" {
			slug = content.Slugify(title)
		}

		fmt.Fprintf(sb, `<div class="card" id="%s"><h2>%s</h2>`, esc(slug), esc(title))
		if desc := svc.Get("description", "summary", "details", "body", "content"); desc != "" {
			fmt.Fprintf(sb, `<p>%s</p>`, esc(desc))
		}
		price := svc.Get("price", "priceRange", "price_range", "starting_price", "cost", "fee")
		if price == "" {
			price = "Contact for pricing"
		}
		fmt.Fprintf(sb, `<p><strong>Starting at:</strong> %s</p>`, esc(price))
		fmt.Fprintf(sb, `<a href="#%s" style="display: inline-block; margin-top: 1rem;">Permalink</a></div>`, esc(slug))
	}

	//nolint:gosec // built from escaped pieces only
	return template.HTML(sb.String())
}

func (r *Renderer) testimonialsPage(d Data, _ content.Record) template.HTML {
	reviews := d.Records["reviews"]
	if len(reviews) == 0 {
		return "<p>No testimonials found yet.</p>"
	}

	sb := &strings.Builder{}
	for _, rev := range reviews {
		author := rev.Get("customer_name", "author")
		if author == "" {
			author = "Anonymous"
		}
		quote := rev.Get("review_body", "quote", "review_title")
		if quote == "" {
			quote = "No review text provided."
		}

		rating := 5
		if _, err := fmt.Sscanf(rev.Get("rating"), "%d", &rating); err == nil {
			rating = lo.Clamp(rating, 0, 5)
		} else {
			rating = 5
		}
		stars := strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)

		fmt.Fprintf(sb, `<blockquote class="card" style="font-style: italic;"><p>“%s”</p>`, esc(quote))
		fmt.Fprintf(sb, `<footer style="margin-top: 1rem; font-style: normal;">— %s`, esc(author))
		if entity := rev.Get("entity_name"); entity != "" {
			fmt.Fprintf(sb, `, %s`, esc(entity))
		}
		fmt.Fprintf(sb, `</footer><div style="margin-top: 0.5rem; color: #f39c12;">%s</div></blockquote>`, stars)
	}

	//nolint:gosec // built from escaped pieces only
	return template.HTML(sb.String())
}

// tocItem is one table-of-contents row, grouped by category.
type tocItem struct {
	anchor, title, category string
}

func tocBlock(items []tocItem) string {
	byCat := map[string][]tocItem{}
	for _, item := range items {
		byCat[item.category] = append(byCat[item.category], item)
	}
	cats := lo.Keys(byCat)
	sort.Strings(cats)

	sb := &strings.Builder{}
	sb.WriteString(`<div class="toc"><h2>Table of Contents</h2>`)
	for _, cat := range cats {
		fmt.Fprintf(sb, `<h3 style="margin-bottom:0.25rem;">%s</h3><ul>`, esc(cat))
		for _, item := range byCat[cat] {
			fmt.Fprintf(sb, `<li><a href="#%s">%s</a></li>`, esc(item.anchor), esc(item.title))
		}
		sb.WriteString(`</ul>`)
	}
	sb.WriteString(`</div>`)
	return sb.String()
}

func anchorOf(title string) string {
	anchor := content.Slugify(title)
	if len(anchor) > 80 {
		anchor = anchor[:80]
	}
	return anchor
}

func (r *Renderer) faqsPage(d Data, _ content.Record) template.HTML {
	faqs := d.Records["faqs"]

	var items []tocItem
	sb := &strings.Builder{}
	for _, faq := range faqs {
		question := faq.Get("question")
		if question == "" {
			continue
		}
		anchor := anchorOf(question)
		cat := content.GuessCategory(content.Article{Title: question, Keywords: faq.List("keywords")})
		items = append(items, tocItem{anchor: anchor, title: question, category: cat})

		fmt.Fprintf(sb, `<div class="card" id="%s"><h3 style="margin: 0 0 0.5rem 0;">%s</h3><p>%s</p></div>`,
			esc(anchor), esc(question), esc(faq.Get("answer")))
	}

	if len(items) == 0 {
		return "<p>No FAQs found yet.</p>"
	}

	//nolint:gosec // built from escaped pieces only
	return template.HTML(tocBlock(items) + sb.String())
}

func (r *Renderer) helpPage(d Data, _ content.Record) template.HTML {
	if len(d.Articles) == 0 {
		return "<p>No help articles found yet.</p>"
	}

	var items []tocItem
	sb := &strings.Builder{}
	for _, a := range d.Articles {
		title := a.Title
		if title == "" {
			title = titleWords(strings.ReplaceAll(a.Slug, "-", " "))
		}
		anchor := anchorOf(title)
		items = append(items, tocItem{anchor: anchor, title: title, category: content.GuessCategory(a)})

		fmt.Fprintf(sb, `<div class="card" id="%s"><h2>%s</h2>%s</div>`,
			esc(anchor), esc(title), RenderMarkdown(a.Body))
	}

	//nolint:gosec // built from escaped pieces only
	return template.HTML(tocBlock(items) + sb.String())
}

func (r *Renderer) contactPage(d Data, _ content.Record) template.HTML {
	locations := d.Records["locations"]

	sb := &strings.Builder{}
	sb.WriteString(`<p>We’d love to hear from you. Reach out using the details below or visit us at our offices.</p>`)

	var quickLabel, quickPhone, quickEmail string
	seen := map[string]struct{}{}
	cards := &strings.Builder{}

	for _, loc := range locations {
		key := content.LocationKey(loc)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		entity := loc.Get("entity_name", "location_name", "organization", "company", "name")
		if entity == "" {
			entity = "Location"
		}
		person := loc.Get("contact_person", "contact", "contact_name")
		phone := loc.Get("phone", "telephone", "tel", "phone_number")
		email := loc.Get("email", "contact_email", "email_address")
		addr := loc.Get("address", "address_street", "streetAddress", "street")
		hours := loc.Get("hours", "openingHours", "opening_hours", "business_hours")

		if quickLabel == "" {
			quickLabel = lo.Ternary(person != "", person, entity)
		}
		if quickPhone == "" {
			quickPhone = phone
		}
		if quickEmail == "" {
			quickEmail = email
		}

		fmt.Fprintf(cards, `<div class="card"><h3>%s</h3><p>`, esc(entity))
		if person != "" {
			fmt.Fprintf(cards, `<strong>Contact:</strong> %s<br>`, esc(person))
		}
		if addr != "" {
			fmt.Fprintf(cards, `<strong>Address:</strong> %s<br>`, esc(addr))
		}
		if phone != "" {
			fmt.Fprintf(cards, `<strong>Phone:</strong> <a href="tel:%s">%s</a><br>`, esc(phone), esc(phone))
		}
		if email != "" {
			fmt.Fprintf(cards, `<strong>Email:</strong> <a href="mailto:%s">%s</a><br>`, esc(email), esc(email))
		}
		if hours != "" {
			fmt.Fprintf(cards, `<strong>Hours:</strong> %s<br>`, esc(hours))
		}
		cards.WriteString(`</p></div>`)
	}

	if quickLabel != "" || quickPhone != "" || quickEmail != "" {
		sb.WriteString(`<div class="card"><h2>Quick Contact</h2>`)
		if quickLabel != "" {
			fmt.Fprintf(sb, `<p><strong>%s</strong></p>`, esc(quickLabel))
		}
		if quickPhone != "" {
			fmt.Fprintf(sb, `<p><strong>Phone:</strong> <a href="tel:%s">%s</a></p>`, esc(quickPhone), esc(quickPhone))
		}
		if quickEmail != "" {
			fmt.Fprintf(sb, `<p><strong>Email:</strong> <a href="mailto:%s">%s</a></p>`, esc(quickEmail), esc(quickEmail))
		}
		sb.WriteString(`</div>`)
	}

	if cards.Len() == 0 {
		sb.WriteString(`<p>No contact locations found yet.</p>`)
	} else {
		sb.WriteString(cards.String())
	}

	//nolint:gosec // built from escaped pieces only
	return template.HTML(sb.String())
}

func titleFromPath(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return titleWords(strings.NewReplacer("-", " ", "_", " ").Replace(base))
}
