package feed

import (
	"bytes"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"

	"github.com/bilgisen/newsdigest/internal/models"
)

// Parser turns feed documents into RawItems
type Parser struct {
	maxItems     int
	aliases      map[string]string
	htmlTagRegex *regexp.Regexp
	hashtagRegex *regexp.Regexp
	keywordRegex *regexp.Regexp
}

// NewParser builds a parser that keeps at most maxItems entries per feed and
// tags and categorizes them with taxonomy
func NewParser(maxItems int, taxonomy Taxonomy) *Parser {
	p := &Parser{
		maxItems:     maxItems,
		aliases:      taxonomy.Aliases,
		htmlTagRegex: regexp.MustCompile(`<[^>]*>`),
		hashtagRegex: regexp.MustCompile(`(?:^|\s)#([\p{L}\p{N}_]{2,})`),
	}
	if len(taxonomy.Tags) > 0 {
		quoted := make([]string, len(taxonomy.Tags))
		for i, k := range taxonomy.Tags {
			quoted[i] = regexp.QuoteMeta(strings.ToLower(k))
		}
		p.keywordRegex = regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
	}
	return p
}

// Parse decodes an RSS, Atom or JSON feed and normalizes its entries.
// It also returns how many entries were discarded for missing fields.
func (p *Parser) Parse(data []byte, source models.Source) ([]models.RawItem, int, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse feed %s: %w", source.ID, err)
	}

	items := make([]models.RawItem, 0, min(len(feed.Items), p.maxItems))
	skipped := 0
	for _, entry := range feed.Items {
		if len(items) == p.maxItems {
			break
		}
		item, ok := p.NormalizeEntry(entry, source)
		if !ok {
			skipped++
			continue
		}
		items = append(items, item)
	}
	return items, skipped, nil
}

// NormalizeEntry converts one feed entry. Entries without title, link or timestamp are rejected.
func (p *Parser) NormalizeEntry(entry *gofeed.Item, source models.Source) (models.RawItem, bool) {
	if entry == nil {
		return models.RawItem{}, false
	}

	title := p.CleanHTML(entry.Title)
	link := entryLink(entry)
	published := entryTime(entry)
	if title == "" || link == "" || published == nil {
		return models.RawItem{}, false
	}

	description := p.CleanHTML(entry.Description)
	content := p.plainText(entry.Content, link)
	if content == "" {
		content = description
	}

	item := models.RawItem{
		Title:       title,
		Description: description,
		Content:     content,
		URL:         link,
		PublishedAt: published.UTC(),
		SourceName:  source.Name,
		Author:      entryAuthor(entry),
		ImageURL:    entryImage(entry),
		Language:    entryLanguage(source),
		Categories:  p.NormalizeCategories(entryTerms(entry), source.Category),
	}
	item.Tags = p.ExtractTags(item.Title + "\n" + item.Content)
	return item, true
}

// CleanHTML removes HTML tags and normalizes whitespace
func (p *Parser) CleanHTML(input string) string {
	cleaned := p.htmlTagRegex.ReplaceAllString(input, " ")
	cleaned = html.UnescapeString(cleaned)
	return strings.Join(strings.Fields(cleaned), " ")
}

// plainText prefers readability extraction for real article markup and falls back to tag stripping
func (p *Parser) plainText(markup, link string) string {
	if !strings.Contains(markup, "<") {
		return strings.Join(strings.Fields(html.UnescapeString(markup)), " ")
	}
	if len(markup) > 500 {
		pageURL, _ := url.Parse(link)
		if article, err := readability.FromReader(strings.NewReader(markup), pageURL); err == nil {
			if text := strings.Join(strings.Fields(article.TextContent), " "); text != "" {
				return text
			}
		}
	}
	return p.CleanHTML(markup)
}

// NormalizeCategories flattens provider taxonomy terms. Known categories come first so the
// primary category is always a category id; the source category is used when none is known.
func (p *Parser) NormalizeCategories(terms []string, fallback string) []string {
	var known, extra []string
	seen := make(map[string]bool)
	for _, term := range terms {
		for _, part := range strings.FieldsFunc(term, func(r rune) bool { return r == '/' || r == ',' || r == '|' }) {
			t := strings.ToLower(strings.Join(strings.Fields(part), " "))
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			if id, ok := p.aliases[t]; ok {
				if !seen["id:"+id] {
					seen["id:"+id] = true
					known = append(known, id)
				}
				continue
			}
			extra = append(extra, t)
		}
	}

	if len(known) == 0 {
		if fallback == "" {
			fallback = models.DefaultCategoryID
		}
		known = []string{fallback}
	}
	return append(known, extra...)
}

// ExtractTags collects hashtags and known keywords, lowercased and deduplicated
func (p *Parser) ExtractTags(text string) []string {
	tags := []string{}
	seen := make(map[string]bool)
	add := func(tag string) {
		tag = strings.ToLower(tag)
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}

	for _, m := range p.hashtagRegex.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	if p.keywordRegex != nil {
		for _, m := range p.keywordRegex.FindAllString(text, -1) {
			add(m)
		}
	}
	return tags
}

// ExtractImage returns the src of the first <img> in markup
func ExtractImage(markup string) string {
	if !strings.Contains(markup, "<img") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img[src]").First().Attr("src")
	return strings.TrimSpace(src)
}

func entryLink(entry *gofeed.Item) string {
	if link := strings.TrimSpace(entry.Link); link != "" {
		return link
	}
	for _, l := range entry.Links {
		if l = strings.TrimSpace(l); l != "" {
			return l
		}
	}
	return ""
}

func entryTime(entry *gofeed.Item) *time.Time {
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed
	}
	if entry.UpdatedParsed != nil {
		return entry.UpdatedParsed
	}
	return nil
}

func entryAuthor(entry *gofeed.Item) string {
	if entry.Author != nil && entry.Author.Name != "" {
		return entry.Author.Name
	}
	for _, a := range entry.Authors {
		if a != nil && a.Name != "" {
			return a.Name
		}
	}
	if entry.DublinCoreExt != nil && len(entry.DublinCoreExt.Creator) > 0 {
		return entry.DublinCoreExt.Creator[0]
	}
	return ""
}

func entryImage(entry *gofeed.Item) string {
	if src := ExtractImage(entry.Content); src != "" {
		return src
	}
	if src := ExtractImage(entry.Description); src != "" {
		return src
	}
	if entry.Image != nil && entry.Image.URL != "" {
		return entry.Image.URL
	}
	for _, enc := range entry.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	return ""
}

func entryTerms(entry *gofeed.Item) []string {
	terms := append([]string{}, entry.Categories...)
	if entry.DublinCoreExt != nil {
		terms = append(terms, entry.DublinCoreExt.Subject...)
	}
	return terms
}

func entryLanguage(source models.Source) string {
	if source.Language == "" {
		return "und"
	}
	return source.Language
}
