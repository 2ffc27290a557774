package analysis

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/spacesedan/nluflow/internal/models"
)

var publicationDateSelectors = []string{
	`meta[property="article:published_time"]`,
	`meta[name="pubdate"]`,
	`meta[name="date"]`,
	`meta[itemprop="datePublished"]`,
}

// MetadataAnalyzer reads document metadata out of HTML. Plain text input has
// none, so the result stays empty.
type MetadataAnalyzer struct{}

func NewMetadataAnalyzer() *MetadataAnalyzer {
	return &MetadataAnalyzer{}
}

func (a *MetadataAnalyzer) Feature() string { return models.FeatureMetadata }

func (a *MetadataAnalyzer) Analyze(ctx context.Context, doc Document, features models.Features, out *models.AnalysisResults) error {
	if !features.Has(models.FeatureMetadata) {
		return nil
	}
	if doc.HTML == "" {
		out.Metadata = &models.MetadataResult{}
		return nil
	}

	page, err := goquery.NewDocumentFromReader(strings.NewReader(doc.HTML))
	if err != nil {
		return fmt.Errorf("[MetadataAnalyzer] failed to parse HTML: %w", err)
	}

	out.Metadata = ExtractMetadata(page, doc.URL)
	return nil
}

// ExtractMetadata pulls title, authors, publication date, feeds and the lead
// image from page. Relative links are resolved against base when it parses.
func ExtractMetadata(page *goquery.Document, base string) *models.MetadataResult {
	result := &models.MetadataResult{
		Title: firstNonEmpty(
			metaContent(page, `meta[property="og:title"]`),
			strings.TrimSpace(page.Find("title").First().Text()),
		),
		Image: resolve(base, metaContent(page, `meta[property="og:image"]`)),
	}

	for _, selector := range publicationDateSelectors {
		if date := metaContent(page, selector); date != "" {
			result.PublicationDate = date
			break
		}
	}

	seen := make(map[string]struct{})
	page.Find(`meta[name="author"], meta[property="article:author"], [rel="author"]`).Each(func(_ int, s *goquery.Selection) {
		name := strings.TrimSpace(s.AttrOr("content", s.Text()))
		if name == "" {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		result.Authors = append(result.Authors, models.Author{Name: name})
	})

	page.Find(`link[rel="alternate"]`).Each(func(_ int, s *goquery.Selection) {
		kind := s.AttrOr("type", "")
		if !strings.Contains(kind, "rss") && !strings.Contains(kind, "atom") {
			return
		}
		if href := resolve(base, s.AttrOr("href", "")); href != "" {
			result.Feeds = append(result.Feeds, models.Feed{Link: href})
		}
	})

	return result
}

func metaContent(page *goquery.Document, selector string) string {
	return strings.TrimSpace(page.Find(selector).First().AttrOr("content", ""))
}

func resolve(base, ref string) string {
	if ref == "" || base == "" {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
