package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/spacesedan/nluflow/internal/models"
)

const (
	DEFAULT_CATEGORIES_LIMIT = 3
	MAX_CATEGORIES_LIMIT     = 10
	MAX_CATEGORY_PROMPT_TEXT = 8000
)

// CategoryTaxonomy is the top level of the hierarchy the model picks from.
// Each entry lists a few second level labels as hints.
var CategoryTaxonomy = map[string][]string{
	"/technology and computing":     {"software", "hardware", "internet technology", "consumer electronics"},
	"/business and finance":         {"investing", "personal finance", "economy", "small business"},
	"/news and politics":            {"politics", "world news", "elections", "government"},
	"/art and entertainment":        {"movies", "television", "music", "celebrity"},
	"/health and fitness":           {"disease", "nutrition", "medicine", "mental health"},
	"/science":                      {"physics", "biology", "space and astronomy", "chemistry"},
	"/sports":                       {"basketball", "american football", "soccer", "baseball"},
	"/society":                      {"relationships", "self improvement", "social issues", "dating"},
	"/hobbies and interests":        {"internet culture", "memes", "games", "collecting"},
	"/law, govt and politics":       {"legal issues", "crime", "law enforcement", "courts"},
	"/education":                    {"school", "college", "homework and study tips"},
	"/travel":                       {"tourist destinations", "hotels", "air travel"},
	"/food and drink":               {"cooking", "restaurants", "beverages"},
	"/automotive and vehicles":      {"cars", "electric vehicles", "motorcycles"},
	"/home and garden":              {"home improvement", "gardening", "interior decorating"},
	"/style and fashion":            {"clothing", "beauty", "accessories"},
	"/family and parenting":         {"parenting", "children", "pregnancy"},
	"/real estate":                  {"buying and selling homes", "renting"},
	"/careers":                      {"job search", "remote work", "career advice"},
	"/religion and spirituality":    {"christianity", "islam", "buddhism"},
	"/pets":                         {"dogs", "cats"},
	"/shopping":                     {"coupons and discounts", "online shopping"},
	"/environment and green living": {"climate change", "renewable energy", "recycling"},
}

// ChatCompleter answers one system plus user prompt.
type ChatCompleter interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// CategoriesAnalyzer asks a chat model to place the document in the category
// hierarchy.
type CategoriesAnalyzer struct {
	llm ChatCompleter
}

func NewCategoriesAnalyzer(llm ChatCompleter) *CategoriesAnalyzer {
	return &CategoriesAnalyzer{llm: llm}
}

func (a *CategoriesAnalyzer) Feature() string { return models.FeatureCategories }

func (a *CategoriesAnalyzer) Analyze(ctx context.Context, doc Document, features models.Features, out *models.AnalysisResults) error {
	if !features.Has(models.FeatureCategories) {
		return nil
	}
	if strings.TrimSpace(doc.Text) == "" {
		out.Categories = []models.CategoriesResult{}
		return nil
	}

	limit := CategoriesLimit(features.Categories())
	reply, err := a.llm.Complete(ctx, categoriesSystemPrompt(limit), LimitText(doc.Text, MAX_CATEGORY_PROMPT_TEXT))
	if err != nil {
		return fmt.Errorf("[CategoriesAnalyzer] completion failed: %w", err)
	}

	categories, err := ParseCategories(reply)
	if err != nil {
		slog.Warn("[CategoriesAnalyzer] Unparseable completion",
			slog.String("error", err.Error()))
		return err
	}

	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].Score > categories[j].Score
	})
	if len(categories) > limit {
		categories = categories[:limit]
	}
	out.Categories = categories
	return nil
}

// CategoriesLimit reads the "limit" option, defaulting to three and capped at
// ten. Non numeric limits fall back to the default.
func CategoriesLimit(opts models.Map) int {
	v, ok := opts["limit"]
	if !ok {
		return DEFAULT_CATEGORIES_LIMIT
	}
	n, ok := v.AsNumber()
	if !ok || n < 1 {
		return DEFAULT_CATEGORIES_LIMIT
	}
	if n > MAX_CATEGORIES_LIMIT {
		return MAX_CATEGORIES_LIMIT
	}
	return int(n)
}

// ParseCategories decodes the model reply, tolerating a markdown code fence
// around the JSON.
func ParseCategories(reply string) ([]models.CategoriesResult, error) {
	reply = strings.TrimSpace(reply)
	reply = strings.TrimPrefix(reply, "```json")
	reply = strings.TrimPrefix(reply, "```")
	reply = strings.TrimSuffix(reply, "```")

	var payload struct {
		Categories []models.CategoriesResult `json:"categories"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(reply)), &payload); err != nil {
		return nil, fmt.Errorf("[CategoriesAnalyzer] failed to decode categories: %w", err)
	}

	categories := make([]models.CategoriesResult, 0, len(payload.Categories))
	for _, c := range payload.Categories {
		label := strings.ToLower(strings.TrimSpace(c.Label))
		if label == "" {
			continue
		}
		if !strings.HasPrefix(label, "/") {
			label = "/" + label
		}
		categories = append(categories, models.CategoriesResult{Label: label, Score: clamp01(c.Score)})
	}
	return categories, nil
}

func categoriesSystemPrompt(limit int) string {
	tops := make([]string, 0, len(CategoryTaxonomy))
	for top := range CategoryTaxonomy {
		tops = append(tops, top)
	}
	sort.Strings(tops)

	var b strings.Builder
	b.WriteString("You classify documents into a hierarchical taxonomy. ")
	b.WriteString("Labels are lower case paths such as /technology and computing/software. ")
	b.WriteString("Start every label with one of these top level categories:\n")
	for _, top := range tops {
		fmt.Fprintf(&b, "- %s (e.g. %s)\n", top, strings.Join(CategoryTaxonomy[top], ", "))
	}
	fmt.Fprintf(&b, "Return at most %d labels, most relevant first, each with a score between 0 and 1. ", limit)
	b.WriteString(`Reply with JSON only: {"categories":[{"label":"/top/sub","score":0.9}]}`)
	return b.String()
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
