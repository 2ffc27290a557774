package analysis

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/spacesedan/nluflow/internal/models"
	"golang.org/x/sync/errgroup"
)

// Fetcher retrieves the HTML behind a URL request.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Engine runs the local analyzers of every requested feature it supports.
type Engine struct {
	analyzers map[string]FeatureAnalyzer
	fetcher   Fetcher
}

func NewEngine(fetcher Fetcher, analyzers ...FeatureAnalyzer) *Engine {
	e := &Engine{
		analyzers: make(map[string]FeatureAnalyzer, len(analyzers)),
		fetcher:   fetcher,
	}
	for _, a := range analyzers {
		if a == nil {
			continue
		}
		e.analyzers[a.Feature()] = a
	}
	return e
}

func (e *Engine) Supports(key string) bool {
	_, ok := e.analyzers[key]
	return ok
}

// Features lists the supported feature keys in wire order.
func (e *Engine) Features() []string {
	var keys []string
	for _, key := range models.FeatureKeys() {
		if e.Supports(key) {
			keys = append(keys, key)
		}
	}
	return keys
}

// Analyze computes every requested feature. A requested feature without an
// analyzer fails the whole request with *models.UnsupportedFeatureError.
func (e *Engine) Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.AnalysisResults, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	requested := req.Features.Requested()
	var unsupported []string
	for _, key := range requested {
		if !e.Supports(key) {
			unsupported = append(unsupported, key)
		}
	}
	if len(unsupported) > 0 {
		return nil, &models.UnsupportedFeatureError{Features: unsupported}
	}

	var page string
	if req.URL != "" {
		if e.fetcher == nil {
			return nil, &models.ValidationError{Field: "url", Reason: "no page fetcher configured"}
		}
		var err error
		if page, err = e.fetcher.Fetch(ctx, req.URL); err != nil {
			return nil, err
		}
	}
	doc := PrepareDocument(req, page)

	start := time.Now()
	partials := make([]models.AnalysisResults, len(requested))
	g, gctx := errgroup.WithContext(ctx)
	for i, key := range requested {
		analyzer := e.analyzers[key]
		out := &partials[i]
		g.Go(func() error {
			return analyzer.Analyze(gctx, doc, req.Features, out)
		})
	}
	if err := g.Wait(); err != nil {
		slog.Error("[Engine] Local analysis failed",
			slog.Any("features", requested),
			slog.String("error", err.Error()))
		return nil, err
	}

	results := &models.AnalysisResults{
		Language:     doc.Language,
		RetrievedURL: doc.RetrievedURL,
		Usage: &models.Usage{
			TextUnits:      1,
			TextCharacters: int64(utf8.RuneCountInString(doc.Text)),
			Features:       int64(len(requested)),
		},
	}
	if req.ReturnAnalyzedText != nil && *req.ReturnAnalyzedText {
		results.AnalyzedText = doc.Text
	}
	for i := range partials {
		results.Merge(&partials[i])
	}

	slog.Debug("[Engine] Local analysis complete",
		slog.Any("features", requested),
		slog.Duration("elapsed", time.Since(start)))
	return results, nil
}
