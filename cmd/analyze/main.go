package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spacesedan/nluflow/config"
	"github.com/spacesedan/nluflow/internal/analysis"
	"github.com/spacesedan/nluflow/internal/logging"
	"github.com/spacesedan/nluflow/internal/models"
)

func main() {
	text := flag.String("text", "", "text to analyze")
	url := flag.String("url", "", "page to analyze")
	htmlFile := flag.String("html-file", "", "HTML file to analyze")
	featureList := flag.String("features", "sentiment,keywords", "comma separated features")
	limit := flag.Int64("limit", 0, "limit for keywords, concepts, entities and semantic roles")
	localOnly := flag.Bool("local-only", false, "never call the remote NLU service")
	flag.Parse()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	appCfg := config.Load()
	logging.InitLogger(appCfg.LogLevel)

	features, err := parseFeatures(*featureList, *limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	req := models.AnalyzeRequest{Text: *text, URL: *url, Features: features}
	if *htmlFile != "" {
		data, err := os.ReadFile(*htmlFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		req.HTML = string(data)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router, cleanup := analysis.NewRouterFromConfig(appCfg, *localOnly)
	defer cleanup()

	results, source, err := router.Analyze(ctx, req)
	if err != nil {
		slog.Error("[Analyze] Analysis failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Debug("[Analyze] Answered", slog.String("source", source))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// parseFeatures turns "sentiment,keywords" into a selection with default
// options. limit, when set, applies to every feature that has one.
func parseFeatures(list string, limit int64) (models.Features, error) {
	var lim *int64
	if limit > 0 {
		lim = models.Int64(limit)
	}

	b := models.NewFeaturesBuilder()
	for _, key := range strings.Split(list, ",") {
		switch strings.TrimSpace(key) {
		case "":
		case models.FeatureConcepts:
			b.Concepts(&models.ConceptsOptions{Limit: lim})
		case models.FeatureEmotion:
			b.Emotion(&models.EmotionOptions{})
		case models.FeatureEntities:
			b.Entities(&models.EntitiesOptions{Limit: lim})
		case models.FeatureKeywords:
			b.Keywords(&models.KeywordsOptions{Limit: lim})
		case models.FeatureMetadata:
			b.Metadata(models.Map{})
		case models.FeatureRelations:
			b.Relations(&models.RelationsOptions{})
		case models.FeatureSemanticRoles:
			b.SemanticRoles(&models.SemanticRolesOptions{Limit: lim})
		case models.FeatureSentiment:
			b.Sentiment(&models.SentimentOptions{})
		case models.FeatureCategories:
			categories := models.Map{}
			if lim != nil {
				categories["limit"] = models.NumberValue(float64(limit))
			}
			b.Categories(categories)
		default:
			return models.Features{}, fmt.Errorf("unknown feature %q", key)
		}
	}
	return b.Build(), nil
}
