package analysis

import (
	"log/slog"

	"github.com/spacesedan/nluflow/config"
	"github.com/spacesedan/nluflow/internal/clients"
)

// NewRouterFromConfig wires every local analyzer the config allows and, unless
// localOnly is set, the remote service. The returned func releases the
// emotion model.
func NewRouterFromConfig(cfg config.AppConfig, localOnly bool) (*Router, func()) {
	cleanup := func() {}

	sentiment := NewSentimentAnalyzer()
	analyzers := []FeatureAnalyzer{
		sentiment,
		NewMetadataAnalyzer(),
	}

	var classifier TextClassifier
	if cfg.Local.EmotionModelPath != "" {
		hc, err := NewHugotClassifier(cfg.Local.EmotionModelPath)
		if err != nil {
			slog.Warn("[Analysis] Emotion model unavailable, emotion stays remote",
				slog.String("error", err.Error()))
		} else {
			classifier = hc
			analyzers = append(analyzers, NewEmotionAnalyzer(hc))
			cleanup = func() {
				if err := hc.Close(); err != nil {
					slog.Warn("[Analysis] Failed to release emotion model",
						slog.String("error", err.Error()))
				}
			}
		}
	}
	analyzers = append(analyzers, NewKeywordsAnalyzer(sentiment, classifier, cfg.Local.KeywordsLimit))

	if llm := clients.GetOpenAIClient(); llm != nil {
		analyzers = append(analyzers, NewCategoriesAnalyzer(llm))
	}

	engine := NewEngine(NewPageFetcher(), analyzers...)

	var remote Analyzer
	if !localOnly && cfg.NLU.Enabled() {
		remote = clients.GetNLUClient()
	}

	slog.Info("[Analysis] Router ready",
		slog.Any("local_features", engine.Features()),
		slog.Bool("remote", remote != nil))
	return NewRouter(engine, remote), cleanup
}
