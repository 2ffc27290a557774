package analysis

import (
	"context"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/spacesedan/nluflow/internal/models"
)

const (
	POSITIVE_THRESHOLD = 0.20
	NEGATIVE_THRESHOLD = -0.20
)

// SentimentAnalyzer scores text with VADER.
type SentimentAnalyzer struct {
	vader *govader.SentimentIntensityAnalyzer
}

func NewSentimentAnalyzer() *SentimentAnalyzer {
	return &SentimentAnalyzer{vader: govader.NewSentimentIntensityAnalyzer()}
}

func (a *SentimentAnalyzer) Feature() string { return models.FeatureSentiment }

func (a *SentimentAnalyzer) Analyze(ctx context.Context, doc Document, features models.Features, out *models.AnalysisResults) error {
	opts := features.Sentiment()
	if opts == nil {
		return nil
	}

	result := &models.SentimentResult{}
	if opts.Document == nil || *opts.Document {
		score, label := a.Score(doc.Text)
		result.Document = &models.DocumentSentimentResults{Label: label, Score: score}
	}

	if len(opts.Targets) > 0 {
		sentences := doc.Sentences()
		for _, target := range opts.Targets {
			score, found := a.scoreMentions(sentences, target)
			if !found {
				continue
			}
			result.Targets = append(result.Targets, models.TargetedSentimentResults{
				Text:  target,
				Score: score,
			})
		}
	}

	out.Sentiment = result
	return nil
}

// Score returns the VADER compound score of text and its label.
func (a *SentimentAnalyzer) Score(text string) (float64, string) {
	score := a.vader.PolarityScores(text).Compound
	return score, SentimentLabel(score)
}

// scoreMentions averages the compound score of the sentences mentioning target.
func (a *SentimentAnalyzer) scoreMentions(sentences []string, target string) (float64, bool) {
	needle := strings.ToLower(strings.TrimSpace(target))
	if needle == "" {
		return 0, false
	}

	var total float64
	var n int
	for _, s := range sentences {
		if !strings.Contains(strings.ToLower(s), needle) {
			continue
		}
		total += a.vader.PolarityScores(s).Compound
		n++
	}
	if n == 0 {
		return 0, false
	}
	return total / float64(n), true
}

func SentimentLabel(score float64) string {
	switch {
	case score >= POSITIVE_THRESHOLD:
		return "positive"
	case score <= NEGATIVE_THRESHOLD:
		return "negative"
	default:
		return "neutral"
	}
}
