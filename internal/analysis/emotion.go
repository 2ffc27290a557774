package analysis

import (
	"context"
	"strings"

	"github.com/spacesedan/nluflow/internal/models"
)

// Label is one class predicted by a TextClassifier.
type Label struct {
	Name  string
	Score float64
}

// TextClassifier labels each input text. The result has one entry per input.
type TextClassifier interface {
	Classify(ctx context.Context, texts []string) ([][]Label, error)
}

// EmotionAnalyzer maps classifier labels onto the five emotions the service
// reports.
type EmotionAnalyzer struct {
	classifier TextClassifier
}

func NewEmotionAnalyzer(classifier TextClassifier) *EmotionAnalyzer {
	return &EmotionAnalyzer{classifier: classifier}
}

func (a *EmotionAnalyzer) Feature() string { return models.FeatureEmotion }

func (a *EmotionAnalyzer) Analyze(ctx context.Context, doc Document, features models.Features, out *models.AnalysisResults) error {
	opts := features.Emotion()
	if opts == nil {
		return nil
	}

	wantDocument := opts.Document == nil || *opts.Document

	var inputs []string
	if wantDocument {
		inputs = append(inputs, doc.Text)
	}

	// each target is classified over the sentences that mention it
	var targets []string
	for _, target := range opts.Targets {
		mentions := mentioning(doc.Sentences(), target)
		if mentions == "" {
			continue
		}
		targets = append(targets, target)
		inputs = append(inputs, mentions)
	}

	if len(inputs) == 0 {
		out.Emotion = &models.EmotionResult{}
		return nil
	}

	labels, err := a.classifier.Classify(ctx, inputs)
	if err != nil {
		return err
	}

	result := &models.EmotionResult{}
	i := 0
	if wantDocument {
		result.Document = &models.DocumentEmotionResults{Emotion: EmotionScoresFromLabels(labelsAt(labels, i))}
		i++
	}
	for _, target := range targets {
		result.Targets = append(result.Targets, models.TargetedEmotionResults{
			Text:    target,
			Emotion: EmotionScoresFromLabels(labelsAt(labels, i)),
		})
		i++
	}

	out.Emotion = result
	return nil
}

// EmotionScoresFromLabels keeps the anger, disgust, fear, joy and sadness
// labels. Anything else a model predicts is dropped.
func EmotionScoresFromLabels(labels []Label) *models.EmotionScores {
	scores := &models.EmotionScores{}
	for _, l := range labels {
		switch strings.ToLower(l.Name) {
		case "anger":
			scores.Anger = l.Score
		case "disgust":
			scores.Disgust = l.Score
		case "fear":
			scores.Fear = l.Score
		case "joy":
			scores.Joy = l.Score
		case "sadness":
			scores.Sadness = l.Score
		}
	}
	return scores
}

func labelsAt(labels [][]Label, i int) []Label {
	if i < len(labels) {
		return labels[i]
	}
	return nil
}

func mentioning(sentences []string, target string) string {
	needle := strings.ToLower(strings.TrimSpace(target))
	if needle == "" {
		return ""
	}
	var hits []string
	for _, s := range sentences {
		if strings.Contains(strings.ToLower(s), needle) {
			hits = append(hits, s)
		}
	}
	return strings.Join(hits, " ")
}
