package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
)

// HugotClassifier runs an ONNX text classification model in process.
type HugotClassifier struct {
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
}

func NewHugotClassifier(modelPath string) (*HugotClassifier, error) {
	session, err := hugot.NewORTSession()
	if err != nil {
		return nil, fmt.Errorf("[HugotClassifier] failed to initialize session: %w", err)
	}

	config := hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      "emotionClassificationPipeline",
		Options: []hugot.TextClassificationOption{
			pipelines.WithMultiLabel(),
		},
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		session.Destroy()
		return nil, fmt.Errorf("[HugotClassifier] failed to initialize pipeline: %w", err)
	}

	slog.Info("[HugotClassifier] Emotion model loaded", slog.String("path", modelPath))
	return &HugotClassifier{session: session, pipeline: pipeline}, nil
}

func (c *HugotClassifier) Classify(ctx context.Context, texts []string) ([][]Label, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	output, err := c.pipeline.RunPipeline(texts)
	if err != nil {
		return nil, fmt.Errorf("[HugotClassifier] classification failed: %w", err)
	}

	labels := make([][]Label, len(output.ClassificationOutputs))
	for i, outputs := range output.ClassificationOutputs {
		for _, o := range outputs {
			labels[i] = append(labels[i], Label{Name: o.Label, Score: float64(o.Score)})
		}
	}
	return labels, nil
}

func (c *HugotClassifier) Close() error {
	return c.session.Destroy()
}
