package analysis

import (
	"context"

	"github.com/spacesedan/nluflow/internal/models"
)

// FeatureAnalyzer computes one feature locally. Analyze writes only the
// result field of its own feature.
type FeatureAnalyzer interface {
	Feature() string
	Analyze(ctx context.Context, doc Document, features models.Features, out *models.AnalysisResults) error
}

// Analyzer serves a whole analyze request. Both the remote NLU client and
// the local Engine satisfy it.
type Analyzer interface {
	Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.AnalysisResults, error)
}
