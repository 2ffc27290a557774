package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spacesedan/nluflow/internal/models"
)

// Router sends the features the local engine supports to the engine and the
// rest to the remote service, then merges both answers.
type Router struct {
	local  *Engine
	remote Analyzer
}

// NewRouter builds a router. remote may be nil when no service is configured.
func NewRouter(local *Engine, remote Analyzer) *Router {
	if local == nil {
		local = NewEngine(nil)
	}
	return &Router{local: local, remote: remote}
}

// Split partitions features into the part served locally and the remainder.
func (r *Router) Split(features models.Features) (local, remote models.Features) {
	keys := r.local.Features()
	return features.Only(keys...), features.Without(keys...)
}

// NeedsRemote reports whether req cannot be answered locally.
func (r *Router) NeedsRemote(req models.AnalyzeRequest) bool {
	_, remote := r.Split(req.Features)
	return !remote.IsEmpty()
}

// Analyze answers req and reports which side produced the results.
func (r *Router) Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.AnalysisResults, string, error) {
	if err := req.Validate(); err != nil {
		return nil, "", err
	}

	localFeatures, remoteFeatures := r.Split(req.Features)
	if !remoteFeatures.IsEmpty() && r.remote == nil {
		return nil, "", &models.UnsupportedFeatureError{Features: remoteFeatures.Requested()}
	}

	slog.Debug("[Router] Routing analyze request",
		slog.Any("local", localFeatures.Requested()),
		slog.Any("remote", remoteFeatures.Requested()))

	switch {
	case remoteFeatures.IsEmpty():
		results, err := r.local.Analyze(ctx, req.WithFeatures(localFeatures))
		return results, models.SourceLocal, err
	case localFeatures.IsEmpty():
		results, err := r.remote.Analyze(ctx, req.WithFeatures(remoteFeatures))
		return results, models.SourceRemote, err
	}

	results, err := r.local.Analyze(ctx, req.WithFeatures(localFeatures))
	if err != nil {
		return nil, "", fmt.Errorf("[Router] local analysis failed: %w", err)
	}
	remoteResults, err := r.remote.Analyze(ctx, req.WithFeatures(remoteFeatures))
	if err != nil {
		return nil, "", fmt.Errorf("[Router] remote analysis failed: %w", err)
	}

	// the service counts text units for the whole request
	if remoteResults.Usage != nil {
		results.Usage = nil
	}
	results.Merge(remoteResults)
	return results, models.SourceMixed, nil
}

// Source names the side that answers features.
func (r *Router) Source(features models.Features) string {
	local, remote := r.Split(features)
	switch {
	case remote.IsEmpty():
		return models.SourceLocal
	case local.IsEmpty():
		return models.SourceRemote
	default:
		return models.SourceMixed
	}
}
