package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/spacesedan/nluflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_LocalOnlyNeverCallsRemote(t *testing.T) {
	remote := &fakeRemote{}
	r := NewRouter(newTestEngine(nil), remote)
	req := models.AnalyzeRequest{
		Text:     "What a great day.",
		Features: models.NewFeaturesBuilder().Sentiment(&models.SentimentOptions{}).Build(),
	}

	results, source, err := r.Analyze(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, models.SourceLocal, source)
	assert.NotNil(t, results.Sentiment)
	assert.Equal(t, int32(0), remote.calls.Load())
	assert.False(t, r.NeedsRemote(req))
}

func TestRouter_RemoteOnly(t *testing.T) {
	remote := &fakeRemote{results: &models.AnalysisResults{
		Concepts: []models.ConceptsResult{{Text: "Kafka", Relevance: 0.9}},
	}}
	r := NewRouter(newTestEngine(nil), remote)
	req := models.AnalyzeRequest{
		Text:     "text",
		Features: models.NewFeaturesBuilder().Concepts(&models.ConceptsOptions{}).Build(),
	}

	results, source, err := r.Analyze(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, models.SourceRemote, source)
	assert.Equal(t, "Kafka", results.Concepts[0].Text)
	assert.True(t, r.NeedsRemote(req))
}

func TestRouter_Mixed(t *testing.T) {
	remote := &fakeRemote{results: &models.AnalysisResults{
		Usage:    &models.Usage{TextUnits: 1, Features: 1},
		Entities: []models.EntitiesResult{{Type: "Person", Text: "Ada"}},
	}}
	r := NewRouter(newTestEngine(nil), remote)
	req := models.AnalyzeRequest{
		Text: "Ada wrote a wonderful program.",
		Features: models.NewFeaturesBuilder().
			Entities(&models.EntitiesOptions{Limit: models.Int64(5)}).
			Sentiment(&models.SentimentOptions{}).
			Build(),
	}

	results, source, err := r.Analyze(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, models.SourceMixed, source)
	assert.NotNil(t, results.Sentiment)
	assert.Equal(t, "Ada", results.Entities[0].Text)
	assert.Equal(t, int64(1), results.Usage.Features)

	require.Len(t, remote.features, 1)
	assert.Equal(t, []string{models.FeatureEntities}, remote.features[0].Requested())
	assert.Equal(t, int64(5), *remote.features[0].Entities().Limit)
}

func TestRouter_MixedRemoteError(t *testing.T) {
	remote := &fakeRemote{err: errors.New("boom")}
	r := NewRouter(newTestEngine(nil), remote)
	req := models.AnalyzeRequest{
		Text: "text",
		Features: models.NewFeaturesBuilder().
			Relations(&models.RelationsOptions{}).
			Sentiment(&models.SentimentOptions{}).
			Build(),
	}

	_, _, err := r.Analyze(context.Background(), req)
	assert.ErrorContains(t, err, "boom")
}

func TestRouter_NoRemoteConfigured(t *testing.T) {
	r := NewRouter(newTestEngine(nil), nil)
	req := models.AnalyzeRequest{
		Text:     "text",
		Features: models.NewFeaturesBuilder().Relations(&models.RelationsOptions{}).Build(),
	}

	_, _, err := r.Analyze(context.Background(), req)

	var unsupported *models.UnsupportedFeatureError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, []string{models.FeatureRelations}, unsupported.Features)
}

func TestRouter_EmptyFeatures(t *testing.T) {
	remote := &fakeRemote{}
	_, _, err := NewRouter(newTestEngine(nil), remote).Analyze(context.Background(), models.AnalyzeRequest{Text: "text"})

	assert.ErrorIs(t, err, models.ErrNoFeatures)
	assert.Equal(t, int32(0), remote.calls.Load())
}

func TestRouter_Split(t *testing.T) {
	r := NewRouter(newTestEngine(nil), nil)
	features := models.NewFeaturesBuilder().
		Keywords(&models.KeywordsOptions{}).
		Categories(models.Map{}).
		Build()

	local, remote := r.Split(features)

	assert.Equal(t, []string{models.FeatureKeywords}, local.Requested())
	assert.Equal(t, []string{models.FeatureCategories}, remote.Requested())
}

func TestRouter_Source(t *testing.T) {
	r := NewRouter(newTestEngine(nil), nil)

	assert.Equal(t, models.SourceLocal, r.Source(models.NewFeaturesBuilder().Sentiment(&models.SentimentOptions{}).Build()))
	assert.Equal(t, models.SourceRemote, r.Source(models.NewFeaturesBuilder().Concepts(&models.ConceptsOptions{}).Build()))
	assert.Equal(t, models.SourceMixed, r.Source(models.NewFeaturesBuilder().
		Concepts(&models.ConceptsOptions{}).
		Keywords(&models.KeywordsOptions{}).
		Build()))
}
