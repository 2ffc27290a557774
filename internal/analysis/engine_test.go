package analysis

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spacesedan/nluflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(fetcher Fetcher) *Engine {
	return NewEngine(fetcher,
		NewSentimentAnalyzer(),
		NewKeywordsAnalyzer(nil, nil, 0),
		NewMetadataAnalyzer(),
	)
}

func TestEngine_Features(t *testing.T) {
	e := newTestEngine(nil)

	assert.Equal(t, []string{models.FeatureKeywords, models.FeatureMetadata, models.FeatureSentiment}, e.Features())
	assert.True(t, e.Supports(models.FeatureSentiment))
	assert.False(t, e.Supports(models.FeatureConcepts))
}

func TestEngine_Analyze(t *testing.T) {
	req := models.AnalyzeRequest{
		Text: "I love this wonderful product. It is great!",
		Features: models.NewFeaturesBuilder().
			Sentiment(&models.SentimentOptions{}).
			Keywords(&models.KeywordsOptions{Limit: models.Int64(1)}).
			Build(),
		ReturnAnalyzedText: models.Bool(true),
	}

	results, err := newTestEngine(nil).Analyze(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "positive", results.Sentiment.Document.Label)
	assert.Len(t, results.Keywords, 1)
	assert.Nil(t, results.Metadata)
	assert.Equal(t, "en", results.Language)
	assert.Equal(t, "I love this wonderful product. It is great!", results.AnalyzedText)
	assert.Equal(t, int64(2), results.Usage.Features)
}

func TestEngine_Unsupported(t *testing.T) {
	req := models.AnalyzeRequest{
		Text: "text",
		Features: models.NewFeaturesBuilder().
			Sentiment(&models.SentimentOptions{}).
			Concepts(&models.ConceptsOptions{}).
			SemanticRoles(&models.SemanticRolesOptions{}).
			Build(),
	}

	_, err := newTestEngine(nil).Analyze(context.Background(), req)

	var unsupported *models.UnsupportedFeatureError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, []string{models.FeatureConcepts, models.FeatureSemanticRoles}, unsupported.Features)
}

func TestEngine_NoFeatures(t *testing.T) {
	_, err := newTestEngine(nil).Analyze(context.Background(), models.AnalyzeRequest{Text: "text"})
	assert.ErrorIs(t, err, models.ErrNoFeatures)
}

func TestEngine_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, FETCH_USER_AGENT, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	req := models.AnalyzeRequest{
		URL:      srv.URL + "/story",
		Features: models.NewFeaturesBuilder().Metadata(models.Map{}).Build(),
	}

	results, err := newTestEngine(NewPageFetcher()).Analyze(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/story", results.RetrievedURL)
	assert.Equal(t, "Big News", results.Metadata.Title)
	assert.Equal(t, srv.URL+"/img/lead.png", results.Metadata.Image)
}

func TestEngine_URLFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	req := models.AnalyzeRequest{
		URL:      srv.URL,
		Features: models.NewFeaturesBuilder().Metadata(models.Map{}).Build(),
	}

	_, err := newTestEngine(NewPageFetcher()).Analyze(context.Background(), req)

	var httpErr *models.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
}

func TestEngine_URLWithoutFetcher(t *testing.T) {
	req := models.AnalyzeRequest{
		URL:      "https://example.com",
		Features: models.NewFeaturesBuilder().Metadata(models.Map{}).Build(),
	}

	_, err := newTestEngine(nil).Analyze(context.Background(), req)

	var validation *models.ValidationError
	assert.ErrorAs(t, err, &validation)
}
