package analysis

import (
	"context"
	"testing"

	"github.com/spacesedan/nluflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const kafkaText = "Kafka streams data. Kafka brokers store data. Consumers read streams from Kafka."

func TestRankKeywords(t *testing.T) {
	got := RankKeywords(kafkaText, 3)

	require.Len(t, got, 3)
	assert.Equal(t, "kafka", got[0].Text)
	assert.Equal(t, int64(3), got[0].Count)
	assert.Equal(t, 1.0, got[0].Relevance)
	assert.Equal(t, "streams", got[1].Text)
	assert.InDelta(t, 0.666667, got[1].Relevance, 1e-6)
	assert.Equal(t, "data", got[2].Text)
}

func TestRankKeywords_SkipsStopWordsAndNumbers(t *testing.T) {
	got := RankKeywords("The and of 2024 it is to", 10)
	assert.Empty(t, got)
}

func TestKeywordsAnalyzer(t *testing.T) {
	classifier := &fakeClassifier{labels: []Label{{Name: "joy", Score: 0.8}}}
	a := NewKeywordsAnalyzer(NewSentimentAnalyzer(), classifier, 0)
	features := models.NewFeaturesBuilder().Keywords(&models.KeywordsOptions{
		Limit:     models.Int64(2),
		Sentiment: models.Bool(true),
		Emotion:   models.Bool(true),
	}).Build()

	var out models.AnalysisResults
	require.NoError(t, a.Analyze(context.Background(), Document{Text: kafkaText}, features, &out))

	require.Len(t, out.Keywords, 2)
	for _, k := range out.Keywords {
		assert.NotNil(t, k.Sentiment, k.Text)
		require.NotNil(t, k.Emotion, k.Text)
		assert.Equal(t, 0.8, k.Emotion.Joy)
	}
}

func TestKeywordsAnalyzer_DefaultLimit(t *testing.T) {
	a := NewKeywordsAnalyzer(nil, nil, 0)
	assert.Equal(t, DEFAULT_KEYWORDS_LIMIT, a.defaultLimit)

	features := models.NewFeaturesBuilder().Keywords(&models.KeywordsOptions{Sentiment: models.Bool(true)}).Build()
	var out models.AnalysisResults
	require.NoError(t, a.Analyze(context.Background(), Document{Text: kafkaText}, features, &out))

	assert.Len(t, out.Keywords, 7)
	assert.Nil(t, out.Keywords[0].Sentiment)
}
