package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spacesedan/nluflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Bool(1), args.Error(2)
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

type memoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (s *memoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *memoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func sentimentRequest(text string) models.AnalyzeRequest {
	return models.AnalyzeRequest{
		Text:     text,
		Features: models.NewFeaturesBuilder().Sentiment(&models.SentimentOptions{}).Build(),
	}
}

func sampleResults() *models.AnalysisResults {
	return &models.AnalysisResults{
		Language: "en",
		Sentiment: &models.SentimentResult{
			Document: &models.DocumentSentimentResults{Label: "positive", Score: 0.8},
		},
	}
}

func TestKey(t *testing.T) {
	a := sentimentRequest("hello")
	b := models.AnalyzeRequest{
		Text:     "hello",
		Features: models.NewFeatures(nil, nil, nil, nil, nil, nil, nil, &models.SentimentOptions{}, nil),
	}

	ka, err := Key(a)
	require.NoError(t, err)
	kb, err := Key(b)
	require.NoError(t, err)
	kc, err := Key(sentimentRequest("other"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ka, KEY_PREFIX))
	assert.Len(t, ka, len(KEY_PREFIX)+16)
	assert.Equal(t, ka, kb)
	assert.NotEqual(t, ka, kc)
}

func TestAnalysisCache_LocalOnly(t *testing.T) {
	c, err := NewAnalysisCache(2, nil, time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	_, found := c.Get(ctx, sentimentRequest("a"))
	assert.False(t, found)

	require.NoError(t, c.Put(ctx, sentimentRequest("a"), sampleResults()))
	got, found := c.Get(ctx, sentimentRequest("a"))
	require.True(t, found)
	assert.Equal(t, sampleResults(), got)

	// oldest entry is evicted past the size bound
	require.NoError(t, c.Put(ctx, sentimentRequest("b"), sampleResults()))
	require.NoError(t, c.Put(ctx, sentimentRequest("c"), sampleResults()))
	assert.Equal(t, 2, c.Len())
	_, found = c.Get(ctx, sentimentRequest("a"))
	assert.False(t, found)
}

func TestAnalysisCache_RemoteHitFillsLocal(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{data: map[string][]byte{}}

	writer, err := NewAnalysisCache(8, store, time.Hour)
	require.NoError(t, err)
	require.NoError(t, writer.Put(ctx, sentimentRequest("shared"), sampleResults()))

	reader, err := NewAnalysisCache(8, store, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, reader.Len())

	got, found := reader.Get(ctx, sentimentRequest("shared"))
	require.True(t, found)
	assert.Equal(t, "positive", got.Sentiment.Document.Label)
	assert.Equal(t, 1, reader.Len())
}

func TestAnalysisCache_RemoteErrorIsMiss(t *testing.T) {
	store := new(mockStore)
	store.On("Get", mock.Anything, mock.Anything).Return(nil, false, errors.New("connection refused"))

	c, err := NewAnalysisCache(8, store, time.Hour)
	require.NoError(t, err)

	_, found := c.Get(context.Background(), sentimentRequest("x"))
	assert.False(t, found)
	store.AssertExpectations(t)
}

func TestAnalysisCache_PutPassesTTL(t *testing.T) {
	req := sentimentRequest("ttl")
	key, err := Key(req)
	require.NoError(t, err)

	store := new(mockStore)
	store.On("Set", mock.Anything, key, mock.Anything, 90*time.Minute).Return(nil)

	c, err := NewAnalysisCache(8, store, 90*time.Minute)
	require.NoError(t, err)
	require.NoError(t, c.Put(context.Background(), req, sampleResults()))

	store.AssertExpectations(t)
}

func TestAnalysisCache_PutRemoteError(t *testing.T) {
	store := new(mockStore)
	store.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("down"))

	c, err := NewAnalysisCache(8, store, time.Hour)
	require.NoError(t, err)

	err = c.Put(context.Background(), sentimentRequest("y"), sampleResults())
	assert.ErrorContains(t, err, "down")
	assert.Equal(t, 1, c.Len())
}

func TestAnalysisCache_CorruptRemoteEntry(t *testing.T) {
	store := new(mockStore)
	store.On("Get", mock.Anything, mock.Anything).Return([]byte("{not json"), true, nil)

	c, err := NewAnalysisCache(8, store, time.Hour)
	require.NoError(t, err)

	_, found := c.Get(context.Background(), sentimentRequest("z"))
	assert.False(t, found)
	assert.Equal(t, 0, c.Len())
}
