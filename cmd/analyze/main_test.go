package main

import (
	"testing"

	"github.com/spacesedan/nluflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFeatures(t *testing.T) {
	f, err := parseFeatures("sentiment, semantic_roles,categories", 4)
	require.NoError(t, err)

	assert.Equal(t, []string{models.FeatureSemanticRoles, models.FeatureSentiment, models.FeatureCategories}, f.Requested())
	assert.Equal(t, int64(4), *f.SemanticRoles().Limit)
	n, ok := f.Categories()["limit"].AsNumber()
	require.True(t, ok)
	assert.Equal(t, 4.0, n)
}

func TestParseFeatures_NoLimit(t *testing.T) {
	f, err := parseFeatures("keywords", 0)
	require.NoError(t, err)
	assert.Nil(t, f.Keywords().Limit)
}

func TestParseFeatures_Unknown(t *testing.T) {
	_, err := parseFeatures("sentiment,tone", 0)
	assert.ErrorContains(t, err, `"tone"`)
}
