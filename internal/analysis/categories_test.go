package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/spacesedan/nluflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoriesLimit(t *testing.T) {
	assert.Equal(t, 3, CategoriesLimit(nil))
	assert.Equal(t, 5, CategoriesLimit(models.Map{"limit": models.NumberValue(5)}))
	assert.Equal(t, 10, CategoriesLimit(models.Map{"limit": models.NumberValue(50)}))
	assert.Equal(t, 3, CategoriesLimit(models.Map{"limit": models.StringValue("5")}))
	assert.Equal(t, 3, CategoriesLimit(models.Map{"limit": models.NumberValue(0)}))
}

func TestParseCategories(t *testing.T) {
	reply := "```json\n{\"categories\":[{\"label\":\"Technology and Computing/software\",\"score\":1.4},{\"label\":\" \",\"score\":0.3}]}\n```"

	got, err := ParseCategories(reply)

	require.NoError(t, err)
	assert.Equal(t, []models.CategoriesResult{{Label: "/technology and computing/software", Score: 1}}, got)
}

func TestParseCategories_Invalid(t *testing.T) {
	_, err := ParseCategories("not json")
	assert.Error(t, err)
}

func TestCategoriesAnalyzer(t *testing.T) {
	llm := &fakeCompleter{reply: `{"categories":[
		{"label":"/sports/basketball","score":0.4},
		{"label":"/sports","score":0.9},
		{"label":"/news and politics","score":0.1}]}`}
	features := models.NewFeaturesBuilder().Categories(models.Map{"limit": models.NumberValue(2)}).Build()

	var out models.AnalysisResults
	err := NewCategoriesAnalyzer(llm).Analyze(context.Background(), Document{Text: "The game went to overtime."}, features, &out)

	require.NoError(t, err)
	assert.Equal(t, []models.CategoriesResult{
		{Label: "/sports", Score: 0.9},
		{Label: "/sports/basketball", Score: 0.4},
	}, out.Categories)
	assert.Contains(t, llm.system, "/technology and computing")
	assert.Contains(t, llm.system, "at most 2 labels")
	assert.Equal(t, "The game went to overtime.", llm.user)
}

func TestCategoriesAnalyzer_CompletionError(t *testing.T) {
	llm := &fakeCompleter{err: errors.New("rate limited")}
	features := models.NewFeaturesBuilder().Categories(models.Map{}).Build()

	var out models.AnalysisResults
	err := NewCategoriesAnalyzer(llm).Analyze(context.Background(), Document{Text: "text"}, features, &out)

	assert.ErrorContains(t, err, "rate limited")
	assert.Nil(t, out.Categories)
}
