package models

import (
	"strings"
	"time"
)

// AnalyzeRequest is the body of POST /v1/analyze. Exactly one of Text, HTML
// or URL carries the content.
type AnalyzeRequest struct {
	Text                string   `json:"text,omitempty"`
	HTML                string   `json:"html,omitempty"`
	URL                 string   `json:"url,omitempty"`
	Features            Features `json:"features"`
	Clean               *bool    `json:"clean,omitempty"`
	Xpath               *string  `json:"xpath,omitempty"`
	FallbackToRaw       *bool    `json:"fallback_to_raw,omitempty"`
	ReturnAnalyzedText  *bool    `json:"return_analyzed_text,omitempty"`
	Language            *string  `json:"language,omitempty"`
	LimitTextCharacters *int64   `json:"limit_text_characters,omitempty"`
}

// Validate checks the request shape the service enforces. Features itself
// never fails; an empty selection is rejected here.
func (r AnalyzeRequest) Validate() error {
	inputs := 0
	for _, in := range []string{r.Text, r.HTML, r.URL} {
		if strings.TrimSpace(in) != "" {
			inputs++
		}
	}
	switch {
	case inputs == 0:
		return &ValidationError{Field: "text|html|url", Reason: "one input is required"}
	case inputs > 1:
		return &ValidationError{Field: "text|html|url", Reason: "only one input may be set"}
	}
	if r.Features.IsEmpty() {
		return ErrNoFeatures
	}
	return nil
}

// WithFeatures returns a copy of r carrying f.
func (r AnalyzeRequest) WithFeatures(f Features) AnalyzeRequest {
	r.Features = f
	return r
}

type AnalysisResults struct {
	Language      string                `json:"language,omitempty"`
	AnalyzedText  string                `json:"analyzed_text,omitempty"`
	RetrievedURL  string                `json:"retrieved_url,omitempty"`
	Usage         *Usage                `json:"usage,omitempty"`
	Concepts      []ConceptsResult      `json:"concepts,omitempty"`
	Entities      []EntitiesResult      `json:"entities,omitempty"`
	Keywords      []KeywordsResult      `json:"keywords,omitempty"`
	Categories    []CategoriesResult    `json:"categories,omitempty"`
	Emotion       *EmotionResult        `json:"emotion,omitempty"`
	Metadata      *MetadataResult       `json:"metadata,omitempty"`
	Relations     []RelationsResult     `json:"relations,omitempty"`
	SemanticRoles []SemanticRolesResult `json:"semantic_roles,omitempty"`
	Sentiment     *SentimentResult      `json:"sentiment,omitempty"`
}

// Merge copies every field of other that is empty in r.
func (r *AnalysisResults) Merge(other *AnalysisResults) {
	if other == nil {
		return
	}
	if r.Language == "" {
		r.Language = other.Language
	}
	if r.AnalyzedText == "" {
		r.AnalyzedText = other.AnalyzedText
	}
	if r.RetrievedURL == "" {
		r.RetrievedURL = other.RetrievedURL
	}
	if r.Usage == nil {
		r.Usage = other.Usage
	}
	if r.Concepts == nil {
		r.Concepts = other.Concepts
	}
	if r.Entities == nil {
		r.Entities = other.Entities
	}
	if r.Keywords == nil {
		r.Keywords = other.Keywords
	}
	if r.Categories == nil {
		r.Categories = other.Categories
	}
	if r.Emotion == nil {
		r.Emotion = other.Emotion
	}
	if r.Metadata == nil {
		r.Metadata = other.Metadata
	}
	if r.Relations == nil {
		r.Relations = other.Relations
	}
	if r.SemanticRoles == nil {
		r.SemanticRoles = other.SemanticRoles
	}
	if r.Sentiment == nil {
		r.Sentiment = other.Sentiment
	}
}

type Usage struct {
	TextUnits      int64 `json:"text_units,omitempty"`
	TextCharacters int64 `json:"text_characters,omitempty"`
	Features       int64 `json:"features,omitempty"`
}

type ConceptsResult struct {
	Text            string  `json:"text"`
	Relevance       float64 `json:"relevance"`
	DbpediaResource string  `json:"dbpedia_resource,omitempty"`
}

type EntitiesResult struct {
	Type      string                   `json:"type"`
	Text      string                   `json:"text"`
	Relevance float64                  `json:"relevance"`
	Count     int64                    `json:"count,omitempty"`
	Mentions  []EntityMention          `json:"mentions,omitempty"`
	Emotion   *EmotionScores           `json:"emotion,omitempty"`
	Sentiment *FeatureSentimentResults `json:"sentiment,omitempty"`
}

type EntityMention struct {
	Text     string  `json:"text"`
	Location []int64 `json:"location,omitempty"`
}

type KeywordsResult struct {
	Text      string                   `json:"text"`
	Relevance float64                  `json:"relevance"`
	Count     int64                    `json:"count,omitempty"`
	Emotion   *EmotionScores           `json:"emotion,omitempty"`
	Sentiment *FeatureSentimentResults `json:"sentiment,omitempty"`
}

type CategoriesResult struct {
	// Hierarchical label, e.g. "/technology and computing/software"
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type EmotionScores struct {
	Anger   float64 `json:"anger"`
	Disgust float64 `json:"disgust"`
	Fear    float64 `json:"fear"`
	Joy     float64 `json:"joy"`
	Sadness float64 `json:"sadness"`
}

type EmotionResult struct {
	Document *DocumentEmotionResults  `json:"document,omitempty"`
	Targets  []TargetedEmotionResults `json:"targets,omitempty"`
}

type DocumentEmotionResults struct {
	Emotion *EmotionScores `json:"emotion,omitempty"`
}

type TargetedEmotionResults struct {
	Text    string         `json:"text"`
	Emotion *EmotionScores `json:"emotion,omitempty"`
}

type MetadataResult struct {
	Authors         []Author `json:"authors,omitempty"`
	PublicationDate string   `json:"publication_date,omitempty"`
	Title           string   `json:"title,omitempty"`
	Image           string   `json:"image,omitempty"`
	Feeds           []Feed   `json:"feeds,omitempty"`
}

type Author struct {
	Name string `json:"name"`
}

type Feed struct {
	Link string `json:"link"`
}

type RelationsResult struct {
	Score     float64            `json:"score"`
	Sentence  string             `json:"sentence"`
	Type      string             `json:"type"`
	Arguments []RelationArgument `json:"arguments,omitempty"`
}

type RelationArgument struct {
	Entities []RelationEntity `json:"entities,omitempty"`
	Location []int64          `json:"location,omitempty"`
	Text     string           `json:"text"`
}

type RelationEntity struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

type SemanticRolesResult struct {
	Sentence string               `json:"sentence"`
	Subject  *SemanticRolesEntity `json:"subject,omitempty"`
	Action   *SemanticRolesAction `json:"action,omitempty"`
	Object   *SemanticRolesEntity `json:"object,omitempty"`
}

type SemanticRolesEntity struct {
	Text     string           `json:"text"`
	Entities []RelationEntity `json:"entities,omitempty"`
	Keywords []KeywordText    `json:"keywords,omitempty"`
}

type KeywordText struct {
	Text string `json:"text"`
}

type SemanticRolesAction struct {
	Text       string             `json:"text"`
	Normalized string             `json:"normalized,omitempty"`
	Verb       *SemanticRolesVerb `json:"verb,omitempty"`
}

type SemanticRolesVerb struct {
	Text  string `json:"text"`
	Tense string `json:"tense,omitempty"`
}

type SentimentResult struct {
	Document *DocumentSentimentResults  `json:"document,omitempty"`
	Targets  []TargetedSentimentResults `json:"targets,omitempty"`
}

type DocumentSentimentResults struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type TargetedSentimentResults struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

type FeatureSentimentResults struct {
	Score float64 `json:"score"`
}

// AnalyzeJob is the message published on the analyze-request topic.
type AnalyzeJob struct {
	JobID       string         `json:"job_id"`
	Request     AnalyzeRequest `json:"request"`
	SubmittedAt time.Time      `json:"submitted_at"`
}

// AnalyzedRecord is the message published on the analyze-results topic and
// the row persisted for every finished job.
type AnalyzedRecord struct {
	JobID      string           `json:"job_id" dynamodbav:"job_id"`
	Features   []string         `json:"features" dynamodbav:"features,stringset,omitempty"`
	Results    *AnalysisResults `json:"results" dynamodbav:"-"`
	Source     string           `json:"source" dynamodbav:"source"`
	Cached     bool             `json:"cached,omitempty" dynamodbav:"cached"`
	Error      string           `json:"error,omitempty" dynamodbav:"error,omitempty"`
	AnalyzedAt time.Time        `json:"analyzed_at" dynamodbav:"analyzed_at"`
}

// Analysis sources recorded on AnalyzedRecord.
const (
	SourceLocal  = "local"
	SourceRemote = "remote"
	SourceMixed  = "mixed"
)
