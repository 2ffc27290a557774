package models

// Per-feature tuning knobs sent inside the "features" object of an analyze
// request. Every field is optional and left out of the payload when unset.

type ConceptsOptions struct {
	// Maximum number of concepts to return
	Limit *int64 `json:"limit,omitempty"`
}

type EmotionOptions struct {
	// Set to false to skip document level emotion
	Document *bool `json:"document,omitempty"`
	// Target strings to find in the text and analyze emotion for
	Targets []string `json:"targets,omitempty"`
}

type EntitiesOptions struct {
	Limit     *int64  `json:"limit,omitempty"`
	Mentions  *bool   `json:"mentions,omitempty"`
	Model     *string `json:"model,omitempty"`
	Sentiment *bool   `json:"sentiment,omitempty"`
	Emotion   *bool   `json:"emotion,omitempty"`
}

type KeywordsOptions struct {
	Limit     *int64 `json:"limit,omitempty"`
	Sentiment *bool  `json:"sentiment,omitempty"`
	Emotion   *bool  `json:"emotion,omitempty"`
}

type RelationsOptions struct {
	// Custom model ID, the service default model is used when unset
	Model *string `json:"model,omitempty"`
}

type SemanticRolesOptions struct {
	Limit    *int64 `json:"limit,omitempty"`
	Keywords *bool  `json:"keywords,omitempty"`
	Entities *bool  `json:"entities,omitempty"`
}

type SentimentOptions struct {
	Document *bool    `json:"document,omitempty"`
	Targets  []string `json:"targets,omitempty"`
}

// Int64 returns a pointer to v, handy for option literals.
func Int64(v int64) *int64 { return &v }

func Bool(v bool) *bool { return &v }

func String(v string) *string { return &v }
