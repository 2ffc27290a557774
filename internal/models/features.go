package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// Wire keys of the analysis features.
const (
	FeatureConcepts      = "concepts"
	FeatureEmotion       = "emotion"
	FeatureEntities      = "entities"
	FeatureKeywords      = "keywords"
	FeatureMetadata      = "metadata"
	FeatureRelations     = "relations"
	FeatureSemanticRoles = "semantic_roles"
	FeatureSentiment     = "sentiment"
	FeatureCategories    = "categories"
)

// Features is the set of analyses requested for one analyze call. Each
// feature is optional; a nil options pointer or nil map means the feature is
// not requested. An empty non-nil map still requests the feature.
//
// Features is a plain value. Setters are not safe for concurrent use.
type Features struct {
	concepts      *ConceptsOptions
	emotion       *EmotionOptions
	entities      *EntitiesOptions
	keywords      *KeywordsOptions
	metadata      Map
	relations     *RelationsOptions
	semanticRoles *SemanticRolesOptions
	sentiment     *SentimentOptions
	categories    Map
}

// NewFeatures builds Features from all nine values, any of which may be nil.
func NewFeatures(
	concepts *ConceptsOptions,
	emotion *EmotionOptions,
	entities *EntitiesOptions,
	keywords *KeywordsOptions,
	metadata Map,
	relations *RelationsOptions,
	semanticRoles *SemanticRolesOptions,
	sentiment *SentimentOptions,
	categories Map,
) Features {
	return Features{
		concepts:      concepts,
		emotion:       emotion,
		entities:      entities,
		keywords:      keywords,
		metadata:      metadata,
		relations:     relations,
		semanticRoles: semanticRoles,
		sentiment:     sentiment,
		categories:    categories,
	}
}

func (f Features) Concepts() *ConceptsOptions           { return f.concepts }
func (f Features) Emotion() *EmotionOptions             { return f.emotion }
func (f Features) Entities() *EntitiesOptions           { return f.entities }
func (f Features) Keywords() *KeywordsOptions           { return f.keywords }
func (f Features) Metadata() Map                        { return f.metadata }
func (f Features) Relations() *RelationsOptions         { return f.relations }
func (f Features) SemanticRoles() *SemanticRolesOptions { return f.semanticRoles }
func (f Features) Sentiment() *SentimentOptions         { return f.sentiment }
func (f Features) Categories() Map                      { return f.categories }

func (f *Features) SetConcepts(v *ConceptsOptions)           { f.concepts = v }
func (f *Features) SetEmotion(v *EmotionOptions)             { f.emotion = v }
func (f *Features) SetEntities(v *EntitiesOptions)           { f.entities = v }
func (f *Features) SetKeywords(v *KeywordsOptions)           { f.keywords = v }
func (f *Features) SetMetadata(v Map)                        { f.metadata = v }
func (f *Features) SetRelations(v *RelationsOptions)         { f.relations = v }
func (f *Features) SetSemanticRoles(v *SemanticRolesOptions) { f.semanticRoles = v }
func (f *Features) SetSentiment(v *SentimentOptions)         { f.sentiment = v }
func (f *Features) SetCategories(v Map)                      { f.categories = v }

// featureField ties one Features field to its wire key. The serializer only
// ever goes through this table.
type featureField struct {
	key    string
	isSet  func(f *Features) bool
	value  func(f *Features) any
	decode func(f *Features, raw json.RawMessage) error
	clear  func(f *Features)
}

var featureFields = []featureField{
	{
		key:    FeatureConcepts,
		isSet:  func(f *Features) bool { return f.concepts != nil },
		value:  func(f *Features) any { return f.concepts },
		decode: func(f *Features, raw json.RawMessage) error { return decodeOptions(raw, &f.concepts) },
		clear:  func(f *Features) { f.concepts = nil },
	},
	{
		key:    FeatureEmotion,
		isSet:  func(f *Features) bool { return f.emotion != nil },
		value:  func(f *Features) any { return f.emotion },
		decode: func(f *Features, raw json.RawMessage) error { return decodeOptions(raw, &f.emotion) },
		clear:  func(f *Features) { f.emotion = nil },
	},
	{
		key:    FeatureEntities,
		isSet:  func(f *Features) bool { return f.entities != nil },
		value:  func(f *Features) any { return f.entities },
		decode: func(f *Features, raw json.RawMessage) error { return decodeOptions(raw, &f.entities) },
		clear:  func(f *Features) { f.entities = nil },
	},
	{
		key:    FeatureKeywords,
		isSet:  func(f *Features) bool { return f.keywords != nil },
		value:  func(f *Features) any { return f.keywords },
		decode: func(f *Features, raw json.RawMessage) error { return decodeOptions(raw, &f.keywords) },
		clear:  func(f *Features) { f.keywords = nil },
	},
	{
		key:    FeatureMetadata,
		isSet:  func(f *Features) bool { return f.metadata != nil },
		value:  func(f *Features) any { return f.metadata },
		decode: func(f *Features, raw json.RawMessage) error { return decodeMap(raw, &f.metadata) },
		clear:  func(f *Features) { f.metadata = nil },
	},
	{
		key:    FeatureRelations,
		isSet:  func(f *Features) bool { return f.relations != nil },
		value:  func(f *Features) any { return f.relations },
		decode: func(f *Features, raw json.RawMessage) error { return decodeOptions(raw, &f.relations) },
		clear:  func(f *Features) { f.relations = nil },
	},
	{
		key:    FeatureSemanticRoles,
		isSet:  func(f *Features) bool { return f.semanticRoles != nil },
		value:  func(f *Features) any { return f.semanticRoles },
		decode: func(f *Features, raw json.RawMessage) error { return decodeOptions(raw, &f.semanticRoles) },
		clear:  func(f *Features) { f.semanticRoles = nil },
	},
	{
		key:    FeatureSentiment,
		isSet:  func(f *Features) bool { return f.sentiment != nil },
		value:  func(f *Features) any { return f.sentiment },
		decode: func(f *Features, raw json.RawMessage) error { return decodeOptions(raw, &f.sentiment) },
		clear:  func(f *Features) { f.sentiment = nil },
	},
	{
		key:    FeatureCategories,
		isSet:  func(f *Features) bool { return f.categories != nil },
		value:  func(f *Features) any { return f.categories },
		decode: func(f *Features, raw json.RawMessage) error { return decodeMap(raw, &f.categories) },
		clear:  func(f *Features) { f.categories = nil },
	},
}

// FeatureKeys lists every wire key in serialization order.
func FeatureKeys() []string {
	keys := make([]string, 0, len(featureFields))
	for _, field := range featureFields {
		keys = append(keys, field.key)
	}
	return keys
}

// IsFeatureKey reports whether key names one of the nine features.
func IsFeatureKey(key string) bool {
	for _, field := range featureFields {
		if field.key == key {
			return true
		}
	}
	return false
}

// Requested returns the wire keys of the populated features.
func (f Features) Requested() []string {
	var keys []string
	for _, field := range featureFields {
		if field.isSet(&f) {
			keys = append(keys, field.key)
		}
	}
	return keys
}

func (f Features) IsEmpty() bool {
	return len(f.Requested()) == 0
}

func (f Features) Has(key string) bool {
	for _, field := range featureFields {
		if field.key == key {
			return field.isSet(&f)
		}
	}
	return false
}

// Without returns a copy with the named features cleared. Unknown keys are
// ignored.
func (f Features) Without(keys ...string) Features {
	drop := toSet(keys)
	out := f
	for _, field := range featureFields {
		if drop[field.key] {
			field.clear(&out)
		}
	}
	return out
}

// Only returns a copy keeping just the named features.
func (f Features) Only(keys ...string) Features {
	keep := toSet(keys)
	out := f
	for _, field := range featureFields {
		if !keep[field.key] {
			field.clear(&out)
		}
	}
	return out
}

// Equal reports whether f and other put the same selection on the wire. An
// empty option list and a missing one serialize alike, so they compare equal.
func (f Features) Equal(other Features) bool {
	if reflect.DeepEqual(f, other) {
		return true
	}
	a, errA := json.Marshal(f)
	b, errB := json.Marshal(other)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(a, b)
}

func (f Features) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, field := range featureFields {
		if !field.isSet(&f) {
			continue
		}
		value, err := json.Marshal(field.value(&f))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal feature %s: %w", field.key, err)
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, _ := json.Marshal(field.key)
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads features by wire key. Unknown keys are ignored and a
// null value leaves the feature unset.
func (f *Features) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var out Features
	for _, field := range featureFields {
		value, ok := raw[field.key]
		if !ok || isJSONNull(value) {
			continue
		}
		if err := field.decode(&out, value); err != nil {
			return fmt.Errorf("failed to unmarshal feature %s: %w", field.key, err)
		}
	}
	*f = out
	return nil
}

func (f Features) String() string {
	b, err := f.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Features<%v>", f.Requested())
	}
	return string(b)
}

func decodeOptions[T any](raw json.RawMessage, dst **T) error {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	*dst = &v
	return nil
}

func decodeMap(raw json.RawMessage, dst *Map) error {
	m := Map{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}
	*dst = m
	return nil
}

func isJSONNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

func toSet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}
