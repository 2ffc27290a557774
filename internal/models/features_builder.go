package models

// FeaturesBuilder assembles Features one field at a time. Setters accept any
// value, including nil, and return the builder so calls can be chained.
type FeaturesBuilder struct {
	features Features
}

func NewFeaturesBuilder() *FeaturesBuilder {
	return &FeaturesBuilder{}
}

// NewBuilder returns a builder seeded with every field of f.
func (f Features) NewBuilder() *FeaturesBuilder {
	return &FeaturesBuilder{features: f}
}

func (b *FeaturesBuilder) Concepts(v *ConceptsOptions) *FeaturesBuilder {
	b.features.concepts = v
	return b
}

func (b *FeaturesBuilder) Emotion(v *EmotionOptions) *FeaturesBuilder {
	b.features.emotion = v
	return b
}

func (b *FeaturesBuilder) Entities(v *EntitiesOptions) *FeaturesBuilder {
	b.features.entities = v
	return b
}

func (b *FeaturesBuilder) Keywords(v *KeywordsOptions) *FeaturesBuilder {
	b.features.keywords = v
	return b
}

func (b *FeaturesBuilder) Metadata(v Map) *FeaturesBuilder {
	b.features.metadata = v
	return b
}

func (b *FeaturesBuilder) Relations(v *RelationsOptions) *FeaturesBuilder {
	b.features.relations = v
	return b
}

func (b *FeaturesBuilder) SemanticRoles(v *SemanticRolesOptions) *FeaturesBuilder {
	b.features.semanticRoles = v
	return b
}

func (b *FeaturesBuilder) Sentiment(v *SentimentOptions) *FeaturesBuilder {
	b.features.sentiment = v
	return b
}

func (b *FeaturesBuilder) Categories(v Map) *FeaturesBuilder {
	b.features.categories = v
	return b
}

// Build returns a snapshot. Later builder calls do not affect it.
func (b *FeaturesBuilder) Build() Features {
	return b.features
}

// FeatureOption overrides one field in Features.With.
type FeatureOption func(*Features)

// With returns a copy of f with the given overrides applied.
func (f Features) With(opts ...FeatureOption) Features {
	out := f
	for _, opt := range opts {
		opt(&out)
	}
	return out
}

func WithConcepts(v *ConceptsOptions) FeatureOption {
	return func(f *Features) { f.concepts = v }
}

func WithEmotion(v *EmotionOptions) FeatureOption {
	return func(f *Features) { f.emotion = v }
}

func WithEntities(v *EntitiesOptions) FeatureOption {
	return func(f *Features) { f.entities = v }
}

func WithKeywords(v *KeywordsOptions) FeatureOption {
	return func(f *Features) { f.keywords = v }
}

func WithMetadata(v Map) FeatureOption {
	return func(f *Features) { f.metadata = v }
}

func WithRelations(v *RelationsOptions) FeatureOption {
	return func(f *Features) { f.relations = v }
}

func WithSemanticRoles(v *SemanticRolesOptions) FeatureOption {
	return func(f *Features) { f.semanticRoles = v }
}

func WithSentiment(v *SentimentOptions) FeatureOption {
	return func(f *Features) { f.sentiment = v }
}

func WithCategories(v Map) FeatureOption {
	return func(f *Features) { f.categories = v }
}
