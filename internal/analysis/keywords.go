package analysis

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/spacesedan/nluflow/internal/models"
)

const DEFAULT_KEYWORDS_LIMIT = 50

var stopWords = toWordSet(`a about above after again against all also am an and any are aren't as at be
because been before being below between both but by can can't cannot could couldn't did didn't do does
doesn't doing don't down during each few for from further get got had hadn't has hasn't have haven't
having he he'd he'll he's her here here's hers herself him himself his how how's i i'd i'll i'm i've if
in into is isn't it it's its itself just let's like made make many may me might more most much must
mustn't my myself new no nor not now of off on once one only or other ought our ours ourselves out over
own same say said says she she'd she'll she's should shouldn't so some such than that that's the their
theirs them themselves then there there's these they they'd they'll they're they've this those through
to too two under until up us very was wasn't we we'd we'll we're we've were weren't what what's when
when's where where's which while who who's whom why why's will with won't would wouldn't yet you you'd
you'll you're you've your yours yourself yourselves`)

// KeywordsAnalyzer ranks the non stop words of a document by frequency.
type KeywordsAnalyzer struct {
	sentiment    *SentimentAnalyzer
	classifier   TextClassifier
	defaultLimit int
}

// NewKeywordsAnalyzer builds the analyzer. sentiment and classifier may be
// nil, in which case the matching keyword options are ignored.
func NewKeywordsAnalyzer(sentiment *SentimentAnalyzer, classifier TextClassifier, defaultLimit int) *KeywordsAnalyzer {
	if defaultLimit <= 0 {
		defaultLimit = DEFAULT_KEYWORDS_LIMIT
	}
	return &KeywordsAnalyzer{
		sentiment:    sentiment,
		classifier:   classifier,
		defaultLimit: defaultLimit,
	}
}

func (a *KeywordsAnalyzer) Feature() string { return models.FeatureKeywords }

func (a *KeywordsAnalyzer) Analyze(ctx context.Context, doc Document, features models.Features, out *models.AnalysisResults) error {
	opts := features.Keywords()
	if opts == nil {
		return nil
	}

	limit := a.defaultLimit
	if opts.Limit != nil && *opts.Limit > 0 {
		limit = int(*opts.Limit)
	}

	keywords := RankKeywords(doc.Text, limit)
	if len(keywords) == 0 {
		out.Keywords = []models.KeywordsResult{}
		return nil
	}

	sentences := doc.Sentences()
	if opts.Sentiment != nil && *opts.Sentiment && a.sentiment != nil {
		for i := range keywords {
			if score, found := a.sentiment.scoreMentions(sentences, keywords[i].Text); found {
				keywords[i].Sentiment = &models.FeatureSentimentResults{Score: score}
			}
		}
	}

	if opts.Emotion != nil && *opts.Emotion && a.classifier != nil {
		inputs := make([]string, len(keywords))
		for i, k := range keywords {
			inputs[i] = mentioning(sentences, k.Text)
		}
		labels, err := a.classifier.Classify(ctx, inputs)
		if err != nil {
			return err
		}
		for i := range keywords {
			keywords[i].Emotion = EmotionScoresFromLabels(labelsAt(labels, i))
		}
	}

	out.Keywords = keywords
	return nil
}

// RankKeywords returns up to limit keywords ordered by count, then first
// appearance. Relevance is the count relative to the top keyword.
func RankKeywords(text string, limit int) []models.KeywordsResult {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for i, token := range Tokenize(text) {
		token = strings.Trim(token, "'")
		if len([]rune(token)) < 3 || isNumeric(token) {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		if _, ok := counts[token]; !ok {
			firstSeen[token] = i
		}
		counts[token]++
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return firstSeen[words[i]] < firstSeen[words[j]]
	})
	if limit > 0 && len(words) > limit {
		words = words[:limit]
	}
	if len(words) == 0 {
		return nil
	}

	top := float64(counts[words[0]])
	results := make([]models.KeywordsResult, len(words))
	for i, w := range words {
		results[i] = models.KeywordsResult{
			Text:      w,
			Count:     int64(counts[w]),
			Relevance: math.Round(float64(counts[w])/top*1e6) / 1e6,
		}
	}
	return results
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func toWordSet(words string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(words) {
		set[w] = struct{}{}
	}
	return set
}
