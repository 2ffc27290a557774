package analysis

import (
	"html"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
	"github.com/spacesedan/nluflow/internal/models"
)

var (
	linkPattern     = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern      = regexp.MustCompile(`https?://\S+|www\.\S+`)
	sentencePattern = regexp.MustCompile(`[^.!?\n]+[.!?]*`)
	tagOpen         = regexp.MustCompile(`<`)

	stripPolicy = bluemonday.StrictPolicy()
)

// Document is the prepared input every local analyzer reads.
type Document struct {
	Text         string
	HTML         string
	URL          string
	Language     string
	RetrievedURL string
}

// Sentences splits the document text on terminal punctuation and newlines.
func (d Document) Sentences() []string {
	return SplitSentences(d.Text)
}

// PrepareDocument turns the request input into plain text. Markdown in Text is
// rendered and stripped, HTML is stripped. The page for a URL request must
// already be in pageHTML.
func PrepareDocument(req models.AnalyzeRequest, pageHTML string) Document {
	doc := Document{
		URL:      req.URL,
		Language: "en",
	}
	if req.Language != nil && *req.Language != "" {
		doc.Language = *req.Language
	}

	switch {
	case req.Text != "":
		doc.Text = ConvertMarkdownToText(req.Text)
	case req.HTML != "":
		doc.HTML = req.HTML
		doc.Text = StripHTML(req.HTML)
	case req.URL != "":
		doc.HTML = pageHTML
		doc.Text = StripHTML(pageHTML)
		doc.RetrievedURL = req.URL
	}

	if req.LimitTextCharacters != nil && *req.LimitTextCharacters > 0 {
		doc.Text = LimitText(doc.Text, int(*req.LimitTextCharacters))
	}
	return doc
}

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1")
	return urlPattern.ReplaceAllString(input, "")
}

// ConvertMarkdownToText renders markdown and keeps only its text.
func ConvertMarkdownToText(input string) string {
	output := blackfriday.Run([]byte(RemoveLinks(input)), blackfriday.WithNoExtensions())
	return StripHTML(string(output))
}

// StripHTML drops every tag along with script and style bodies.
func StripHTML(input string) string {
	spaced := tagOpen.ReplaceAllString(input, " <")
	return collapseSpaces(html.UnescapeString(stripPolicy.Sanitize(spaced)))
}

// LimitText truncates s to at most n characters.
func LimitText(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}

func SplitSentences(text string) []string {
	var sentences []string
	for _, s := range sentencePattern.FindAllString(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// Tokenize lower-cases text and splits it into words. Apostrophes inside a
// word are kept.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
