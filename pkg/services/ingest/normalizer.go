package ingest

import (
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/reperio/pkg/common"
)

// Normalizer prepares raw source content for chunking. HTML is converted to
// markdown; plain text passes through with whitespace normalization.
type Normalizer struct {
	logger arbor.ILogger
}

// NewNormalizer creates a new normalizer
func NewNormalizer(logger arbor.ILogger) *Normalizer {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Normalizer{
		logger: logger,
	}
}

var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]*>`)
	multiSpacePattern = regexp.MustCompile(`[ \t]+`)
	multiLinePattern  = regexp.MustCompile(`\n{3,}`)
)

// Normalize converts source content into chunkable text. Returns the
// normalized text and a display title when one could be extracted from the
// content (HTML <title>), empty otherwise.
func (n *Normalizer) Normalize(content, contentType string) (string, string, error) {
	if looksLikeHTML(content, contentType) {
		return n.normalizeHTML(content)
	}
	return normalizeWhitespace(content), "", nil
}

// normalizeHTML strips non-content elements, extracts the title, and
// converts the remaining HTML to markdown.
func (n *Normalizer) normalizeHTML(content string) (string, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	doc.Find("script, style, noscript").Remove()

	cleaned, err := doc.Html()
	if err != nil {
		cleaned = content
	}

	converter := md.NewConverter("", true, nil)
	converted, err := converter.ConvertString(cleaned)
	if err != nil {
		n.logger.Warn().Err(err).Msg("HTML to markdown conversion failed, using fallback")
		return normalizeWhitespace(stripHTMLTags(content)), title, nil
	}

	markdown := normalizeWhitespace(converted)
	if markdown == "" && content != "" {
		n.logger.Warn().Msg("HTML to markdown conversion produced empty output, applying fallback")
		return normalizeWhitespace(stripHTMLTags(content)), title, nil
	}

	return markdown, title, nil
}

// looksLikeHTML reports whether the content should be treated as HTML.
func looksLikeHTML(content, contentType string) bool {
	if strings.Contains(strings.ToLower(contentType), "html") {
		return true
	}
	head := strings.ToLower(strings.TrimSpace(content))
	if len(head) > 256 {
		head = head[:256]
	}
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

// normalizeWhitespace canonicalizes line endings, collapses runs of spaces
// and blank lines, and trims the result.
func normalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = multiSpacePattern.ReplaceAllString(text, " ")
	text = multiLinePattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// stripHTMLTags removes basic HTML tags for fallback cases
func stripHTMLTags(htmlStr string) string {
	stripped := htmlTagPattern.ReplaceAllString(htmlStr, "")

	// Decode HTML entities (basic set)
	stripped = strings.ReplaceAll(stripped, "&amp;", "&")
	stripped = strings.ReplaceAll(stripped, "&lt;", "<")
	stripped = strings.ReplaceAll(stripped, "&gt;", ">")
	stripped = strings.ReplaceAll(stripped, "&quot;", "\"")
	stripped = strings.ReplaceAll(stripped, "&#39;", "'")
	stripped = strings.ReplaceAll(stripped, "&nbsp;", " ")

	return stripped
}
