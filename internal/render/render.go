// Package render turns assistant replies into display markup: a small
// markdown subset rendered to HTML for the web page and glamour output
// for the terminal.
package render

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeHTML escapes the five HTML-significant characters.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// Capitalize upper-cases the first character of s.
func Capitalize(s string) string {
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

var (
	codeSpan   = regexp.MustCompile("`([^`]+)`")
	boldStars  = regexp.MustCompile(`\*\*([\s\S]+?)\*\*`)
	boldUnders = regexp.MustCompile(`__([\s\S]+?)__`)
	blockquote = regexp.MustCompile(`(?m)^&gt; (.+)$`)
	bareURL    = regexp.MustCompile(`(https?://[^\s]+)`)

	// Both italic forms need a lookahead so the trailing boundary
	// character is left for the next match.
	italicStars  = mustCompile2(`(^|[\s>_])\*([\s\S]+?)\*(?=[\s<._]|$)`)
	italicUnders = mustCompile2(`(^|[\s>])_([\s\S]+?)_(?=[\s<]|$)`)
)

func mustCompile2(expr string) *regexp2.Regexp {
	re := regexp2.MustCompile(expr, regexp2.None)
	re.MatchTimeout = time.Second
	return re
}

// Markdown renders text as HTML. Emphasis never applies inside code spans
// and unmatched delimiters are left as typed.
func Markdown(text string) string {
	html := applyBasicMarkdown(EscapeHTML(text))
	html = bareURL.ReplaceAllString(html, `<a href="$1" target="_blank" rel="noopener">$1</a>`)
	return strings.ReplaceAll(html, "\n", "<br>")
}

func applyBasicMarkdown(html string) string {
	var snippets []string
	html = codeSpan.ReplaceAllStringFunc(html, func(m string) string {
		token := fmt.Sprintf("@@CODE_%d@@", len(snippets))
		snippets = append(snippets, "<code>"+m[1:len(m)-1]+"</code>")
		return token
	})

	html = boldStars.ReplaceAllString(html, "<strong>$1</strong>")
	html = boldUnders.ReplaceAllString(html, "<strong>$1</strong>")
	html = replaceEmphasis(italicStars, html)
	html = replaceEmphasis(italicUnders, html)
	html = blockquote.ReplaceAllString(html, "<blockquote>$1</blockquote>")

	for i, snippet := range snippets {
		html = strings.Replace(html, fmt.Sprintf("@@CODE_%d@@", i), snippet, 1)
	}
	return html
}

func replaceEmphasis(re *regexp2.Regexp, html string) string {
	out, err := re.ReplaceFunc(html, func(m regexp2.Match) string {
		return m.GroupByNumber(1).String() + "<em>" + m.GroupByNumber(2).String() + "</em>"
	}, -1, -1)
	if err != nil {
		return html
	}
	return out
}
