package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// maxFetchedChars caps the plain text produced from a fetched page.
const maxFetchedChars = 50000

// Tags that terminate a run of inline text. Each occurrence becomes a
// newline so list items, paragraphs and table cells stay separated.
var blockTags = map[string]bool{
	"div": true, "p": true, "br": true, "hr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "ul": true, "ol": true, "tr": true, "td": true, "th": true,
	"table": true, "section": true, "article": true,
	"header": true, "footer": true, "nav": true,
}

var skippedTags = map[string]bool{
	"script": true, "style": true, "noscript": true,
}

var (
	spaceRunRe    = regexp.MustCompile(`[ \t\r\f]+`)
	spaceAroundNL = regexp.MustCompile(` *\n *`)
	blankRunRe    = regexp.MustCompile(`\n{3,}`)
)

// HTMLToText converts an HTML document to plain text: script/style blocks
// and comments are dropped, block-level tags become newlines, remaining
// markup is stripped and entities decoded by the tokenizer. The result has
// whitespace runs and blank lines collapsed and is capped at maxChars.
func HTMLToText(src string, maxChars int) string {
	z := html.NewTokenizer(strings.NewReader(src))
	var b strings.Builder
	skip := ""

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		switch tt {
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skippedTags[tag] {
				if tt == html.StartTagToken {
					skip = tag
				} else if tt == html.EndTagToken && skip == tag {
					skip = ""
				}
				continue
			}
			if blockTags[tag] {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		case html.TextToken:
			if skip == "" {
				b.Write(z.Text())
			}
		}
		// Comments and doctypes are dropped.
	}

	return truncateText(collapseWhitespace(b.String()), maxChars)
}

func collapseWhitespace(s string) string {
	// The tokenizer decodes &nbsp; to U+00A0, which spaceRunRe would not
	// touch. Flatten it to a plain space first.
	s = strings.ReplaceAll(s, " ", " ")
	s = spaceRunRe.ReplaceAllString(s, " ")
	s = spaceAroundNL.ReplaceAllString(s, "\n")
	s = blankRunRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// truncateText caps s at max bytes without splitting a UTF-8 sequence.
func truncateText(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := s[:max]
	for len(cut) > 0 {
		if r, _ := utf8.DecodeLastRuneInString(cut); r != utf8.RuneError {
			break
		}
		cut = cut[:len(cut)-1]
	}
	return cut
}
