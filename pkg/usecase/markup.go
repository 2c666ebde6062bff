package usecase

import (
	"regexp"
	"strings"
)

var (
	mdLink    = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)
	mdBold    = regexp.MustCompile(`\*\*(.+?)\*\*|__(.+?)__`)
	mdHeading = regexp.MustCompile(`(?m)^#{1,6}[ \t]+(.+?)[ \t]*#*[ \t]*$`)
	mdBullet  = regexp.MustCompile(`(?m)^([ \t]*)[*+-][ \t]+`)
	mdItalic  = regexp.MustCompile(`(^|[^*\w])\*([^*\s](?:[^*\n]*[^*\s])?)\*`)

	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
)

// boldMark stands in for converted bold markers until italics are rewritten
const boldMark = "\x00"

// toChatMarkup converts LLM markdown into the markup shared by Google Chat and Slack:
// <url|text> links, *bold*, _italic_ and bold headings.
func toChatMarkup(md string) string {
	text := mdLink.ReplaceAllString(md, "<$2|$1>")

	text = mdBold.ReplaceAllStringFunc(text, func(m string) string {
		sub := mdBold.FindStringSubmatch(m)
		inner := sub[1]
		if inner == "" {
			inner = sub[2]
		}
		return boldMark + inner + boldMark
	})

	text = mdHeading.ReplaceAllStringFunc(text, func(m string) string {
		sub := mdHeading.FindStringSubmatch(m)
		return boldMark + strings.ReplaceAll(sub[1], boldMark, "") + boldMark
	})

	text = mdBullet.ReplaceAllString(text, "${1}• ")
	text = mdItalic.ReplaceAllString(text, "${1}_${2}_")

	return strings.ReplaceAll(text, boldMark, "*")
}

// extractEmail returns the first email address in text, or ""
func extractEmail(text string) string {
	return emailPattern.FindString(text)
}
