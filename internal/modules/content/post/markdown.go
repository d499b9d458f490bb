package post

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	boldRe   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicRe = regexp.MustCompile(`\*(.+?)\*`)
	codeRe   = regexp.MustCompile("`([^`]+)`")
	linkRe   = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)
	olItemRe = regexp.MustCompile(`^\d+\. `)

	lower = cases.Lower(language.Und)
)

type listKind string

const (
	listNone    listKind = ""
	listOrdered listKind = "ol"
	listBullet  listKind = "ul"
)

// Transform renders the supported markdown subset to HTML. It runs once per
// load; feeding its own output back in is not supported.
//
// Recognized blocks: h1-h3 headings with slug anchors, fenced code, "- " and
// "N. " list items. Every other non-blank line becomes a paragraph.
func Transform(body string) string {
	lines := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))

	list := listNone
	closeList := func() {
		if list != listNone {
			out = append(out, "</"+string(list)+">")
			list = listNone
		}
	}

	inFence := false
	fenceLang := ""
	var code []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if inFence {
			if strings.HasPrefix(trimmed, "```") {
				out = append(out, renderCode(fenceLang, code))
				inFence, fenceLang, code = false, "", nil
				continue
			}
			code = append(code, line)
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "```"):
			closeList()
			inFence = true
			fenceLang = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
		case trimmed == "":
		case strings.HasPrefix(trimmed, "### "):
			closeList()
			out = append(out, renderHeading(3, trimmed[4:]))
		case strings.HasPrefix(trimmed, "## "):
			closeList()
			out = append(out, renderHeading(2, trimmed[3:]))
		case strings.HasPrefix(trimmed, "# "):
			closeList()
			out = append(out, renderHeading(1, trimmed[2:]))
		case strings.HasPrefix(trimmed, "- "):
			if list == listNone {
				list = listBullet
				out = append(out, "<ul>")
			}
			out = append(out, "<li>"+inline(trimmed[2:])+"</li>")
		case olItemRe.MatchString(trimmed):
			if list == listNone {
				list = listOrdered
				out = append(out, "<ol>")
			}
			item := olItemRe.ReplaceAllString(trimmed, "")
			out = append(out, "<li>"+inline(item)+"</li>")
		default:
			closeList()
			out = append(out, "<p>"+inline(trimmed)+"</p>")
		}
	}

	// unterminated fence runs to end of body
	if inFence {
		out = append(out, renderCode(fenceLang, code))
	}
	closeList()

	return strings.Join(out, "\n")
}

func renderHeading(level int, text string) string {
	text = strings.TrimSpace(text)
	return fmt.Sprintf(`<h%d id="%s">%s</h%d>`, level, Slugify(text), text, level)
}

func renderCode(lang string, lines []string) string {
	body := html.EscapeString(strings.Join(lines, "\n"))
	if lang == "" {
		return "<pre><code>" + body + "</code></pre>"
	}
	return fmt.Sprintf(`<pre><code class="language-%s">%s</code></pre>`, html.EscapeString(lang), body)
}

// inline applies span substitutions in a fixed order. Code spans are swapped
// out first so their contents stay literal. Bold must run before italic so
// "**" is not consumed as two single stars.
func inline(s string) string {
	var spans []string
	s = codeRe.ReplaceAllStringFunc(s, func(m string) string {
		spans = append(spans, "<code>"+html.EscapeString(m[1:len(m)-1])+"</code>")
		return fmt.Sprintf("\x00%d\x00", len(spans)-1)
	})
	s = boldRe.ReplaceAllString(s, "<strong>$1</strong>")
	s = italicRe.ReplaceAllString(s, "<em>$1</em>")
	s = linkRe.ReplaceAllString(s, `<a href="$2">$1</a>`)
	for i, span := range spans {
		s = strings.Replace(s, fmt.Sprintf("\x00%d\x00", i), span, 1)
	}
	return s
}

// Slugify turns heading text into an anchor id: lowercased, stripped to
// letters, digits, spaces and hyphens, whitespace runs joined by "-".
func Slugify(text string) string {
	var b strings.Builder
	for _, r := range lower.String(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(strings.Join(strings.Fields(b.String()), "-"), "-")
}
