package scanner

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-message"
)

var (
	htmlHeadPattern   = regexp.MustCompile(`(?is)<head\b.*?</head>`)
	htmlStylePattern  = regexp.MustCompile(`(?is)<style\b.*?</style>`)
	htmlScriptPattern = regexp.MustCompile(`(?is)<script\b.*?</script>`)
	htmlTagPattern    = regexp.MustCompile(`<[^>]*>`)
)

// messageText parses a fetched message into the text the extractors
// consume: the plain-text part concatenated with the HTML part reduced
// to text.
func messageText(msg *imap.Message, section *imap.BodySectionName) (string, error) {
	r := msg.GetBody(section)
	if r == nil {
		return "", fmt.Errorf("message has no body section")
	}

	entity, err := message.Read(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return "", fmt.Errorf("failed to read message: %w", err)
	}

	var plain, html string

	if mr := entity.MultipartReader(); mr != nil {
		for {
			p, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				return "", fmt.Errorf("failed to read part: %w", err)
			}

			content, err := io.ReadAll(p.Body)
			if err != nil {
				return "", fmt.Errorf("failed to read part body: %w", err)
			}

			contentType := p.Header.Get("Content-Type")
			if strings.Contains(contentType, "text/plain") {
				plain += string(content)
			} else if strings.Contains(contentType, "text/html") {
				html += string(content)
			}
		}
	} else {
		content, err := io.ReadAll(entity.Body)
		if err != nil {
			return "", fmt.Errorf("failed to read message body: %w", err)
		}

		contentType := entity.Header.Get("Content-Type")
		if strings.Contains(contentType, "text/html") {
			html = string(content)
		} else {
			plain = string(content)
		}
	}

	combined := strings.TrimSpace(plain + "\n" + htmlToText(html))
	return combined, nil
}

// htmlToText reduces an HTML body to the text the extractors can match
// against. Head, style, and script content carries no shipment facts
// and is removed before tags are stripped.
func htmlToText(html string) string {
	if html == "" {
		return ""
	}

	text := htmlHeadPattern.ReplaceAllString(html, "")
	text = htmlStylePattern.ReplaceAllString(text, "")
	text = htmlScriptPattern.ReplaceAllString(text, "")

	replacements := []struct {
		from string
		to   string
	}{
		{"<br>", "\n"},
		{"<br/>", "\n"},
		{"<br />", "\n"},
		{"</p>", "\n"},
		{"</div>", "\n"},
		{"</tr>", "\n"},
		{"&nbsp;", " "},
		{"&amp;", "&"},
		{"&lt;", "<"},
		{"&gt;", ">"},
		{"&quot;", "\""},
		{"&#39;", "'"},
	}
	for _, replacement := range replacements {
		text = strings.ReplaceAll(text, replacement.from, replacement.to)
	}

	text = htmlTagPattern.ReplaceAllString(text, " ")

	// Collapse runs of spaces and tabs left behind by stripped markup,
	// keeping line breaks so section labels still end their lines.
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	return strings.TrimSpace(b.String())
}
