package newsletter

import (
	"io"
	"strings"

	"github.com/emersion/go-message/mail"
	"github.com/go-shiori/go-readability"

	"github.com/newspulse/newspulse/errors"
)

// extractText parses a raw RFC 822 message and returns its body as plain
// text plus the header subject. HTML parts are preferred and run through
// readability to strip the layout tables and tracking junk newsletters
// carry; a plain-text part is the fallback.
func extractText(r io.Reader) (body, subject string, err error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return "", "", errors.Wrap(err, "parsing message")
	}

	subject, _ = mr.Header.Subject()

	var plain, html strings.Builder
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", "", errors.Wrap(err, "reading message part")
		}

		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}

		ctype, _, _ := h.ContentType()
		data, err := io.ReadAll(p.Body)
		if err != nil {
			return "", "", errors.Wrap(err, "reading part body")
		}

		switch ctype {
		case "text/html":
			html.Write(data)
		case "text/plain", "":
			plain.Write(data)
		}
	}

	if html.Len() > 0 {
		article, err := readability.FromReader(strings.NewReader(html.String()), nil)
		if err == nil && strings.TrimSpace(article.TextContent) != "" {
			return strings.TrimSpace(article.TextContent), subject, nil
		}
		// Unreadable HTML falls through to the plain part if there is one
	}

	if plain.Len() > 0 {
		return strings.TrimSpace(plain.String()), subject, nil
	}

	return "", subject, errors.New("message has no text content")
}
