package discover

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/bulksend/internal/phone"
	"github.com/roach88/bulksend/internal/sheet"
)

// DefaultKeywords are the header fragments that mark a phone-number column.
var DefaultKeywords = []string{
	"hand phone",
	"phone",
	"phone number",
	"phonenumber",
	"number",
	"mobile",
	"telephone",
	"telephone no.",
	"telephone no",
}

// KeywordLocator treats the first row containing a keyword (case-insensitive
// substring) in any cell as the header row, and the first matching cell in
// that row as the phone column. There is no scoring: earliest match wins.
type KeywordLocator struct {
	keywords []string
	folder   cases.Caser
}

// NewKeywordLocator builds a locator for the given keywords.
// With no keywords it uses DefaultKeywords.
func NewKeywordLocator(keywords ...string) *KeywordLocator {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	l := &KeywordLocator{folder: cases.Fold()}
	l.keywords = make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			l.keywords = append(l.keywords, l.fold(k))
		}
	}
	return l
}

// Locate implements Locator.
func (l *KeywordLocator) Locate(rows []sheet.Row) (Column, bool) {
	for i, row := range rows {
		for j, cell := range row {
			if cell == nil {
				continue
			}
			text := phone.Text(cell)
			if l.matches(text) {
				return Column{HeaderRow: i, Index: j, Header: text}, true
			}
		}
	}
	return Column{}, false
}

func (l *KeywordLocator) matches(text string) bool {
	folded := l.fold(text)
	for _, k := range l.keywords {
		if strings.Contains(folded, k) {
			return true
		}
	}
	return false
}

// fold applies compatibility normalization then case folding, so that
// "ＰＨＯＮＥ" and "Phone" compare equal.
func (l *KeywordLocator) fold(s string) string {
	return l.folder.String(norm.NFKC.String(s))
}
