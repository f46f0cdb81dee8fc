package codec

import (
	"letter-lab/domain"
	"net/url"
	"strings"
)

// Query parameter names recognised on /letter links.
const (
	KeyToken   = "d"
	KeyTo      = "to"
	KeyFrom    = "from"
	KeyMessage = "message"
)

// Query is the shape of an incoming link: CompactToken, LegacyFields or Unrecognized.
type Query interface {
	isQuery()
}

// CompactToken holds the single opaque token of a compact link.
type CompactToken struct {
	Token Token
}

// LegacyFields holds the plain values of links minted before tokens existed.
// Empty strings mean the key was absent or empty.
type LegacyFields struct {
	To      string
	From    string
	Message string
}

type Unrecognized struct{}

func (CompactToken) isQuery() {}
func (LegacyFields) isQuery() {}
func (Unrecognized) isQuery() {}

// Letter returns the legacy values with defaults applied field by field.
func (f LegacyFields) Letter() domain.Letter {
	return domain.Letter{To: f.To, From: f.From, Message: f.Message}.WithDefaults()
}

// ParseQuery resolves the query shape. A non-empty token always wins over legacy keys.
func ParseQuery(values url.Values) Query {
	if token := values.Get(KeyToken); token != "" {
		return CompactToken{Token: Token(token)}
	}
	if values.Has(KeyTo) || values.Has(KeyFrom) || values.Has(KeyMessage) {
		return LegacyFields{
			To:      values.Get(KeyTo),
			From:    values.Get(KeyFrom),
			Message: values.Get(KeyMessage),
		}
	}
	return Unrecognized{}
}

// ValuesFromInput accepts a full link, a raw query string or a bare token.
func ValuesFromInput(input string) url.Values {
	input = strings.TrimSpace(input)
	if i := strings.IndexByte(input, '?'); i >= 0 {
		input = input[i+1:]
	} else if !strings.Contains(input, "=") {
		return url.Values{KeyToken: []string{input}}
	}
	// ParseQuery keeps every pair it managed to read
	values, _ := url.ParseQuery(input)
	return values
}
