// Package codec turns a Letter into a compact URL-safe token and back.
//
// Tokens are lz-string "encoded URI component" compressions of the JSON object
// {"to","from","message"}, the same scheme browsers use to mint links. The JSON is
// written the way JSON.stringify writes it, so a letter yields the same token here
// and in the browser.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"letter-lab/domain"
	"letter-lab/errors"
	"log/slog"
	"net/url"
	"strings"

	lzstring "github.com/daku10/go-lz-string"
)

const letterPath = "/letter"

// Token is the opaque value carried by the d query parameter.
type Token string

func (t Token) String() string {
	return string(t)
}

// Encode serializes the letter into a token.
// Callers must provide a recipient and a message; an empty sender becomes the anonymous sender.
func Encode(letter domain.Letter) (Token, error) {
	letter = letter.WithDefaultSender()
	letter = domain.Letter{
		To:      strings.ToValidUTF8(letter.To, "�"),
		From:    strings.ToValidUTF8(letter.From, "�"),
		Message: strings.ToValidUTF8(letter.Message, "�"),
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(letter); err != nil {
		return "", fmt.Errorf("letter serialization failed: %w", err)
	}

	payload := unescapeLineSeparators(strings.TrimSuffix(buf.String(), "\n"))
	compressed, err := lzstring.CompressToEncodedURIComponent(payload)
	if err != nil {
		return "", fmt.Errorf("letter compression failed: %w", err)
	}
	return Token(compressed), nil
}

// Link composes the shareable address of a letter.
func Link(base string, letter domain.Letter) (string, error) {
	token, err := Encode(letter)
	if err != nil {
		return "", err
	}
	return LinkFromToken(base, token), nil
}

// LinkFromToken needs no escaping: the token alphabet is URL-safe.
func LinkFromToken(base string, token Token) string {
	return strings.TrimRight(base, "/") + letterPath + "?" + KeyToken + "=" + token.String()
}

// LegacyLink composes an old-style link with three plain parameters.
// Only kept to reproduce links minted before tokens existed.
func LegacyLink(base string, letter domain.Letter) string {
	values := url.Values{}
	values.Set(KeyTo, letter.To)
	values.Set(KeyFrom, letter.From)
	values.Set(KeyMessage, letter.Message)
	return strings.TrimRight(base, "/") + letterPath + "?" + values.Encode()
}

// Decoder rebuilds letters from link query parameters. It never fails.
type Decoder struct {
	log *slog.Logger
}

func NewDecoder(log *slog.Logger) Decoder {
	return Decoder{log: log}
}

// Decode always returns a fully populated letter.
func (d Decoder) Decode(values url.Values) domain.Letter {
	letter, _ := d.DecodeWithFormat(values)
	return letter
}

// DecodeWithFormat also reports which path produced the letter.
// A malformed token yields the default letter, even if legacy keys are present too.
func (d Decoder) DecodeWithFormat(values url.Values) (domain.Letter, domain.Format) {
	switch q := ParseQuery(values).(type) {
	case CompactToken:
		letter, err := DecodeToken(q.Token)
		if err != nil {
			d.log.Warn("Malformed letter token, rendering default letter",
				"error", err, "token_length", len(q.Token))
			return domain.DefaultLetter(), domain.FormatFallback
		}
		return letter, domain.FormatCompact
	case LegacyFields:
		return q.Letter(), domain.FormatLegacy
	default:
		return domain.DefaultLetter(), domain.FormatFallback
	}
}

// DecodeToken reverses Encode. Missing or empty fields take their defaults,
// but any structural problem fails the whole token.
func DecodeToken(token Token) (domain.Letter, error) {
	// Query decoding turns '+' into spaces; the token alphabet has no spaces.
	raw := strings.ReplaceAll(token.String(), " ", "+")

	decompressed, err := decompress(raw)
	if err != nil {
		return domain.Letter{}, err
	}
	if decompressed == "" {
		return domain.Letter{}, fmt.Errorf("%w: empty payload", errors.ErrMalformedToken)
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(decompressed), &fields); err != nil {
		return domain.Letter{}, fmt.Errorf("%w: %v", errors.ErrUnexpectedPayload, err)
	}
	if fields == nil {
		return domain.Letter{}, fmt.Errorf("%w: null payload", errors.ErrUnexpectedPayload)
	}

	var letter domain.Letter
	for key, target := range map[string]*string{
		KeyTo:      &letter.To,
		KeyFrom:    &letter.From,
		KeyMessage: &letter.Message,
	} {
		value, ok := fields[key]
		if !ok || value == nil {
			continue
		}
		str, ok := value.(string)
		if !ok {
			return domain.Letter{}, fmt.Errorf("%w: field %q is %T", errors.ErrUnexpectedPayload, key, value)
		}
		*target = str
	}
	return letter.WithDefaults(), nil
}

// decompress never panics; the decompressor is not hardened against hostile input.
func decompress(raw string) (decompressed string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: decompressor panic: %v", errors.ErrMalformedToken, r)
		}
	}()
	decompressed, err = lzstring.DecompressFromEncodedURIComponent(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrMalformedToken, err)
	}
	return decompressed, nil
}

// unescapeLineSeparators writes U+2028 and U+2029 as raw runes, like JSON.stringify.
// encoding/json always escapes them; escaped backslashes are copied untouched.
func unescapeLineSeparators(payload string) string {
	if !strings.Contains(payload, `\u202`) {
		return payload
	}
	var b strings.Builder
	b.Grow(len(payload))
	for i := 0; i < len(payload); i++ {
		if payload[i] != '\\' || i+1 >= len(payload) {
			b.WriteByte(payload[i])
			continue
		}
		switch rest := payload[i:]; {
		case strings.HasPrefix(rest, `\u2028`):
			b.WriteRune('\u2028')
			i += 5
		case strings.HasPrefix(rest, `\u2029`):
			b.WriteRune('\u2029')
			i += 5
		default:
			b.WriteString(rest[:2])
			i++
		}
	}
	return b.String()
}
