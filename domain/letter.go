// Package domain contains core concepts of the letter system.
// This file defines the Letter record and its defaulting rules.
// A Letter lives only as long as a single encode or decode call.
package domain

const (
	DefaultTo      = "친구"
	DefaultFrom    = "익명"
	DefaultMessage = "메리 크리스마스! 🎄"
)

// Letter is the whole payload of a shared link.
// Field order matches the JSON produced by links minted in the browser.
type Letter struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Message string `json:"message"`
}

// DefaultLetter is rendered whenever a link cannot be understood.
func DefaultLetter() Letter {
	return Letter{To: DefaultTo, From: DefaultFrom, Message: DefaultMessage}
}

// WithDefaults fills every empty field with its semantic default.
func (l Letter) WithDefaults() Letter {
	if l.To == "" {
		l.To = DefaultTo
	}
	if l.From == "" {
		l.From = DefaultFrom
	}
	if l.Message == "" {
		l.Message = DefaultMessage
	}
	return l
}

// WithDefaultSender only fills the sender, as done before encoding.
func (l Letter) WithDefaultSender() Letter {
	if l.From == "" {
		l.From = DefaultFrom
	}
	return l
}

// Format tells how a letter was recovered from a link.
type Format string

const (
	FormatCompact  Format = "compact"
	FormatLegacy   Format = "legacy"
	FormatFallback Format = "fallback"
)

func (f Format) String() string {
	return string(f)
}
