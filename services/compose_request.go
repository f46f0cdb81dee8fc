package services

import (
	"fmt"
	"letter-lab/domain"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ComposeRequest is what the compose form or the JSON API sends.
type ComposeRequest struct {
	To      string `json:"to" validate:"required"`
	From    string `json:"from"`
	Message string `json:"message" validate:"required"`
}

// Limits bounds field lengths, counted in characters.
type Limits struct {
	MaxTo      int
	MaxFrom    int
	MaxMessage int
}

func DefaultLimits() Limits {
	return Limits{MaxTo: 50, MaxFrom: 50, MaxMessage: 2000}
}

// Normalize trims surrounding blanks so a whitespace-only recipient counts as missing.
func (r ComposeRequest) Normalize() ComposeRequest {
	return ComposeRequest{
		To:      strings.TrimSpace(r.To),
		From:    strings.TrimSpace(r.From),
		Message: strings.TrimSpace(r.Message),
	}
}

// Validate checks required fields, then lengths against the limits.
func (r ComposeRequest) Validate(limits Limits) error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	for _, field := range []struct {
		name  string
		value string
		max   int
	}{
		{"to", r.To, limits.MaxTo},
		{"from", r.From, limits.MaxFrom},
		{"message", r.Message, limits.MaxMessage},
	} {
		if field.max <= 0 {
			continue
		}
		if err := validate.Var(field.value, fmt.Sprintf("max=%d", field.max)); err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
	}
	return nil
}

func (r ComposeRequest) Letter() domain.Letter {
	return domain.Letter{To: r.To, From: r.From, Message: r.Message}
}
