package services

import (
	"context"
	"fmt"
	"letter-lab/codec"
	"letter-lab/domain"
	"letter-lab/domain/event"
	"letter-lab/errors"
	"letter-lab/moderation"
	"letter-lab/observability"
	"log/slog"
	"net/url"
	"time"

	"github.com/abadojack/whatlanggo"
)

const defaultLang = "ko"

type ILetterService interface {
	Compose(ctx context.Context, req ComposeRequest) (Composed, error)
	Open(ctx context.Context, values url.Values) LetterView
}

// Composed is the result of a successful composition.
type Composed struct {
	Letter domain.Letter
	Token  codec.Token
	URL    string
}

// LetterView is everything the rendering layer needs to display a letter.
type LetterView struct {
	Letter        domain.Letter
	Format        domain.Format
	Lang          string
	Title         string
	Description   string
	CensoredWords int
}

type LetterService struct {
	log        *slog.Logger
	decoder    codec.Decoder
	moderator  moderation.Moderator
	monitoring *observability.MonitoringManager
	events     chan<- event.Event
	baseURL    string
	limits     Limits
}

func NewLetterService(
	log *slog.Logger,
	moderator moderation.Moderator,
	monitoring *observability.MonitoringManager,
	events chan<- event.Event,
	baseURL string,
	limits Limits,
) *LetterService {
	return &LetterService{
		log:        log,
		decoder:    codec.NewDecoder(log),
		moderator:  moderator,
		monitoring: monitoring,
		events:     events,
		baseURL:    baseURL,
		limits:     limits,
	}
}

// Compose validates the request and builds the shareable link.
func (s *LetterService) Compose(_ context.Context, req ComposeRequest) (Composed, error) {
	req = req.Normalize()
	if err := req.Validate(s.limits); err != nil {
		return Composed{}, fmt.Errorf("%w: %v", errors.ErrInvalidLetter, err)
	}

	letter := req.Letter().WithDefaultSender()
	token, err := codec.Encode(letter)
	if err != nil {
		return Composed{}, err
	}
	link := codec.LinkFromToken(s.baseURL, token)

	s.monitoring.IncrComposed()
	s.emit(event.NewComposed(time.Now().UTC()))
	s.log.Debug("Letter composed", "token_length", len(token))

	return Composed{Letter: letter, Token: token, URL: link}, nil
}

// Open decodes a link query. It never fails: unreadable links render the default letter.
func (s *LetterService) Open(_ context.Context, values url.Values) LetterView {
	letter, format := s.decoder.DecodeWithFormat(values)
	censored, words := s.moderator.CensorLetter(letter)

	s.monitoring.IncrOpened(format)
	if len(words) > 0 {
		s.monitoring.AddCensoredWords(len(words))
	}
	s.emit(event.NewOpened(format, time.Now().UTC()))

	return LetterView{
		Letter:        censored,
		Format:        format,
		Lang:          detectLang(censored.Message),
		Title:         Title(censored),
		Description:   Description(censored),
		CensoredWords: len(words),
	}
}

// Title is used for the page title and social previews.
func Title(letter domain.Letter) string {
	return fmt.Sprintf("%s님에게 온 크리스마스 편지 🎄", letter.To)
}

func Description(letter domain.Letter) string {
	return fmt.Sprintf("%s님이 보낸 따뜻한 크리스마스 메시지", letter.From)
}

// emit never blocks a request; stats are best effort.
func (s *LetterService) emit(e event.Event) {
	select {
	case s.events <- e:
	default:
		s.monitoring.IncrDroppedEvents()
		s.log.Debug("Stats buffer full, event dropped", "kind", e.Kind)
	}
}

func detectLang(text string) string {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return defaultLang
	}
	if code := info.Lang.Iso6391(); code != "" {
		return code
	}
	return defaultLang
}
