package services

import (
	"context"
	"letter-lab/codec"
	"letter-lab/domain"
	"letter-lab/domain/event"
	"letter-lab/errors"
	"letter-lab/moderation"
	"letter-lab/observability"
	"log/slog"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const baseURL = "https://xmas.example.com"

func newTestService(t *testing.T, words []string, buffer int) (*LetterService, chan event.Event, *observability.MonitoringManager) {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	moderator, err := moderation.NewModerator(words, '*', log)
	require.NoError(t, err)
	monitoring := observability.NewMonitoringManager(log, time.Second)
	events := make(chan event.Event, buffer)
	return NewLetterService(log, moderator, monitoring, events, baseURL, DefaultLimits()), events, monitoring
}

func TestLetterService_Compose(t *testing.T) {
	req := require.New(t)
	svc, events, monitoring := newTestService(t, nil, 1)

	composed, err := svc.Compose(context.Background(), ComposeRequest{To: " 철수 ", Message: "메리 크리스마스"})
	req.NoError(err)

	// The sender is filled before encoding and fields are trimmed
	req.Equal(domain.Letter{To: "철수", From: domain.DefaultFrom, Message: "메리 크리스마스"}, composed.Letter)
	req.Equal(baseURL+"/letter?d="+composed.Token.String(), composed.URL)

	parsed, err := url.Parse(composed.URL)
	req.NoError(err)
	req.Equal(composed.Letter, codec.NewDecoder(slog.Default()).Decode(parsed.Query()))

	e := <-events
	req.Equal(event.KindComposed, e.Kind)
	req.Equal(uint64(1), monitoring.GetLatest().Composed)
}

func TestLetterService_Compose_Validation(t *testing.T) {
	svc, _, _ := newTestService(t, nil, 10)

	tests := []struct {
		name string
		req  ComposeRequest
	}{
		{"Missing recipient", ComposeRequest{Message: "hi"}},
		{"Blank recipient", ComposeRequest{To: "   ", Message: "hi"}},
		{"Missing message", ComposeRequest{To: "철수"}},
		{"Recipient too long", ComposeRequest{To: strings.Repeat("가", 51), Message: "hi"}},
		{"Sender too long", ComposeRequest{To: "A", From: strings.Repeat("b", 51), Message: "hi"}},
		{"Message too long", ComposeRequest{To: "A", Message: strings.Repeat("눈", 2001)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			composed, err := svc.Compose(context.Background(), tt.req)
			req.ErrorIs(err, errors.ErrInvalidLetter)
			req.Empty(composed.URL)
		})
	}
}

func TestLetterService_Compose_LengthCountsCharacters(t *testing.T) {
	req := require.New(t)
	svc, _, _ := newTestService(t, nil, 1)

	// 50 Hangul syllables are 150 bytes but only 50 characters
	_, err := svc.Compose(context.Background(), ComposeRequest{To: strings.Repeat("가", 50), Message: "hi"})
	req.NoError(err)
}

func TestLetterService_Open(t *testing.T) {
	req := require.New(t)
	svc, events, monitoring := newTestService(t, []string{"바보"}, 2)

	token, err := codec.Encode(domain.Letter{To: "영희", From: "철수", Message: "바보야 메리 크리스마스! 올해도 고마웠어"})
	req.NoError(err)

	view := svc.Open(context.Background(), url.Values{codec.KeyToken: {token.String()}})
	req.Equal(domain.FormatCompact, view.Format)
	req.Equal("**야 메리 크리스마스! 올해도 고마웠어", view.Letter.Message)
	req.Equal(1, view.CensoredWords)
	req.Equal("영희님에게 온 크리스마스 편지 🎄", view.Title)
	req.Equal("철수님이 보낸 따뜻한 크리스마스 메시지", view.Description)
	req.Equal("ko", view.Lang)

	e := <-events
	req.Equal(event.KindOpenedCompact, e.Kind)
	stats := monitoring.GetLatest()
	req.Equal(uint64(1), stats.OpenedCompact)
	req.Equal(uint64(1), stats.CensoredWords)
}

func TestLetterService_Open_NeverFails(t *testing.T) {
	req := require.New(t)
	svc, events, _ := newTestService(t, nil, 1)

	view := svc.Open(context.Background(), url.Values{codec.KeyToken: {"corrupted!"}, codec.KeyTo: {"X"}})
	req.Equal(domain.DefaultLetter(), view.Letter)
	req.Equal(domain.FormatFallback, view.Format)

	e := <-events
	req.Equal(event.KindOpenedFallback, e.Kind)
}

func TestLetterService_EventsNeverBlock(t *testing.T) {
	req := require.New(t)
	// Given a stats buffer with no room
	svc, _, monitoring := newTestService(t, nil, 0)

	done := make(chan struct{})
	go func() {
		svc.Open(context.Background(), url.Values{codec.KeyTo: {"A"}})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("Open blocked on a full stats buffer")
	}
	req.Equal(uint64(1), monitoring.GetLatest().DroppedEvents)
	req.Equal(uint64(1), monitoring.GetLatest().OpenedLegacy)
}

func TestDetectLang(t *testing.T) {
	req := require.New(t)
	req.Equal("ko", detectLang(""))
	req.NotEmpty(detectLang("Merry Christmas and a happy new year to you and your whole family"))
	req.Equal("ko", detectLang("메리 크리스마스! 올해도 정말 고마웠어. 내년에도 잘 부탁해"))
}
