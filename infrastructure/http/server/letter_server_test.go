package server

import (
	"encoding/json"
	"letter-lab/codec"
	"letter-lab/domain"
	"letter-lab/domain/event"
	"letter-lab/moderation"
	"letter-lab/observability"
	"letter-lab/services"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const baseURL = "https://xmas.example.com/"

func newTestServer(t *testing.T) (http.Handler, chan event.Event) {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	moderator, err := moderation.NewModerator([]string{"badger"}, '*', log)
	require.NoError(t, err)
	monitoring := observability.NewMonitoringManager(log, time.Second)
	events := make(chan event.Event, 16)
	service := services.NewLetterService(log, moderator, monitoring, events, baseURL, services.DefaultLimits())
	return NewLetterServer(log, service, monitoring, baseURL, services.DefaultLimits()).Handler(), events
}

func TestLetterServer_ComposeAPI(t *testing.T) {
	req := require.New(t)
	handler, _ := newTestServer(t)

	body := `{"to":"철수","message":"메리 크리스마스 <3"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/letters", strings.NewReader(body)))

	req.Equal(http.StatusCreated, rec.Code)
	var resp composeResponse
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	req.Equal("https://xmas.example.com/letter?d="+resp.Token, resp.URL)
	req.Equal(domain.Letter{To: "철수", From: domain.DefaultFrom, Message: "메리 크리스마스 <3"}, resp.Letter)

	// Then the link opens to the same letter
	parsed, err := url.Parse(resp.URL)
	req.NoError(err)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/letter?"+parsed.RawQuery, nil))
	req.Equal(http.StatusOK, rec.Code)

	var letter letterResponse
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &letter))
	req.Equal(resp.Letter, letter.Letter)
	req.Equal(domain.FormatCompact, letter.Format)
}

func TestLetterServer_ComposeAPI_Errors(t *testing.T) {
	handler, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"Invalid JSON", `{"to":`},
		{"Missing message", `{"to":"철수"}`},
		{"Missing recipient", `{"message":"hi"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/letters", strings.NewReader(tt.body)))
			req.Equal(http.StatusBadRequest, rec.Code)

			var resp errorResponse
			req.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
			req.NotEmpty(resp.Error)
		})
	}
}

func TestLetterServer_ComposeForm(t *testing.T) {
	req := require.New(t)
	handler, _ := newTestServer(t)

	form := url.Values{"to": {"영희"}, "from": {"철수"}, "message": {"눈 오는 밤"}}
	httpReq := httptest.NewRequest(http.MethodPost, "/compose", strings.NewReader(form.Encode()))
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httpReq)

	req.Equal(http.StatusOK, rec.Code)
	page := rec.Body.String()
	req.Contains(page, "https://xmas.example.com/letter?d=")
	req.Contains(page, "영희님에게 온 크리스마스 편지 🎄")
}

func TestLetterServer_ComposeForm_Invalid(t *testing.T) {
	req := require.New(t)
	handler, _ := newTestServer(t)

	form := url.Values{"to": {""}, "message": {"keep me"}}
	httpReq := httptest.NewRequest(http.MethodPost, "/compose", strings.NewReader(form.Encode()))
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httpReq)

	req.Equal(http.StatusBadRequest, rec.Code)
	req.Contains(rec.Body.String(), "받는 사람과 메시지를 입력해주세요!")
	// The typed message is kept in the form
	req.Contains(rec.Body.String(), "keep me")
}

func TestLetterServer_LetterPage(t *testing.T) {
	req := require.New(t)
	handler, events := newTestServer(t)

	token, err := codec.Encode(domain.Letter{To: "<script>", From: "badger", Message: "hello\nworld"})
	req.NoError(err)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/letter?d="+token.String(), nil))
	req.Equal(http.StatusOK, rec.Code)
	req.Equal("text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	page := rec.Body.String()
	// User text is escaped, never interpreted
	req.NotContains(page, "<script>님")
	req.Contains(page, "&lt;script&gt;님에게 온 크리스마스 편지 🎄")
	// Censored words never reach the page
	req.Contains(page, "From. ******")
	req.Contains(page, `<meta property="og:url" content="https://xmas.example.com/letter?d=`)

	e := <-events
	req.Equal(event.KindOpenedCompact, e.Kind)
}

func TestLetterServer_LetterPage_Fallbacks(t *testing.T) {
	handler, _ := newTestServer(t)

	tests := []struct {
		name     string
		query    string
		contains []string
	}{
		{"Corrupted token", "d=broken!!&to=X", []string{"To. 친구", "From. 익명", "메리 크리스마스! 🎄"}},
		{"Legacy link", "to=%EC%B2%A0%EC%88%98&message=%EC%95%88%EB%85%95", []string{"To. 철수", "From. 익명", "안녕"}},
		{"No query", "", []string{"To. 친구"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/letter?"+tt.query, nil))
			req.Equal(http.StatusOK, rec.Code)
			for _, s := range tt.contains {
				req.Contains(rec.Body.String(), s)
			}
		})
	}
}

func TestLetterServer_Health(t *testing.T) {
	req := require.New(t)
	handler, _ := newTestServer(t)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/letter?to=A", nil))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	req.Equal(http.StatusOK, rec.Code)

	var stats observability.MonitoringStats
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &stats))
	req.Equal("ok", stats.Status)
	req.Equal(uint64(1), stats.OpenedLegacy)
}

func TestLetterServer_RequestID(t *testing.T) {
	req := require.New(t)
	handler, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	req.Equal(http.StatusOK, rec.Code)
	_, err := uuid.Parse(rec.Header().Get(requestIDHeader))
	req.NoError(err)

	// A valid incoming id is kept
	id := uuid.NewString()
	httpReq := httptest.NewRequest(http.MethodGet, "/static/letter.css", nil)
	httpReq.Header.Set(requestIDHeader, id)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httpReq)
	req.Equal(id, rec.Header().Get(requestIDHeader))
	req.Equal("text/css; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestLetterServer_UnknownRoute(t *testing.T) {
	req := require.New(t)
	handler, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	req.Equal(http.StatusNotFound, rec.Code)
}
