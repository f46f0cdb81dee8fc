package server

import (
	"embed"
	"encoding/json"
	errs "errors"
	"html/template"
	"letter-lab/domain"
	"letter-lab/errors"
	"letter-lab/observability"
	"letter-lab/services"
	"log/slog"
	"net/http"
	"strings"
)

//go:embed templates
var templatesFS embed.FS

const maxBodyBytes = 64 << 10

type LetterServer struct {
	log        *slog.Logger
	service    services.ILetterService
	monitoring *observability.MonitoringManager
	baseURL    string
	limits     services.Limits
	templates  *template.Template
}

func NewLetterServer(
	log *slog.Logger,
	service services.ILetterService,
	monitoring *observability.MonitoringManager,
	baseURL string,
	limits services.Limits,
) *LetterServer {
	return &LetterServer{
		log:        log,
		service:    service,
		monitoring: monitoring,
		baseURL:    strings.TrimRight(baseURL, "/"),
		limits:     limits,
		templates:  template.Must(template.ParseFS(templatesFS, "templates/*.html")),
	}
}

// Handler wires every route behind the request logging middleware.
func (s *LetterServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleComposePage)
	mux.HandleFunc("POST /compose", s.handleComposeForm)
	mux.HandleFunc("POST /api/letters", s.handleComposeAPI)
	mux.HandleFunc("GET /letter", s.handleLetterPage)
	mux.HandleFunc("GET /api/letter", s.handleLetterAPI)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /static/letter.css", s.handleStylesheet)
	return RequestLogger(s.log, mux)
}

type composePage struct {
	BaseURL    string
	Limits     services.Limits
	Form       services.ComposeRequest
	Error      string
	Composed   *services.Composed
	ShareTitle string
	ShareText  string
}

type letterPage struct {
	View services.LetterView
	URL  string
}

type composeResponse struct {
	URL    string        `json:"url"`
	Token  string        `json:"token"`
	Letter domain.Letter `json:"letter"`
}

type letterResponse struct {
	domain.Letter
	Format domain.Format `json:"format"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *LetterServer) handleComposePage(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, "compose.html", s.newComposePage())
}

func (s *LetterServer) handleComposeForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	page := s.newComposePage()
	page.Form = services.ComposeRequest{
		To:      r.PostForm.Get("to"),
		From:    r.PostForm.Get("from"),
		Message: r.PostForm.Get("message"),
	}

	composed, err := s.service.Compose(r.Context(), page.Form)
	switch {
	case errs.Is(err, errors.ErrInvalidLetter):
		page.Error = "받는 사람과 메시지를 입력해주세요! 🎄"
		s.render(w, http.StatusBadRequest, "compose.html", page)
		return
	case err != nil:
		s.log.Error("Compose failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	page.Composed = &composed
	page.ShareTitle = services.Title(composed.Letter)
	page.ShareText = services.Description(composed.Letter)
	s.render(w, http.StatusOK, "compose.html", page)
}

func (s *LetterServer) handleComposeAPI(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req services.ComposeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	composed, err := s.service.Compose(r.Context(), req)
	switch {
	case errs.Is(err, errors.ErrInvalidLetter):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	case err != nil:
		s.log.Error("Compose failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusCreated, composeResponse{
		URL:    composed.URL,
		Token:  composed.Token.String(),
		Letter: composed.Letter,
	})
}

func (s *LetterServer) handleLetterPage(w http.ResponseWriter, r *http.Request) {
	view := s.service.Open(r.Context(), r.URL.Query())
	s.render(w, http.StatusOK, "letter.html", letterPage{
		View: view,
		URL:  s.baseURL + r.URL.RequestURI(),
	})
}

func (s *LetterServer) handleLetterAPI(w http.ResponseWriter, r *http.Request) {
	view := s.service.Open(r.Context(), r.URL.Query())
	writeJSON(w, http.StatusOK, letterResponse{Letter: view.Letter, Format: view.Format})
}

func (s *LetterServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.monitoring.GetLatest())
}

func (s *LetterServer) handleStylesheet(w http.ResponseWriter, _ *http.Request) {
	css, err := templatesFS.ReadFile("templates/letter.css")
	if err != nil {
		http.NotFound(w, nil)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(css)
}

func (s *LetterServer) newComposePage() composePage {
	return composePage{BaseURL: s.baseURL, Limits: s.limits}
}

func (s *LetterServer) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error("Template rendering failed", "template", name, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
