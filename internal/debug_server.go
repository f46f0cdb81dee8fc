package internal

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"letter-lab/domain/event"
	"letter-lab/repositories"
	"log/slog"
	"net/http"
	"time"
)

//go:embed stats.html
var templatesFS embed.FS

type PageData struct {
	Items  []repositories.DailyCount
	Totals map[event.Kind]uint64
	Error  string
}

// DebugHandler renders the stored counters as an HTML table.
func DebugHandler(repository repositories.IStatsRepository, log *slog.Logger) http.Handler {
	tmpl := template.Must(template.ParseFS(templatesFS, "stats.html"))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var data PageData
		items, err := repository.GetStats()
		if err != nil {
			log.Error("Failed to read stats", "error", err)
			data.Error = err.Error()
		}
		data.Items = items
		data.Totals = repositories.Totals(items)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})
}

// StartDebugServer serves the stats page on localhost until ctx is canceled.
func StartDebugServer(ctx context.Context, repository repositories.IStatsRepository, port int, endpoint string, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle(endpoint, DebugHandler(repository, log))
	server := &http.Server{
		Addr:              fmt.Sprintf("localhost:%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Debug server stopped", "error", err)
		}
	}()
}
