package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

var fallbackPage = template.Must(template.New("fallback").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Something went wrong</title>
<style>
body{margin:0;min-height:100vh;display:flex;align-items:center;justify-content:center;font-family:system-ui,sans-serif;background:#f8fafc;color:#0f172a}
main{max-width:28rem;padding:2rem;text-align:center}
p{color:#475569}
button{margin-top:1rem;padding:.5rem 1rem;border:0;border-radius:.375rem;background:#0f172a;color:#fff;cursor:pointer}
</style>
</head>
<body>
<main>
<h1>Something went wrong</h1>
<p>{{.}}</p>
<button type="button" onclick="window.location.reload()">Reload page</button>
</main>
</body>
</html>
`))

// FallbackHandler answers every request with a page explaining that the
// app could not start. It is used when configuration fails to load.
func FallbackHandler(reason string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusServiceUnavailable)
		if err := fallbackPage.Execute(w, reason); err != nil {
			log.Error().Err(err).Msg("render fallback page")
		}
	})
}

// ServeFallback serves FallbackHandler on addr until ctx is cancelled.
func ServeFallback(ctx context.Context, addr, reason string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           FallbackHandler(reason),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Warn().Str("addr", addr).Str("reason", reason).Msg("serving fallback page")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ServeFallback: %w", err)
	}
	return nil
}
