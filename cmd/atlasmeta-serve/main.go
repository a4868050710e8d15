// atlasmeta-serve is a small static server for the published site: local
// previews and smoke tests of the JSON data contract
package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	phttp "atlasmeta/internal/platform/net/http"
	"atlasmeta/internal/platform/net/middleware"

	"atlasmeta/internal/platform/config"
	"atlasmeta/internal/platform/logger"
)

func main() {
	cfg := config.New().Prefix("SERVE_")
	l := logger.Get()

	dir := cfg.MayString("DIR", "site")

	srv := phttp.NewServer(cfg, func(m *chi.Mux) {
		m.Use(chimw.RealIP)
		m.Use(chimw.Recoverer)
		m.Use(middleware.AccessLog(middleware.AccessLogOptions{
			Slow: cfg.MayDuration("SLOW", 0),
		}))
		m.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.MayCSV("CORS_ORIGINS", []string{"*"}),
			AllowedMethods: []string{http.MethodGet, http.MethodHead},
			MaxAge:         300,
		}))
		m.Handle("/*", http.FileServer(http.Dir(dir)))
	})

	l.Info().Str("addr", srv.Addr()).Str("dir", dir).Msg("serving site")
	if err := srv.Run(context.Background()); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
