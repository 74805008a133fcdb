package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// requestTimeout 覆盖一次冷刷新 (列表 + 并发转换)
const requestTimeout = 60 * time.Second

// NewRouter 注册全部路由
func NewRouter(portfolios PortfolioReader) http.Handler {
	h := NewHandler(portfolios)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", h.HandleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/portfolios", h.HandleList)
		r.Get("/portfolios/{slug}", h.HandleGet)
		r.Get("/portfolios/{slug}/content", h.HandleContent)
		r.Get("/refreshes", h.HandleRefreshes)
	})

	return r
}
