package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Trizly-xyz/trizlySite/internal/common"
	"github.com/Trizly-xyz/trizlySite/internal/domain"

	"github.com/go-chi/chi/v5"
)

const (
	defaultRefreshLimit = 20
	maxRefreshLimit     = 100
)

// PortfolioReader 是 HTTP 层需要的作品集服务能力
type PortfolioReader interface {
	GetAllPortfolios(ctx context.Context) []*domain.Portfolio
	GetPortfolio(ctx context.Context, slug string) (*domain.Portfolio, bool)
	GetPortfolioContent(ctx context.Context, slug string) (*domain.PortfolioContent, bool)
	RecentRefreshes(ctx context.Context, limit int) ([]*domain.RefreshRecord, error)
	CachedAt() time.Time
	TTL() time.Duration
}

// ErrorResponse 错误响应体
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type listResponse struct {
	Portfolios []*domain.Portfolio `json:"portfolios"`
	CachedAt   time.Time           `json:"cached_at"`
}

type refreshesResponse struct {
	Refreshes []*domain.RefreshRecord `json:"refreshes"`
}

// Handler 把作品集服务暴露为 JSON 接口
type Handler struct {
	portfolios PortfolioReader
}

func NewHandler(portfolios PortfolioReader) *Handler {
	return &Handler{portfolios: portfolios}
}

// HandleList GET /api/portfolios
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	entries := h.portfolios.GetAllPortfolios(r.Context())
	h.setCacheControl(w)
	writeJSON(w, http.StatusOK, listResponse{
		Portfolios: entries,
		CachedAt:   h.portfolios.CachedAt(),
	})
}

// HandleGet GET /api/portfolios/{slug}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	entry, ok := h.portfolios.GetPortfolio(r.Context(), slug)
	if !ok {
		writeError(w, http.StatusNotFound, common.ErrCodeNotFound, fmt.Sprintf("portfolio %q not found", slug))
		return
	}
	h.setCacheControl(w)
	writeJSON(w, http.StatusOK, entry)
}

// HandleContent GET /api/portfolios/{slug}/content
// 静态条目没有仓库内容，同样返回 404
func (h *Handler) HandleContent(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	content, ok := h.portfolios.GetPortfolioContent(r.Context(), slug)
	if !ok {
		writeError(w, http.StatusNotFound, common.ErrCodeNotFound, fmt.Sprintf("no repository content for %q", slug))
		return
	}
	writeJSON(w, http.StatusOK, content)
}

// HandleRefreshes GET /api/refreshes?limit=N
func (h *Handler) HandleRefreshes(w http.ResponseWriter, r *http.Request) {
	limit := defaultRefreshLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxRefreshLimit {
			writeError(w, http.StatusBadRequest, common.ErrCodeInvalidInput,
				fmt.Sprintf("limit must be between 1 and %d", maxRefreshLimit))
			return
		}
		limit = n
	}

	records, err := h.portfolios.RecentRefreshes(r.Context(), limit)
	if err != nil {
		slog.Error("❌ 读取刷新记录失败", "error", err)
		writeError(w, http.StatusInternalServerError, common.CodeOf(err), "failed to load refresh history")
		return
	}
	writeJSON(w, http.StatusOK, refreshesResponse{Refreshes: records})
}

// HandleHealth GET /health
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) setCacheControl(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(h.portfolios.TTL().Seconds())))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("❌ 编码响应失败", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}
