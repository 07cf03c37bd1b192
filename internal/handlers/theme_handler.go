package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"vocabduel/internal/models"
	"vocabduel/internal/service"
	"vocabduel/internal/validation"
)

// ThemeHandler handles theme HTTP requests
type ThemeHandler struct {
	themes   *service.ThemeService
	validate *validation.Validator
}

// NewThemeHandler creates a new theme handler
func NewThemeHandler(themes *service.ThemeService, validate *validation.Validator) *ThemeHandler {
	return &ThemeHandler{themes: themes, validate: validate}
}

type themeSummaryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	WordCount int    `json:"word_count"`
	CreatedAt int64  `json:"created_at"`
}

// Create handles POST /api/themes
func (h *ThemeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createThemeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, KindInvalidRequest, ErrInvalidRequest, "", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithDomainError(w, err)
		return
	}

	theme, err := h.themes.Create(r.Context(), req.Name, req.entries())
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, summarize(models.ThemeSummary{
		ID: theme.ID, Name: theme.Name, WordCount: len(theme.Words), CreatedAt: theme.CreatedAt,
	}))
}

// List handles GET /api/themes
func (h *ThemeHandler) List(w http.ResponseWriter, r *http.Request) {
	themes, err := h.themes.List(r.Context())
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	out := make([]themeSummaryResponse, len(themes))
	for i, t := range themes {
		out[i] = summarize(t)
	}
	writeJSON(w, http.StatusOK, out)
}

func summarize(t models.ThemeSummary) themeSummaryResponse {
	return themeSummaryResponse{ID: t.ID, Name: t.Name, WordCount: t.WordCount, CreatedAt: t.CreatedAt.UnixMilli()}
}

// Routes mounts the theme endpoints on r
func (h *ThemeHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
}
