package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vocabduel/internal/engine"
	"vocabduel/internal/hub"
	"vocabduel/internal/models"
	"vocabduel/internal/service"
	"vocabduel/internal/validation"
)

// AudioSource turns the text of a tts hint into a playable file
type AudioSource interface {
	AudioFile(ctx context.Context, text string) (string, error)
}

// DuelHandler handles duel HTTP requests
type DuelHandler struct {
	duels    *service.DuelService
	hub      *hub.Hub
	audio    AudioSource
	validate *validation.Validator
	origins  []string
}

// NewDuelHandler creates a new duel handler
func NewDuelHandler(duels *service.DuelService, h *hub.Hub, audio AudioSource, validate *validation.Validator, origins []string) *DuelHandler {
	return &DuelHandler{
		duels:    duels,
		hub:      h,
		audio:    audio,
		validate: validate,
		origins:  origins,
	}
}

// Create handles POST /api/duels
func (h *DuelHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createChallengeRequest
	if !h.decode(w, r, &req) {
		return
	}

	view, err := h.duels.CreateChallenge(r.Context(), GetPlayerFromContext(r.Context()), req.OpponentID, req.ThemeID, models.Mode(req.Mode), req.Preset)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// List handles GET /api/duels
func (h *DuelHandler) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.duels.ListForPlayer(r.Context(), GetPlayerFromContext(r.Context()))
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// Get handles GET /api/duels/{id}
func (h *DuelHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.duels.Get(r.Context(), chi.URLParam(r, "id"), GetPlayerFromContext(r.Context()))
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HintAudio handles GET /api/duels/{id}/hints/audio
func (h *DuelHandler) HintAudio(w http.ResponseWriter, r *http.Request) {
	text, err := h.duels.HintAudioText(r.Context(), chi.URLParam(r, "id"), GetPlayerFromContext(r.Context()))
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	path, err := h.audio.AudioFile(r.Context(), text)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, KindInternal, "Audio is unavailable", "Failed to generate hint audio", err)
		return
	}
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", "private, no-store")
	http.ServeFile(w, r, path)
}

// command builds a handler that decodes T, maps it onto a command of type typ and executes it
func command[T any](h *DuelHandler, typ engine.CommandType, fill func(req T, cmd *engine.Command)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req T
		if !h.decode(w, r, &req) {
			return
		}

		cmd := engine.Command{Type: typ, PlayerID: GetPlayerFromContext(r.Context())}
		if fill != nil {
			fill(req, &cmd)
		}

		view, err := h.duels.Execute(r.Context(), chi.URLParam(r, "id"), cmd)
		if err != nil {
			respondWithDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func (h *DuelHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := decodeJSON(r, v); err != nil {
		respondWithError(w, http.StatusBadRequest, KindInvalidRequest, ErrInvalidRequest, "", nil)
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		respondWithDomainError(w, err)
		return false
	}
	return true
}

// Routes mounts every duel endpoint on r. limit wraps the state-changing ones.
func (h *DuelHandler) Routes(r chi.Router, limit func(http.Handler) http.Handler) {
	r.Get("/", h.List)
	r.With(limit).Post("/", h.Create)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Get("/ws", h.Subscribe)
		r.Get("/hints/audio", h.HintAudio)

		r.Group(func(r chi.Router) {
			r.Use(limit)

			r.Post("/accept", command[noBody](h, engine.CmdAccept, nil))
			r.Post("/reject", command[noBody](h, engine.CmdReject, nil))
			r.Post("/cancel", command[noBody](h, engine.CmdCancelChallenge, nil))
			r.Post("/stop", command[noBody](h, engine.CmdStop, nil))

			r.Post("/answer", command(h, engine.CmdSubmitAnswer, func(req answerRequest, cmd *engine.Command) {
				cmd.Answer = req.Answer
				cmd.QuestionIndex = *req.QuestionIndex
			}))
			r.Post("/timeout", command(h, engine.CmdTimeout, func(req timeoutRequest, cmd *engine.Command) {
				cmd.QuestionIndex = *req.QuestionIndex
			}))

			r.Route("/hints/letters", func(r chi.Router) {
				r.Post("/request", command(h, engine.CmdRequestHintA, func(req letterStateRequest, cmd *engine.Command) {
					cmd.TypedLetters = req.TypedLetters
					cmd.RevealedPositions = req.RevealedPositions
				}))
				r.Post("/accept", command(h, engine.CmdAcceptHintA, func(req hintTypeRequest, cmd *engine.Command) {
					cmd.HintType = models.HintType(req.HintType)
				}))
				r.Post("/provide", command(h, engine.CmdProvideHintA, func(req provideLetterRequest, cmd *engine.Command) {
					cmd.Position = *req.Position
				}))
				r.Post("/state", command(h, engine.CmdUpdateHintStateA, func(req letterStateRequest, cmd *engine.Command) {
					cmd.TypedLetters = req.TypedLetters
					cmd.RevealedPositions = req.RevealedPositions
				}))
				r.Post("/cancel", command[noBody](h, engine.CmdCancelHintA, nil))
			})

			r.Route("/hints/options", func(r chi.Router) {
				r.Post("/request", command(h, engine.CmdRequestHintB, func(req optionsRequest, cmd *engine.Command) {
					cmd.Options = req.Options
				}))
				r.Post("/accept", command(h, engine.CmdAcceptHintB, func(req hintTypeRequest, cmd *engine.Command) {
					cmd.HintType = models.HintType(req.HintType)
				}))
				r.Post("/eliminate", command(h, engine.CmdEliminateOptionB, func(req eliminateRequest, cmd *engine.Command) {
					cmd.Option = req.Option
				}))
				r.Post("/cancel", command[noBody](h, engine.CmdCancelHintB, nil))
			})

			r.Post("/sabotage", command(h, engine.CmdSendSabotage, func(req sabotageRequest, cmd *engine.Command) {
				cmd.Effect = models.SabotageEffect(req.Effect)
			}))

			r.Post("/countdown/pause", command[noBody](h, engine.CmdPauseCountdown, nil))
			r.Post("/countdown/unpause-request", command[noBody](h, engine.CmdRequestUnpause, nil))
			r.Post("/countdown/unpause-confirm", command[noBody](h, engine.CmdConfirmUnpause, nil))
		})
	})
}
