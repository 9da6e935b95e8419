package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/j1vetr/EscapeTable/internal/settings"
)

type SettingsHandler struct {
	repo   settings.Repository
	logger *log.Logger
}

func NewSettingsHandler(repo settings.Repository, logger *log.Logger) *SettingsHandler {
	return &SettingsHandler{repo: repo, logger: logger}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.repo.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		if errors.Is(err, settings.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Ayar bulunamadı")
			return
		}
		h.logger.Printf("get setting: %v", err)
		writeError(w, http.StatusInternalServerError, "Ayar yüklenemedi")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

type setSettingRequest struct {
	Value       json.RawMessage `json:"value" validate:"required"`
	Description string          `json:"description"`
}

func (h *SettingsHandler) Set(w http.ResponseWriter, r *http.Request) {
	var in setSettingRequest
	if !decodeValid(w, r, &in) {
		return
	}
	s, err := h.repo.Set(r.Context(), settings.Setting{
		Key:         chi.URLParam(r, "key"),
		Value:       in.Value,
		Description: in.Description,
	})
	if err != nil {
		h.logger.Printf("set setting: %v", err)
		writeError(w, http.StatusInternalServerError, "Ayar kaydedilemedi")
		return
	}
	writeJSON(w, http.StatusOK, s)
}
