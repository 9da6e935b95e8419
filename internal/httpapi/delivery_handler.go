package httpapi

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/j1vetr/EscapeTable/internal/delivery"
)

type DeliveryHandler struct {
	repo   delivery.Repository
	logger *log.Logger
}

func NewDeliveryHandler(repo delivery.Repository, logger *log.Logger) *DeliveryHandler {
	return &DeliveryHandler{repo: repo, logger: logger}
}

func (h *DeliveryHandler) ListRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := h.repo.ListRegions(r.Context())
	if err != nil {
		h.logger.Printf("list regions: %v", err)
		writeError(w, http.StatusInternalServerError, "Bölgeler yüklenemedi")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(regions))
}

func (h *DeliveryHandler) CreateRegion(w http.ResponseWriter, r *http.Request) {
	var in delivery.RegionInput
	if !decodeValid(w, r, &in) {
		return
	}
	region, err := h.repo.CreateRegion(r.Context(), in)
	if err != nil {
		h.logger.Printf("create region: %v", err)
		writeError(w, http.StatusInternalServerError, "Bölge oluşturulamadı")
		return
	}
	writeJSON(w, http.StatusCreated, region)
}

func (h *DeliveryHandler) UpdateRegion(w http.ResponseWriter, r *http.Request) {
	var p delivery.RegionPatch
	if !decodeValid(w, r, &p) {
		return
	}
	region, err := h.repo.UpdateRegion(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		if errors.Is(err, delivery.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Bölge bulunamadı")
			return
		}
		h.logger.Printf("update region: %v", err)
		writeError(w, http.StatusInternalServerError, "Bölge güncellenemedi")
		return
	}
	writeJSON(w, http.StatusOK, region)
}

func (h *DeliveryHandler) DeleteRegion(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteRegion(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, delivery.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Bölge bulunamadı")
			return
		}
		h.logger.Printf("delete region: %v", err)
		writeError(w, http.StatusInternalServerError, "Bölge silinemedi")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Bölge silindi"})
}

func (h *DeliveryHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locs, err := h.repo.ListLocations(r.Context(), r.URL.Query().Get("regionId"))
	if err != nil {
		h.logger.Printf("list locations: %v", err)
		writeError(w, http.StatusInternalServerError, "Teslimat noktaları yüklenemedi")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(locs))
}

func (h *DeliveryHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var in delivery.CampingLocationInput
	if !decodeValid(w, r, &in) {
		return
	}
	loc, err := h.repo.CreateLocation(r.Context(), in)
	if err != nil {
		h.logger.Printf("create location: %v", err)
		writeError(w, http.StatusInternalServerError, "Teslimat noktası oluşturulamadı")
		return
	}
	writeJSON(w, http.StatusCreated, loc)
}

func (h *DeliveryHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var p delivery.CampingLocationPatch
	if !decodeValid(w, r, &p) {
		return
	}
	loc, err := h.repo.UpdateLocation(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		if errors.Is(err, delivery.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Teslimat noktası bulunamadı")
			return
		}
		h.logger.Printf("update location: %v", err)
		writeError(w, http.StatusInternalServerError, "Teslimat noktası güncellenemedi")
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

func (h *DeliveryHandler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteLocation(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, delivery.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Teslimat noktası bulunamadı")
			return
		}
		h.logger.Printf("delete location: %v", err)
		writeError(w, http.StatusInternalServerError, "Teslimat noktası silinemedi")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Teslimat noktası silindi"})
}

func (h *DeliveryHandler) ListSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := h.repo.ListSlots(r.Context(), r.URL.Query().Get("regionId"))
	if err != nil {
		h.logger.Printf("list slots: %v", err)
		writeError(w, http.StatusInternalServerError, "Teslimat saatleri yüklenemedi")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(slots))
}

func (h *DeliveryHandler) CreateSlot(w http.ResponseWriter, r *http.Request) {
	var in delivery.SlotInput
	if !decodeValid(w, r, &in) {
		return
	}
	slot, err := h.repo.CreateSlot(r.Context(), in)
	if err != nil {
		h.logger.Printf("create slot: %v", err)
		writeError(w, http.StatusInternalServerError, "Teslimat saati oluşturulamadı")
		return
	}
	writeJSON(w, http.StatusCreated, slot)
}

func (h *DeliveryHandler) UpdateSlot(w http.ResponseWriter, r *http.Request) {
	var p delivery.SlotPatch
	if !decodeValid(w, r, &p) {
		return
	}
	slot, err := h.repo.UpdateSlot(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		if errors.Is(err, delivery.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Teslimat saati bulunamadı")
			return
		}
		h.logger.Printf("update slot: %v", err)
		writeError(w, http.StatusInternalServerError, "Teslimat saati güncellenemedi")
		return
	}
	writeJSON(w, http.StatusOK, slot)
}

func (h *DeliveryHandler) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteSlot(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, delivery.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Teslimat saati bulunamadı")
			return
		}
		h.logger.Printf("delete slot: %v", err)
		writeError(w, http.StatusInternalServerError, "Teslimat saati silinemedi")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Teslimat saati silindi"})
}
