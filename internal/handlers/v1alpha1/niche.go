package v1alpha1

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	api "github.com/reelforge/reelforge/api/v1alpha1"
)

func (h *ServiceHandler) CreateNiche(w http.ResponseWriter, r *http.Request) {
	var form api.NicheForm
	if err := render.DecodeJSON(r.Body, &form); err != nil {
		renderBadRequest(w, r, err)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		renderBadRequest(w, r, err)
		return
	}

	niche, err := h.nicheSrv.CreateNiche(r.Context(), form)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, niche)
}

func (h *ServiceHandler) ListNiches(w http.ResponseWriter, r *http.Request) {
	niches, err := h.nicheSrv.ListNiches(r.Context())
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	render.JSON(w, r, niches)
}

func (h *ServiceHandler) GetNiche(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderBadRequest(w, r, errors.New("id is not a valid uuid"))
		return
	}

	niche, err := h.nicheSrv.GetNiche(r.Context(), id)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	render.JSON(w, r, niche)
}

func (h *ServiceHandler) UpdateNiche(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderBadRequest(w, r, errors.New("id is not a valid uuid"))
		return
	}

	var form api.NicheForm
	if err := render.DecodeJSON(r.Body, &form); err != nil {
		renderBadRequest(w, r, err)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		renderBadRequest(w, r, err)
		return
	}

	niche, err := h.nicheSrv.UpdateNiche(r.Context(), id, form)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	render.JSON(w, r, niche)
}

func (h *ServiceHandler) DeleteNiche(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderBadRequest(w, r, errors.New("id is not a valid uuid"))
		return
	}

	if err := h.nicheSrv.DeleteNiche(r.Context(), id); err != nil {
		renderServiceError(w, r, err)
		return
	}
	render.NoContent(w, r)
}
