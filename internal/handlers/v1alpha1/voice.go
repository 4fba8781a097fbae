package v1alpha1

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	api "github.com/reelforge/reelforge/api/v1alpha1"
)

func (h *ServiceHandler) CreateVoice(w http.ResponseWriter, r *http.Request) {
	var form api.VoiceProfileForm
	if err := render.DecodeJSON(r.Body, &form); err != nil {
		renderBadRequest(w, r, err)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		renderBadRequest(w, r, err)
		return
	}

	voice, err := h.voiceSrv.CreateVoice(r.Context(), form)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, voice)
}

func (h *ServiceHandler) ListVoices(w http.ResponseWriter, r *http.Request) {
	voices, err := h.voiceSrv.ListVoices(r.Context())
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	render.JSON(w, r, voices)
}

func (h *ServiceHandler) DeleteVoice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderBadRequest(w, r, errors.New("id is not a valid uuid"))
		return
	}

	if err := h.voiceSrv.DeleteVoice(r.Context(), id); err != nil {
		renderServiceError(w, r, err)
		return
	}
	render.NoContent(w, r)
}
