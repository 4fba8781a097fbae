package v1alpha1

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	api "github.com/reelforge/reelforge/api/v1alpha1"
)

func (h *ServiceHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var form api.AccountForm
	if err := render.DecodeJSON(r.Body, &form); err != nil {
		renderBadRequest(w, r, err)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		renderBadRequest(w, r, err)
		return
	}

	account, err := h.accountSrv.CreateAccount(r.Context(), form)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, account)
}

func (h *ServiceHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	var nicheID *uuid.UUID
	if v := r.URL.Query().Get("niche_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			renderBadRequest(w, r, errors.New("niche_id is not a valid uuid"))
			return
		}
		nicheID = &id
	}

	accounts, err := h.accountSrv.ListAccounts(r.Context(), nicheID)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	render.JSON(w, r, accounts)
}

func (h *ServiceHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderBadRequest(w, r, errors.New("id is not a valid uuid"))
		return
	}

	if err := h.accountSrv.DeleteAccount(r.Context(), id); err != nil {
		renderServiceError(w, r, err)
		return
	}
	render.NoContent(w, r)
}
