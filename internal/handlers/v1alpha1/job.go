package v1alpha1

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	api "github.com/reelforge/reelforge/api/v1alpha1"
	"github.com/reelforge/reelforge/internal/service"
)

func (h *ServiceHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var form api.JobCreate
	if err := render.DecodeJSON(r.Body, &form); err != nil {
		renderBadRequest(w, r, err)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		renderBadRequest(w, r, err)
		return
	}

	jobs, err := h.jobSrv.CreateJob(r.Context(), form)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, jobs)
}

func (h *ServiceHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	var filter service.JobFilter

	if v := r.URL.Query().Get("niche_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			renderBadRequest(w, r, errors.New("niche_id is not a valid uuid"))
			return
		}
		filter.NicheID = &id
	}
	if v := r.URL.Query().Get("batch_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			renderBadRequest(w, r, errors.New("batch_id is not a valid uuid"))
			return
		}
		filter.BatchID = &id
	}
	if v := r.URL.Query().Get("stage"); v != "" {
		filter.Stages = []string{v}
	}

	jobs, err := h.jobSrv.ListJobs(r.Context(), filter)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	render.JSON(w, r, jobs)
}

func (h *ServiceHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderBadRequest(w, r, errors.New("id is not a valid uuid"))
		return
	}

	job, err := h.jobSrv.GetJob(r.Context(), id)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	render.JSON(w, r, job)
}

func (h *ServiceHandler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderBadRequest(w, r, errors.New("id is not a valid uuid"))
		return
	}

	if err := h.jobSrv.DeleteJob(r.Context(), id); err != nil {
		renderServiceError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

func (h *ServiceHandler) GetJobLogs(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderBadRequest(w, r, errors.New("id is not a valid uuid"))
		return
	}

	logs, err := h.jobSrv.JobLogs(r.Context(), id)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	render.JSON(w, r, logs)
}

func (h *ServiceHandler) RunJobNow(w http.ResponseWriter, r *http.Request) {
	h.jobAction(w, r, h.jobSrv.RunNow)
}

func (h *ServiceHandler) RetryJob(w http.ResponseWriter, r *http.Request) {
	h.jobAction(w, r, h.jobSrv.Retry)
}

func (h *ServiceHandler) CancelJob(w http.ResponseWriter, r *http.Request) {
	h.jobAction(w, r, h.jobSrv.Cancel)
}

func (h *ServiceHandler) ApproveJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderBadRequest(w, r, errors.New("id is not a valid uuid"))
		return
	}

	var decision api.JobApprove
	if err := render.DecodeJSON(r.Body, &decision); err != nil {
		renderBadRequest(w, r, err)
		return
	}
	if err := h.validator.Struct(decision); err != nil {
		renderBadRequest(w, r, err)
		return
	}

	job, err := h.jobSrv.Approve(r.Context(), id, decision)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	render.JSON(w, r, job)
}

func (h *ServiceHandler) RejectJob(w http.ResponseWriter, r *http.Request) {
	h.jobAction(w, r, h.jobSrv.Reject)
}

func (h *ServiceHandler) jobAction(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, id uuid.UUID) (*api.Job, error)) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderBadRequest(w, r, errors.New("id is not a valid uuid"))
		return
	}

	job, err := action(r.Context(), id)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	render.JSON(w, r, job)
}
