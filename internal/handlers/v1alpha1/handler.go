// Package v1alpha1 exposes the control surface over HTTP. Handlers decode and
// validate requests, delegate to the service layer and translate its typed
// errors to status codes; they contain no pipeline logic of their own.
package v1alpha1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	api "github.com/reelforge/reelforge/api/v1alpha1"
	"github.com/reelforge/reelforge/internal/handlers/validator"
	"github.com/reelforge/reelforge/internal/service"
)

type ServiceHandler struct {
	jobSrv     *service.JobService
	nicheSrv   *service.NicheService
	accountSrv *service.AccountService
	voiceSrv   *service.VoiceService
	healthSrv  *service.HealthService
	validator  *validator.Validator
}

func NewServiceHandler(
	jobSrv *service.JobService,
	nicheSrv *service.NicheService,
	accountSrv *service.AccountService,
	voiceSrv *service.VoiceService,
	healthSrv *service.HealthService,
) *ServiceHandler {
	v := validator.NewValidator()
	v.Register(validator.NewJobValidationRules()...)
	v.Register(validator.NewNicheValidationRules()...)
	v.Register(validator.NewAccountValidationRules()...)

	return &ServiceHandler{
		jobSrv:     jobSrv,
		nicheSrv:   nicheSrv,
		accountSrv: accountSrv,
		voiceSrv:   voiceSrv,
		healthSrv:  healthSrv,
		validator:  v,
	}
}

func (h *ServiceHandler) Routes(router chi.Router) {
	router.Route("/api/v1alpha1", func(r chi.Router) {
		r.Route("/jobs", func(r chi.Router) {
			r.Post("/", h.CreateJob)
			r.Get("/", h.ListJobs)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetJob)
				r.Delete("/", h.DeleteJob)
				r.Get("/logs", h.GetJobLogs)
				r.Post("/run", h.RunJobNow)
				r.Post("/retry", h.RetryJob)
				r.Post("/cancel", h.CancelJob)
				r.Post("/approve", h.ApproveJob)
				r.Post("/reject", h.RejectJob)
			})
		})

		r.Route("/niches", func(r chi.Router) {
			r.Post("/", h.CreateNiche)
			r.Get("/", h.ListNiches)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetNiche)
				r.Put("/", h.UpdateNiche)
				r.Delete("/", h.DeleteNiche)
			})
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", h.CreateAccount)
			r.Get("/", h.ListAccounts)
			r.Delete("/{id}", h.DeleteAccount)
		})

		r.Route("/voices", func(r chi.Router) {
			r.Post("/", h.CreateVoice)
			r.Get("/", h.ListVoices)
			r.Delete("/{id}", h.DeleteVoice)
		})

		r.Get("/health", h.GetHealth)
	})
}

// renderServiceError maps the service error taxonomy to status codes: missing
// resources are 404, gate violations and lost action races are 409, semantic
// validation failures are 400, everything else is 500.
func renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case service.IsNotFound(err):
		status = http.StatusNotFound
	case service.IsGateViolation(err), service.IsActionConflict(err):
		status = http.StatusConflict
	case service.IsInvalidRequest(err):
		status = http.StatusBadRequest
	}
	render.Status(r, status)
	render.JSON(w, r, api.Error{Message: err.Error()})
}

func renderBadRequest(w http.ResponseWriter, r *http.Request, err error) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, api.Error{Message: err.Error()})
}
