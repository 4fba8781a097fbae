package v1alpha1

import (
	"net/http"

	"github.com/go-chi/render"
)

func (h *ServiceHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	health, err := h.healthSrv.Health(r.Context())
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	render.JSON(w, r, health)
}
