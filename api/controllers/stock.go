package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/voltpath/labstock-backend/api/middleware"
	"github.com/voltpath/labstock-backend/api/responses"
	"github.com/voltpath/labstock-backend/api/validators"
	"github.com/voltpath/labstock-backend/internal/stock"
	"github.com/voltpath/labstock-backend/pkg/logger"
)

func stockActor(r *http.Request) *stock.Actor {
	return &stock.Actor{
		UserID: middleware.UserIDFromContext(r.Context()),
		Role:   middleware.RoleFromContext(r.Context()),
	}
}

// InwardStock receives stock against the component in the path. The path id
// wins over any component id in the body.
func InwardStock(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		componentID, err := validators.ParsePathUUID(chi.URLParam(r, "componentId"), "componentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input stock.InwardInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.ComponentID = componentID

		result, err := svc.Inward(r.Context(), stockActor(r), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func OutwardStock(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		componentID, err := validators.ParsePathUUID(chi.URLParam(r, "componentId"), "componentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input stock.OutwardInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.ComponentID = componentID

		result, err := svc.Outward(r.Context(), stockActor(r), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
