package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voltpath/labstock-backend/api/middleware"
	"github.com/voltpath/labstock-backend/api/responses"
	"github.com/voltpath/labstock-backend/api/validators"
	"github.com/voltpath/labstock-backend/internal/assistant"
	"github.com/voltpath/labstock-backend/pkg/db/models"
	pkgerrors "github.com/voltpath/labstock-backend/pkg/errors"
	"github.com/voltpath/labstock-backend/pkg/logger"
)

// ActorLoader resolves the authenticated user record for handlers that need
// more than the token claims.
type ActorLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AssistantChat answers inventory questions scoped to the caller's own
// components and movements.
func AssistantChat(svc assistant.Service, loader ActorLoader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req assistant.ChatRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}
		actor, err := loader.FindByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "account no longer exists"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user"))
			return
		}

		reply, err := svc.Chat(r.Context(), actor, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reply)
	}
}
