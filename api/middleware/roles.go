package middleware

import (
	"net/http"

	"github.com/voltpath/labstock-backend/api/responses"
	"github.com/voltpath/labstock-backend/pkg/enums"
	pkgerrors "github.com/voltpath/labstock-backend/pkg/errors"
	"github.com/voltpath/labstock-backend/pkg/logger"
)

// RequirePermission gates a route on a role predicate such as
// enums.Role.CanInward.
func RequirePermission(check func(enums.Role) bool, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !check(RoleFromContext(r.Context())) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin gates a route on the Admin role.
func RequireAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return RequirePermission(enums.Role.IsPrivileged, logg)
}
