package controllers

import (
	"net/http"
	"strings"

	"github.com/voltpath/labstock-backend/api/responses"
	"github.com/voltpath/labstock-backend/api/validators"
	"github.com/voltpath/labstock-backend/internal/scan"
	"github.com/voltpath/labstock-backend/pkg/logger"
)

type scanRequest struct {
	Code string `json:"code" validate:"required,max=120"`
}

// ScanLookup resolves a scanned barcode or typed part number into an
// existing component or a prefilled draft. GET takes ?code=, POST a JSON
// body, so both handheld scanners and the web form can use it.
func ScanLookup(svc scan.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := strings.TrimSpace(r.URL.Query().Get("code"))
		if r.Method == http.MethodPost {
			var req scanRequest
			if err := validators.DecodeJSONBody(r, &req); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			code = req.Code
		}

		result, err := svc.Lookup(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
