package handlers

import (
	"errors"
	"net/http"

	middlewarex "aspataal/internal/http/middleware"
	"aspataal/internal/services/data"

	"github.com/go-chi/chi/v5"
)

var errNoEntity = errors.New("entity missing from request context")

// ListRecords serves a page of the entity listing named by the {listing}
// path parameter, the index listing when absent.
func ListRecords(dataService *data.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := middlewarex.Entity(r.Context())
		if !ok {
			writeError(w, r, errNoEntity)
			return
		}

		p := data.ParamsFromQuery(r.URL.Query(), chi.URLParam(r, "fieldname"), chi.URLParam(r, "fieldvalue"))
		page, err := dataService.List(r.Context(), d, chi.URLParam(r, "listing"), p)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}
