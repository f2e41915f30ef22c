package handlers

import (
	"net/http"

	"aspataal/internal/services/components"

	"github.com/go-chi/chi/v5"
)

func OptionList(svc *components.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := svc.Options(r.Context(), chi.URLParam(r, "name"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, opts)
	}
}

// ValueExists answers true or false for a unique field probe.
func ValueExists(svc *components.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, err := svc.Exists(r.Context(), chi.URLParam(r, "entity"), chi.URLParam(r, "field"), chi.URLParam(r, "value"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ok)
	}
}

func Dashboard(svc *components.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := svc.Dashboard(r.Context(), chi.URLParam(r, "name"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(b)
	}
}
