package middlewarex

import (
	"encoding/json"
	"net/http"

	"aspataal/internal/domain/entity"

	"github.com/go-chi/chi/v5"
)

// EntityCtx resolves the {entity} path parameter against the registry and
// stores the descriptor in the request context.
func EntityCtx(reg *entity.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d, err := reg.Get(chi.URLParam(r, "entity"))
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusNotFound)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithEntity(r.Context(), d)))
		})
	}
}
