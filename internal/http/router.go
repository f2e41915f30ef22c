package httpx

import (
	"encoding/json"
	"net/http"

	"aspataal/internal/config"
	"aspataal/internal/domain/entity"
	"aspataal/internal/http/handlers"
	middlewarex "aspataal/internal/http/middleware"
	"aspataal/internal/services/components"
	"aspataal/internal/services/data"
	"aspataal/internal/services/records"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RouterDependencies holds all dependencies for the HTTP router
type RouterDependencies struct {
	Config           config.Cfg
	Registry         *entity.Registry
	DataService      *data.Service
	RecordService    *records.Service
	ComponentService *components.Service
}

// NewRouter creates the HTTP router
func NewRouter(deps RouterDependencies) http.Handler {
	metrics := middlewarex.NewMetrics()
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middlewarex.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.StripSlashes)
	r.Use(metrics.Instrument)
	r.Use(middlewarex.CORS(deps.Config.CORS.AllowOrigin, deps.Config.CORS.AllowCredentials))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":   "ok",
			"app":      deps.Config.App.Name,
			"entities": deps.Registry.Names(),
		})
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		// Form widget and home page data
		r.Route("/components_data", func(r chi.Router) {
			r.Get("/options/{name}", handlers.OptionList(deps.ComponentService))
			r.Get("/exists/{entity}/{field}/{value}", handlers.ValueExists(deps.ComponentService))
			r.Get("/dashboard/{name}", handlers.Dashboard(deps.ComponentService))
		})

		r.Route("/{entity}", func(r chi.Router) {
			r.Use(middlewarex.EntityCtx(deps.Registry))

			list := handlers.ListRecords(deps.DataService)
			r.Get("/", list)
			r.Get("/index", list)
			r.Get("/index/{fieldname}", list)
			r.Get("/index/{fieldname}/{fieldvalue}", list)

			r.Get("/view/{recid}", handlers.ViewRecord(deps.RecordService))
			r.Post("/add", handlers.AddRecord(deps.RecordService))
			r.Get("/edit/{recid}", handlers.EditForm(deps.RecordService))
			r.Post("/edit/{recid}", handlers.UpdateRecord(deps.RecordService))
			r.Get("/delete/{recid}", handlers.DeleteRecord(deps.RecordService))
			r.Delete("/delete/{recid}", handlers.DeleteRecord(deps.RecordService))

			// Named listings, e.g. /api/patient/revenue
			r.Get("/{listing}", list)
			r.Get("/{listing}/{fieldname}", list)
			r.Get("/{listing}/{fieldname}/{fieldvalue}", list)
		})
	})

	return r
}
