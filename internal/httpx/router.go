package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/angelcm/cowork-dashboard/internal/calendar"
	"github.com/angelcm/cowork-dashboard/internal/content"
	"github.com/angelcm/cowork-dashboard/internal/export"
	"github.com/angelcm/cowork-dashboard/internal/funnel"
	"github.com/angelcm/cowork-dashboard/internal/metrics"
	"github.com/angelcm/cowork-dashboard/internal/models"
	"github.com/angelcm/cowork-dashboard/internal/scheduler"
	"github.com/angelcm/cowork-dashboard/internal/store"
	"github.com/angelcm/cowork-dashboard/internal/utils"
)

type Deps struct {
	Store     store.Backend
	Content   *content.Service
	Calendar  *calendar.Service
	Scheduler *scheduler.Scheduler
	Funnels   *funnel.Service
	Exporter  *export.Exporter
	Metrics   *metrics.Recorder
	Now       func() time.Time
}

func NewRouter(log *slog.Logger, d Deps) http.Handler {
	if d.Now == nil {
		d.Now = time.Now
	}
	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))
	mux.Use(middleware.Recoverer)
	mux.Use(d.Metrics.Middleware)

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := d.Store.Load(r.Context(), store.Projects); err != nil {
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
		w.Write([]byte("ready"))
	})
	if d.Metrics != nil {
		mux.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	ch := &contentHandler{svc: d.Content, log: log}
	mux.Route("/content", func(r chi.Router) {
		r.Get("/", ch.list)
		r.Post("/", ch.create)
		r.Get("/{id}", ch.get)
		r.Patch("/{id}", ch.patch)
		r.Delete("/{id}", ch.delete)
		r.Post("/{id}/transition", ch.transition)
		r.Post("/{id}/force-status", ch.forceStatus)
	})

	cal := &calendarHandler{cal: d.Calendar, sched: d.Scheduler, exp: d.Exporter, log: log}
	mux.Route("/calendar", func(r chi.Router) {
		r.Get("/", cal.events)
		r.Post("/drop", cal.drop)
		r.Post("/auto-distribute", cal.autoDistribute)
		r.Post("/export", cal.export)
	})

	fh := &funnelHandler{svc: d.Funnels, log: log}
	mux.Get("/funnels", fh.get)

	mountRecords(mux, "/projects", store.NewCollection[models.Project](d.Store, store.Projects), d.Now, log)
	mountRecords(mux, "/tasks", store.NewCollection[models.Task](d.Store, store.Tasks), d.Now, log)
	mountRecords(mux, "/ideas", store.NewCollection[models.Idea](d.Store, store.Ideas), d.Now, log)
	mountRecords(mux, "/campaigns", store.NewCollection[models.Campaign](d.Store, store.Campaigns), d.Now, log)
	mountRecords(mux, "/templates", store.NewCollection[models.ContentTemplate](d.Store, store.Templates), d.Now, log)
	mountRecords(mux, "/hashtag-groups", store.NewCollection[models.HashtagGroup](d.Store, store.HashtagGroups), d.Now, log)

	return mux
}
