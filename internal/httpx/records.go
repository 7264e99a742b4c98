package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelcm/cowork-dashboard/internal/models"
	"github.com/angelcm/cowork-dashboard/internal/store"
)

// stampable is a stored record that tracks created/updated times.
type stampable[T any] interface {
	*T
	store.Record
	Metadata() *models.Meta
}

// mountRecords exposes plain CRUD for a record type with no workflow of
// its own (projects, ideas, campaigns, ...).
func mountRecords[T any, P stampable[T]](mux chi.Router, path string, col *store.Collection[T, P], now func() time.Time, log *slog.Logger) {
	mux.Route(path, func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			recs, err := col.List(r.Context())
			if err != nil {
				writeError(w, log, err)
				return
			}
			q := r.URL.Query()
			limit, offset := clampLimitOffset(atoiDef(q.Get("limit"), 0), atoiDef(q.Get("offset"), 0), len(recs))
			writeJSON(w, paginate(recs, limit, offset))
		})
		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			var rec T
			if err := decodeJSON(r, &rec); err != nil {
				writeError(w, log, err)
				return
			}
			P(&rec).Metadata().Stamp(now())
			saved, err := col.Insert(r.Context(), rec)
			if err != nil {
				writeError(w, log, err)
				return
			}
			writeJSONStatus(w, http.StatusCreated, saved)
		})
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			rec, err := col.Get(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				writeError(w, log, err)
				return
			}
			writeJSON(w, rec)
		})
		r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")
			cur, err := col.Get(r.Context(), id)
			if err != nil {
				writeError(w, log, err)
				return
			}
			var rec T
			if err := decodeJSON(r, &rec); err != nil {
				writeError(w, log, err)
				return
			}
			m, prev := P(&rec).Metadata(), P(&cur).Metadata()
			m.ID = id
			m.CreatedAt = prev.CreatedAt
			if m.Version == 0 {
				m.Version = prev.Version
			}
			m.Stamp(now())
			saved, err := col.Update(r.Context(), rec)
			if err != nil {
				writeError(w, log, err)
				return
			}
			writeJSON(w, saved)
		})
		r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
			if err := col.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
				writeError(w, log, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})
}
