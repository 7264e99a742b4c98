package httpx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelcm/cowork-dashboard/internal/content"
	"github.com/angelcm/cowork-dashboard/internal/models"
	"github.com/angelcm/cowork-dashboard/internal/workflow"
)

type contentHandler struct {
	svc *content.Service
	log *slog.Logger
}

func (h *contentHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := content.Filter{ProjectID: q.Get("projectId")}
	for _, s := range csvList(q.Get("status")) {
		f.Statuses = append(f.Statuses, models.ContentStatus(norm(s)))
	}
	for _, p := range csvList(q.Get("platform")) {
		f.Platforms = append(f.Platforms, norm(p))
	}
	items, err := h.svc.List(r.Context(), f)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	limit, offset := clampLimitOffset(atoiDef(q.Get("limit"), 0), atoiDef(q.Get("offset"), 0), len(items))
	writeJSON(w, paginate(items, limit, offset))
}

func (h *contentHandler) create(w http.ResponseWriter, r *http.Request) {
	var in content.NewContent
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.log, err)
		return
	}
	item, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, item)
}

// itemView is a content item plus the statuses it may move to next.
type itemView struct {
	models.ContentItem
	AllowedTransitions []models.ContentStatus `json:"allowedTransitions"`
}

func (h *contentHandler) get(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, itemView{ContentItem: item, AllowedTransitions: workflow.Targets(item.Status)})
}

func (h *contentHandler) patch(w http.ResponseWriter, r *http.Request) {
	var p content.Patch
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, h.log, err)
		return
	}
	item, err := h.svc.Patch(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, item)
}

func (h *contentHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type transitionRequest struct {
	Status   models.ContentStatus `json:"status"`
	Feedback string               `json:"feedback"`
}

func (h *contentHandler) transition(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	item, err := h.svc.Transition(r.Context(), chi.URLParam(r, "id"), req.Status, req.Feedback)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, item)
}

type forceRequest struct {
	Status models.ContentStatus `json:"status"`
	Reason string               `json:"reason"`
	Actor  string               `json:"actor"`
}

func (h *contentHandler) forceStatus(w http.ResponseWriter, r *http.Request) {
	var req forceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	item, err := h.svc.ForceStatus(r.Context(), chi.URLParam(r, "id"), req.Status, req.Reason, req.Actor)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, item)
}
