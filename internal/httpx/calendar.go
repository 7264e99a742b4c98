package httpx

import (
	"log/slog"
	"net/http"

	"github.com/angelcm/cowork-dashboard/internal/apperr"
	"github.com/angelcm/cowork-dashboard/internal/calendar"
	"github.com/angelcm/cowork-dashboard/internal/export"
	"github.com/angelcm/cowork-dashboard/internal/funnel"
	"github.com/angelcm/cowork-dashboard/internal/scheduler"
)

type calendarHandler struct {
	cal   *calendar.Service
	sched *scheduler.Scheduler
	exp   *export.Exporter
	log   *slog.Logger
}

func (h *calendarHandler) events(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("start") == "" || q.Get("end") == "" {
		writeError(w, h.log, apperr.InvalidArgument("start and end are required"))
		return
	}
	start, err := parseInstant(q.Get("start"), h.cal.Location(), false)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	end, err := parseInstant(q.Get("end"), h.cal.Location(), true)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	res, err := h.cal.GetEvents(r.Context(), csvList(q.Get("projects")), start, end)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, res)
}

type dropRequest struct {
	ContentID string `json:"contentId"`
	Date      string `json:"date"`
}

func (h *calendarHandler) drop(w http.ResponseWriter, r *http.Request) {
	var req dropRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	day, err := parseDate(req.Date, h.cal.Location())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	item, err := h.cal.RescheduleViaDrop(r.Context(), req.ContentID, day)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, item)
}

func (h *calendarHandler) autoDistribute(w http.ResponseWriter, r *http.Request) {
	var req scheduler.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	got, err := h.sched.AutoDistribute(r.Context(), req)
	if err != nil {
		code, body := errorResponse(h.log, err)
		body.Assignments = got
		writeJSONStatus(w, code, body)
		return
	}
	writeJSON(w, map[string]any{"assignments": got})
}

func (h *calendarHandler) export(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("date")
	if q == "" {
		writeError(w, h.log, apperr.InvalidArgument("date required (YYYY-MM-DD)"))
		return
	}
	day, err := parseDate(q, h.cal.Location())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	n, err := h.exp.ExportDay(r.Context(), day)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			h.log.Error("export failed", slog.String("err", err.Error()))
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, map[string]any{"exported": n})
}

type funnelHandler struct {
	svc *funnel.Service
	log *slog.Logger
}

func (h *funnelHandler) get(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ForProject(r.Context(), r.URL.Query().Get("projectId"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, res)
}
