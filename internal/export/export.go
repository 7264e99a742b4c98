// Package export pushes a day's publishing calendar to a webhook sink.
package export

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/angelcm/cowork-dashboard/internal/apperr"
	"github.com/angelcm/cowork-dashboard/internal/calendar"
	"github.com/angelcm/cowork-dashboard/internal/models"
	"github.com/angelcm/cowork-dashboard/internal/utils"
)

const SignatureHeader = "X-Signature"

type Config struct {
	SinkURL    string
	SinkSecret string
}

type Exporter struct {
	c       HTTPClient
	cal     *calendar.Service
	log     *slog.Logger
	cfg     Config
	backoff utils.Backoff
}

func NewExporter(c HTTPClient, cal *calendar.Service, log *slog.Logger, cfg Config) *Exporter {
	return &Exporter{c: c, cal: cal, log: log, cfg: cfg, backoff: utils.NewBackoff(200*time.Millisecond, 2)}
}

// WithBackoff replaces the retry policy.
func (e *Exporter) WithBackoff(b utils.Backoff) *Exporter {
	e.backoff = b
	return e
}

type payload struct {
	Date   string                 `json:"date"`
	Events []models.CalendarEvent `json:"events"`
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// ExportDay posts the events scheduled on date (all projects) to the sink.
// It returns the number of events sent; an empty day sends nothing.
func (e *Exporter) ExportDay(ctx context.Context, date time.Time) (int, error) {
	if e.cfg.SinkURL == "" || e.cfg.SinkSecret == "" {
		return 0, apperr.InvalidArgument("sink not configured")
	}
	events, err := e.cal.Day(ctx, nil, date)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}
	b, err := json.Marshal(payload{Date: date.In(e.cal.Location()).Format("2006-01-02"), Events: events})
	if err != nil {
		return 0, fmt.Errorf("encode export: %w", err)
	}
	sig := Sign(e.cfg.SinkSecret, b)

	err = e.backoff.Do(ctx, func(attempt int) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.SinkURL, bytes.NewReader(b))
		if err != nil {
			return utils.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(SignatureHeader, sig)
		resp, err := e.c.Do(req)
		if err != nil {
			e.log.Warn("export attempt failed", slog.Int("attempt", attempt), slog.String("err", err.Error()))
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		sinkErr := fmt.Errorf("export sink non-2xx: %d body=%s", resp.StatusCode, string(body))
		if resp.StatusCode >= 500 {
			e.log.Warn("export attempt failed", slog.Int("attempt", attempt), slog.Int("status", resp.StatusCode))
			return sinkErr
		}
		return utils.Permanent(sinkErr)
	})
	if err != nil {
		return 0, err
	}
	e.log.Info("export complete", slog.String("date", date.Format("2006-01-02")), slog.Int("events", len(events)))
	return len(events), nil
}
