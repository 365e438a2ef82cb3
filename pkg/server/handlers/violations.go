package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"quillpress/wordguard/pkg/audit"
)

// ViolationQuerier reads the violation log. Every audit.Storage
// implements it.
type ViolationQuerier interface {
	Query(ctx context.Context, q *audit.Query) ([]*audit.Violation, error)
	Count(ctx context.Context, q *audit.Query) (int64, error)
}

// ViolationListResponse is a page of violations, newest first. Total
// counts every match regardless of limit.
type ViolationListResponse struct {
	Violations []*audit.Violation `json:"violations"`
	Total      int64              `json:"total"`
}

// ViolationsHandler serves the violation log.
type ViolationsHandler struct {
	querier ViolationQuerier
	logger  *slog.Logger
}

// NewViolationsHandler creates a ViolationsHandler.
func NewViolationsHandler(querier ViolationQuerier, logger *slog.Logger) *ViolationsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ViolationsHandler{
		querier: querier,
		logger:  logger.With("component", "handlers.violations"),
	}
}

// List handles GET /api/v1/violations?source=&user=&since=&until=&limit=.
// since and until are RFC 3339 timestamps.
func (h *ViolationsHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseViolationQuery(r.URL.Query())
	if err == nil {
		err = q.Validate()
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}

	list, err := h.querier.Query(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	total, err := h.querier.Count(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, ViolationListResponse{Violations: list, Total: total})
}

func parseViolationQuery(values url.Values) (*audit.Query, error) {
	q := &audit.Query{
		Source: values.Get("source"),
		UserID: values.Get("user"),
	}

	var err error
	if q.Since, err = parseTime(values, "since"); err != nil {
		return nil, err
	}
	if q.Until, err = parseTime(values, "until"); err != nil {
		return nil, err
	}
	if s := values.Get("limit"); s != "" {
		if q.Limit, err = strconv.Atoi(s); err != nil {
			return nil, fmt.Errorf("invalid limit %q", s)
		}
	}
	return q, nil
}

func parseTime(values url.Values, key string) (time.Time, error) {
	s := values.Get(key)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: must be RFC 3339", key, s)
	}
	return t, nil
}
