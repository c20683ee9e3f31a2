package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"campus-scheduler/core/config"
	"campus-scheduler/core/constants"
	"campus-scheduler/core/errors"
	"campus-scheduler/core/logger"
)

// Client is the campus REST API as the scheduler consumes it. Transport
// failures surface as ErrNetwork, upstream rejections as ErrUpstreamRejected
// (404 as ErrNotFound); both always trigger a rollback in the coordinator.
type Client interface {
	FetchEvents(ctx context.Context) ([]RawEvent, *errors.AppError)
	FetchSchedules(ctx context.Context, start, end time.Time) ([]RawSchedule, *errors.AppError)
	FetchSchedule(ctx context.Context, id string) (*RawSchedule, *errors.AppError)
	Register(ctx context.Context, eventID, userID string) (*RawEvent, *errors.AppError)
	Unregister(ctx context.Context, eventID, userID string) (*RawEvent, *errors.AppError)
	CreateSchedule(ctx context.Context, payload SchedulePayload) (*RawSchedule, *errors.AppError)
	UpdateSchedule(ctx context.Context, id string, payload SchedulePayload) (*RawSchedule, *errors.AppError)
	DeleteSchedule(ctx context.Context, id string) *errors.AppError
	CheckConflicts(ctx context.Context, payload ConflictCheckPayload) (*ConflictCheckResult, *errors.AppError)
}

type httpClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewClient(cfg config.UpstreamConfig) Client {
	timeout := constants.UpstreamClientTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &httpClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (h *httpClient) do(ctx context.Context, method, path string, body any, out any) *errors.AppError {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.NewAppError(errors.ErrInternalServer, "Failed to encode request", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reader)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to build request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		logger.Error("UpstreamClient:Do:TransportError", "method", method, "path", path, "error", err)
		return errors.NewAppError(errors.ErrNetwork, "Campus API unreachable", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errors.NewAppError(errors.ErrNotFound, "Entity not found upstream", nil)
	case resp.StatusCode >= 400:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		logger.Error("UpstreamClient:Do:Rejected", "method", method, "path", path, "status", resp.StatusCode)
		return errors.NewAppError(errors.ErrUpstreamRejected,
			fmt.Sprintf("Campus API rejected the request (%d)", resp.StatusCode),
			string(raw))
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.NewAppError(errors.ErrUpstreamRejected, "Failed to parse upstream response", err)
		}
	}
	return nil
}

func (h *httpClient) FetchEvents(ctx context.Context) ([]RawEvent, *errors.AppError) {
	var events []RawEvent
	if appErr := h.do(ctx, http.MethodGet, "/events", nil, &events); appErr != nil {
		return nil, appErr
	}
	return events, nil
}

func (h *httpClient) FetchSchedules(ctx context.Context, start, end time.Time) ([]RawSchedule, *errors.AppError) {
	q := url.Values{}
	q.Set("startDate", FormatTime(start))
	q.Set("endDate", FormatTime(end))

	var schedules []RawSchedule
	if appErr := h.do(ctx, http.MethodGet, "/schedules?"+q.Encode(), nil, &schedules); appErr != nil {
		return nil, appErr
	}
	return schedules, nil
}

func (h *httpClient) FetchSchedule(ctx context.Context, id string) (*RawSchedule, *errors.AppError) {
	var schedule RawSchedule
	path := fmt.Sprintf("/schedules/%s", url.PathEscape(id))
	if appErr := h.do(ctx, http.MethodGet, path, nil, &schedule); appErr != nil {
		return nil, appErr
	}
	return &schedule, nil
}

func (h *httpClient) Register(ctx context.Context, eventID, userID string) (*RawEvent, *errors.AppError) {
	var event RawEvent
	path := fmt.Sprintf("/events/%s/register", url.PathEscape(eventID))
	body := map[string]string{"userId": userID}
	if appErr := h.do(ctx, http.MethodPost, path, body, &event); appErr != nil {
		return nil, appErr
	}
	return &event, nil
}

func (h *httpClient) Unregister(ctx context.Context, eventID, userID string) (*RawEvent, *errors.AppError) {
	var event RawEvent
	path := fmt.Sprintf("/events/%s/register?userId=%s", url.PathEscape(eventID), url.QueryEscape(userID))
	if appErr := h.do(ctx, http.MethodDelete, path, nil, &event); appErr != nil {
		return nil, appErr
	}
	return &event, nil
}

func (h *httpClient) CreateSchedule(ctx context.Context, payload SchedulePayload) (*RawSchedule, *errors.AppError) {
	var schedule RawSchedule
	if appErr := h.do(ctx, http.MethodPost, "/schedules", payload, &schedule); appErr != nil {
		return nil, appErr
	}
	return &schedule, nil
}

func (h *httpClient) UpdateSchedule(ctx context.Context, id string, payload SchedulePayload) (*RawSchedule, *errors.AppError) {
	var schedule RawSchedule
	path := fmt.Sprintf("/schedules/%s", url.PathEscape(id))
	if appErr := h.do(ctx, http.MethodPut, path, payload, &schedule); appErr != nil {
		return nil, appErr
	}
	return &schedule, nil
}

func (h *httpClient) DeleteSchedule(ctx context.Context, id string) *errors.AppError {
	path := fmt.Sprintf("/schedules/%s", url.PathEscape(id))
	return h.do(ctx, http.MethodDelete, path, nil, nil)
}

func (h *httpClient) CheckConflicts(ctx context.Context, payload ConflictCheckPayload) (*ConflictCheckResult, *errors.AppError) {
	var result ConflictCheckResult
	if appErr := h.do(ctx, http.MethodPost, "/schedules/check-conflicts", payload, &result); appErr != nil {
		return nil, appErr
	}
	return &result, nil
}
