package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tartampluch/go-cycle/internal/config"
	"github.com/tartampluch/go-cycle/internal/cycle"
)

// ErrMalformedPayload wraps every decoding or validation failure of a server response.
var ErrMalformedPayload = errors.New(config.ErrMalformedPayload)

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	// Message is the server's own error text, empty when the body carried none.
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %d: %s", config.ErrUnexpectedStatus, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %d %s", config.ErrUnexpectedStatus, e.StatusCode, http.StatusText(e.StatusCode))
}

// HTTPClient talks to the cycle backend REST API.
type HTTPClient struct {
	BaseURL string
	User    string // HTTP Basic Auth Username, optional
	Pass    string // HTTP Basic Auth Password, optional
	Client  *http.Client
}

// NewHTTPClient creates a client with the configured timeout.
func NewHTTPClient(baseURL, user, pass string) *HTTPClient {
	return &HTTPClient{
		BaseURL: baseURL,
		User:    user,
		Pass:    pass,
		Client: &http.Client{
			Timeout: config.HTTPTimeout,
		},
	}
}

// calendarResponse is the wire shape of GET /api/calendar/{year}/{month}.
type calendarResponse struct {
	CalendarData *[]cycle.DayAnnotation `json:"calendar_data"`
	Predictions  *cycle.Prediction      `json:"predictions"`
}

// FetchMonth retrieves the annotations and predictions for one month.
func (c *HTTPClient) FetchMonth(ctx context.Context, month cycle.Month) (cycle.MonthData, error) {
	target, safeURL, err := c.endpoint(config.APIPrefix, config.APICalendarPath,
		strconv.Itoa(month.Year), strconv.Itoa(int(month.Month)))
	if err != nil {
		return cycle.MonthData{}, err
	}

	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompClient),
		slog.String(config.LogKeyURL, safeURL),
	)
	log.Debug(config.MsgFetchStart, config.LogKeyMonth, month.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return cycle.MonthData{}, fmt.Errorf("%s: %w", config.ErrRequestBuild, err)
	}

	resp, err := c.do(req, log)
	if err != nil {
		return cycle.MonthData{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	return decodeMonth(io.LimitReader(resp.Body, config.MaxHTTPResponseSize), month)
}

// SavePeriod posts a period record. The backend decides whether it creates or updates.
func (c *HTTPClient) SavePeriod(ctx context.Context, rec cycle.PeriodRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	target, safeURL, err := c.endpoint(config.APIPrefix, config.APIPeriodsPath)
	if err != nil {
		return err
	}

	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompClient),
		slog.String(config.LogKeyURL, safeURL),
	)

	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrEncodeBody, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrRequestBuild, err)
	}
	req.Header.Set(config.HeaderContentType, config.MimeJSON)

	resp, err := c.do(req, log)
	if err != nil {
		return err
	}
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, config.MaxErrorBodySize))
	_ = resp.Body.Close()

	log.Info(config.MsgSaveDone,
		config.LogKeyDate, rec.StartDate,
		config.LogKeyFlow, string(rec.FlowIntensity),
	)
	return nil
}

// endpoint validates the base URL and joins the path segments onto it.
// The second value strips the query string, which might contain tokens, for logging.
func (c *HTTPClient) endpoint(segments ...string) (string, string, error) {
	if strings.TrimSpace(c.BaseURL) == "" {
		return "", "", errors.New(config.ErrAPIURLEmpty)
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return "", "", fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	full := u.JoinPath(segments...)
	safeURL := full.Scheme + "://" + full.Host + full.Path
	return full.String(), safeURL, nil
}

// do sends the request and converts non-2xx responses into *APIError.
func (c *HTTPClient) do(req *http.Request, log *slog.Logger) (*http.Response, error) {
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	req.Header.Set(config.HeaderAccept, config.MimeJSON)
	if c.User != "" || c.Pass != "" {
		req.SetBasicAuth(c.User, c.Pass)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrNetwork, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		defer func() { _ = resp.Body.Close() }()
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp.Body),
		}
		log.Warn(config.MsgRequestFailed,
			slog.Int(config.LogKeyStatus, resp.StatusCode),
			slog.String(config.LogKeyError, apiErr.Message),
		)
		return nil, apiErr
	}
	return resp, nil
}

// readErrorMessage extracts {"error": "..."} or FastAPI's {"detail": "..."}.
func readErrorMessage(r io.Reader) string {
	var body struct {
		Error  string          `json:"error"`
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(r, config.MaxErrorBodySize)).Decode(&body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err == nil {
		return detail
	}
	return ""
}

// decodeMonth parses and validates a calendar payload.
func decodeMonth(r io.Reader, month cycle.Month) (cycle.MonthData, error) {
	var payload calendarResponse
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return cycle.MonthData{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if payload.CalendarData == nil {
		return cycle.MonthData{}, fmt.Errorf("%w: missing calendar_data", ErrMalformedPayload)
	}

	idx, err := cycle.IndexAnnotations(*payload.CalendarData)
	if err != nil {
		return cycle.MonthData{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	for date := range idx {
		if !month.Contains(date) {
			return cycle.MonthData{}, fmt.Errorf("%w: %s outside %s", ErrMalformedPayload, date, month)
		}
	}

	var pred cycle.Prediction
	if payload.Predictions != nil {
		pred = *payload.Predictions
		if err := pred.Validate(); err != nil {
			return cycle.MonthData{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
		}
	}

	return cycle.MonthData{
		Month:       month,
		Annotations: idx,
		Predictions: pred,
	}, nil
}
