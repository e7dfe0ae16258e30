// Package mlservice is a thin client for the maintenance prediction service.
package mlservice

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mmcl/printrun/internal/apperr"
)

// Client exposes the prediction service endpoints relayed by the API.
type Client interface {
	Predictions(ctx context.Context, machineID int64) (json.RawMessage, error)
	Recommendations(ctx context.Context, params RecommendationParams) (json.RawMessage, error)
	BatchAnalysis(ctx context.Context) (json.RawMessage, error)
	ModelInfo(ctx context.Context) (json.RawMessage, error)
	Health(ctx context.Context) (json.RawMessage, error)
}

// RecommendationParams are forwarded as query parameters when non-empty.
type RecommendationParams struct {
	PublicationIDs string `form:"publication_ids"`
	StartDate      string `form:"start_date"`
	EndDate        string `form:"end_date"`
	Location       string `form:"location"`
}

func (p RecommendationParams) query() map[string]string {
	q := map[string]string{}
	for k, v := range map[string]string{
		"publication_ids": p.PublicationIDs,
		"start_date":      p.StartDate,
		"end_date":        p.EndDate,
		"location":        p.Location,
	} {
		if v != "" {
			q[k] = v
		}
	}
	return q
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a client for baseURL. A non-positive timeout uses 10s.
func NewClient(baseURL string, timeout time.Duration) *APIClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &APIClient{httpClient: restyClient}
}

// Predictions returns failure predictions, for one machine when machineID > 0.
func (c *APIClient) Predictions(ctx context.Context, machineID int64) (json.RawMessage, error) {
	req := c.httpClient.R().SetContext(ctx)
	if machineID > 0 {
		req.SetQueryParam("machine_id", strconv.FormatInt(machineID, 10))
	}
	return c.do(req, resty.MethodGet, "/predict", false)
}

func (c *APIClient) Recommendations(ctx context.Context, params RecommendationParams) (json.RawMessage, error) {
	req := c.httpClient.R().SetContext(ctx).SetQueryParams(params.query())
	return c.do(req, resty.MethodGet, "/recommendations", false)
}

// BatchAnalysis triggers the daily analysis and retraining run.
func (c *APIClient) BatchAnalysis(ctx context.Context) (json.RawMessage, error) {
	req := c.httpClient.R().SetContext(ctx).SetBody(map[string]any{})
	return c.do(req, resty.MethodPost, "/batch-analysis", false)
}

func (c *APIClient) ModelInfo(ctx context.Context) (json.RawMessage, error) {
	return c.do(c.httpClient.R().SetContext(ctx), resty.MethodGet, "/model-info", false)
}

// Health probes the service. Any failure is reported as unavailable.
func (c *APIClient) Health(ctx context.Context) (json.RawMessage, error) {
	return c.do(c.httpClient.R().SetContext(ctx), resty.MethodGet, "/health", true)
}

func (c *APIClient) do(req *resty.Request, method, path string, probe bool) (json.RawMessage, error) {
	fail := func(err error, format string, args ...any) error {
		if probe {
			return apperr.Unavailable(err, "ML service unavailable")
		}
		return apperr.Upstream(err, format, args...)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fail(fmt.Errorf("ml service %s %s: %w", method, path, err), "ML service request failed")
	}
	if resp.IsError() {
		return nil, fail(fmt.Errorf("ml service %s %s: status %d: %s", method, path, resp.StatusCode(), strings.TrimSpace(resp.String())),
			"ML service returned status %d", resp.StatusCode())
	}

	body := resp.Body()
	if !json.Valid(body) {
		return nil, fail(fmt.Errorf("ml service %s %s: response is not JSON", method, path), "ML service returned an invalid response")
	}
	return json.RawMessage(body), nil
}
