package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/RMahshie/satscan/internal/artifacts"
	"github.com/RMahshie/satscan/pkg/models"
)

// APIError is a non-2xx response from the satscan API
type APIError struct {
	Status int
	Title  string
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Detail)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Title)
}

// Is maps 404 onto artifacts.ErrNotFound and 400 onto artifacts.ErrInvalidScanID
func (e *APIError) Is(target error) bool {
	switch target {
	case artifacts.ErrNotFound:
		return e.Status == http.StatusNotFound
	case artifacts.ErrInvalidScanID:
		return e.Status == http.StatusBadRequest
	}
	return false
}

// Client calls the satscan HTTP API
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the API at baseURL
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// InputCount returns the number of files in the acquisition input directory
func (c *Client) InputCount(ctx context.Context) (int, error) {
	var body models.InputCountResponseBody
	if err := c.get(ctx, "/satscan/input/count", &body); err != nil {
		return 0, err
	}
	return body.Count, nil
}

// OutputStatus fetches the result folder status of a scan
func (c *Client) OutputStatus(ctx context.Context, scanID int64) (*models.OutputStatusResponseBody, error) {
	var body models.OutputStatusResponseBody
	if err := c.get(ctx, scanPath(scanID, "status"), &body); err != nil {
		return nil, err
	}
	return &body, nil
}

// Spectrum fetches the parsed spectrum of a scan
func (c *Client) Spectrum(ctx context.Context, scanID int64) (*models.SpectrumResponseBody, error) {
	var body models.SpectrumResponseBody
	if err := c.get(ctx, scanPath(scanID, "spectrum"), &body); err != nil {
		return nil, err
	}
	return &body, nil
}

// TabularText fetches the raw .tmptxt of a scan
func (c *Client) TabularText(ctx context.Context, scanID int64) (*models.TabularTextResponseBody, error) {
	var body models.TabularTextResponseBody
	if err := c.get(ctx, scanPath(scanID, "tmptxt"), &body); err != nil {
		return nil, err
	}
	return &body, nil
}

// Table fetches the parsed .tmptxt of a scan, keeping columns when given
func (c *Client) Table(ctx context.Context, scanID int64, columns []string) (*models.TableResponseBody, error) {
	path := scanPath(scanID, "table")
	if len(columns) > 0 {
		path += "?" + url.Values{"columns": {strings.Join(columns, ",")}}.Encode()
	}

	var body models.TableResponseBody
	if err := c.get(ctx, path, &body); err != nil {
		return nil, err
	}
	return &body, nil
}

func scanPath(scanID int64, leaf string) string {
	return "/satscan/output/" + url.PathEscape(strconv.FormatInt(scanID, 10)) + "/" + leaf
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Title: http.StatusText(resp.StatusCode)}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var problem struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}
	if json.Unmarshal(raw, &problem) == nil {
		if problem.Title != "" {
			apiErr.Title = problem.Title
		}
		apiErr.Detail = problem.Detail
	} else {
		apiErr.Detail = strings.TrimSpace(string(raw))
	}
	return apiErr
}
