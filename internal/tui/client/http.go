package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/stillpath/journey/internal/journey"
	"github.com/stillpath/journey/internal/progress"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

// HTTPClient makes REST calls to the journey server.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPClient creates a client targeting the given base URL (e.g. "http://127.0.0.1:8080").
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Enroll sends POST /api/users.
func (c *HTTPClient) Enroll(startLevel int) (*progress.Progress, error) {
	body := map[string]int{"startLevel": startLevel}
	var out progress.Progress
	if err := c.post("/api/users", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Progress fetches /api/users/{id}/progress.
func (c *HTTPClient) Progress(userID string) (*Standing, error) {
	var out Standing
	if err := c.get("/api/users/"+url.PathEscape(userID)+"/progress", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Plan fetches the player's current level with today's plan.
func (c *HTTPClient) Plan(userID string) (*journey.JourneyLevel, error) {
	var out journey.JourneyLevel
	if err := c.get("/api/users/"+url.PathEscape(userID)+"/plan", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Complete sends POST /api/users/{id}/activities.
func (c *HTTPClient) Complete(userID, activityType string) (*progress.ActivityResult, error) {
	body := map[string]string{"type": activityType}
	var out progress.ActivityResult
	if err := c.post("/api/users/"+url.PathEscape(userID)+"/activities", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitTest sends POST /api/users/{id}/tests.
func (c *HTTPClient) SubmitTest(userID string, level, score int) (*progress.TestResult, error) {
	body := map[string]int{"level": level, "score": score}
	var out progress.TestResult
	if err := c.post("/api/users/"+url.PathEscape(userID)+"/tests", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Journey fetches levels from..to as seen by a player at current.
func (c *HTTPClient) Journey(from, to, current int) ([]journey.JourneyLevel, error) {
	q := url.Values{}
	q.Set("from", strconv.Itoa(from))
	q.Set("to", strconv.Itoa(to))
	q.Set("current", strconv.Itoa(current))
	var out []journey.JourneyLevel
	if err := c.get("/api/journey?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Policy fetches /api/policy.
func (c *HTTPClient) Policy() (*Policy, error) {
	var out Policy
	if err := c.get("/api/policy", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Realms fetches /api/realms.
func (c *HTTPClient) Realms() ([]journey.Realm, error) {
	var out []journey.Realm
	if err := c.get("/api/realms", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) get(path string, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, path, out)
}

func (c *HTTPClient) post(path string, body interface{}, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path, out)
}

func (c *HTTPClient) do(req *http.Request, path string, out interface{}) error {
	c.setAuth(req)
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return readAPIError(req.Method, path, resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func readAPIError(method, path string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	e := &APIError{Method: method, Path: path, Status: resp.StatusCode}
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		e.Message = payload.Error
	} else {
		e.Message = string(bytes.TrimSpace(body))
	}
	return e
}

func (c *HTTPClient) setAuth(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
