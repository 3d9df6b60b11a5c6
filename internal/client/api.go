// Package client talks to the GreenGuardian HTTP API on behalf of the CLI.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/AdityaD28/GreenGuardian/internal/models"
)

const (
	apiRegister = "/register"
	apiLogin    = "/login"
	apiLogout   = "/logout"
	apiPredict  = "/predict"
	apiHistory  = "/api/history"
	apiRecent   = "/api/recent-diagnoses"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
}

// Diagnosis is the result of a prediction request.
type Diagnosis struct {
	Disease        string `json:"disease"`
	Confidence     string `json:"confidence"`
	Recommendation string `json:"recommendation"`
}

// RecentDiagnosis is one entry of the recent diagnoses list.
type RecentDiagnosis struct {
	ID            int64   `json:"id"`
	Disease       string  `json:"disease"`
	Confidence    float64 `json:"confidence"`
	ImageFilename string  `json:"image_filename"`
	Timestamp     string  `json:"timestamp"`
}

// Client keeps the session cookie between calls.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client for baseURL. A nil httpClient gets a default one with a
// cookie jar attached.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}, nil
}

// Register creates an account. It does not log in.
func (c *Client) Register(username, email, password string) error {
	payload := map[string]string{"username": username, "email": email, "password": password}
	return c.postJSON(apiRegister, payload, nil)
}

// Login opens a session for username.
func (c *Client) Login(username, password string) error {
	payload := map[string]string{"username": username, "password": password}
	return c.postJSON(apiLogin, payload, nil)
}

// Logout ends the current session.
func (c *Client) Logout() error {
	return c.postJSON(apiLogout, nil, nil)
}

// Predict uploads the image at path for diagnosis.
func (c *Client) Predict(path string) (*Diagnosis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+apiPredict, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out Diagnosis
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// History lists every diagnosis of the logged-in user, newest first.
func (c *Client) History() ([]models.DiagnosisRecord, error) {
	var out []models.DiagnosisRecord
	if err := c.get(apiHistory, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Recent lists the latest few diagnoses of the logged-in user.
func (c *Client) Recent() ([]RecentDiagnosis, error) {
	var out []RecentDiagnosis
	if err := c.get(apiRecent, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) get(path string, out any) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(path string, payload, out any) error {
	var body io.Reader = http.NoBody
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s failed: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(data))
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		msg = payload.Error
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}
