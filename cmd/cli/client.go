package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
)

// APIError represents an error response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// Client is an HTTP client for the testgen API. It keeps the session cookie
// the server issues for the lifetime of the process.
type Client struct {
	baseURL    string
	httpClient *http.Client
	debug      io.Writer
}

func newClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient.Jar == nil {
		jar, _ := cookiejar.New(nil)
		httpClient.Jar = jar
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func getClient() (*Client, error) {
	baseURL := getConfigURL()
	if baseURL == "" {
		return nil, fmt.Errorf("server URL is required. Set it via --url flag, DESIGN_TESTGEN_URL env var, or ~/%s.yaml", configName)
	}

	c := newClient(baseURL, &http.Client{Timeout: getConfigTimeout()})
	if flagDebug {
		c.debug = os.Stderr
	}
	return c, nil
}

func (c *Client) debugf(format string, args ...interface{}) {
	if c.debug != nil {
		fmt.Fprintf(c.debug, "DEBUG: "+format+"\n", args...)
	}
}

// send executes req and returns the response with a buffered body. Responses
// with a status of 400 or above become an *APIError.
func (c *Client) send(req *http.Request) (*http.Response, []byte, error) {
	c.debugf("%s %s", req.Method, req.URL.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.debugf("Status %d", resp.StatusCode)

	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return nil, nil, &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return nil, nil, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	return resp, body, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	_, body, err := c.send(req)
	if err == nil {
		c.debugf("Body: %s", string(body))
	}
	return body, err
}

func (c *Client) url(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// Get performs a GET request.
func (c *Client) Get(path string, query url.Values) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, c.url(path, query), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req)
}

// Delete performs a DELETE request.
func (c *Client) Delete(path string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodDelete, c.url(path, nil), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req)
}

// Upload posts a multipart form holding fields and a single file part.
func (c *Client) Upload(path string, fields map[string]string, fileField, fileName string, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for key, value := range fields {
		if value == "" {
			continue
		}
		if err := mw.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("failed to write field %s: %w", key, err)
		}
	}

	part, err := mw.CreateFormFile(fileField, fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write file part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.url(path, nil), &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

// Download fetches a raw file. The filename comes from Content-Disposition
// when the server sets one.
func (c *Client) Download(path string) ([]byte, string, error) {
	req, err := http.NewRequest(http.MethodGet, c.url(path, nil), nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, body, err := c.send(req)
	if err != nil {
		return nil, "", err
	}

	var filename string
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			filename = params["filename"]
		}
	}
	return body, filename, nil
}
