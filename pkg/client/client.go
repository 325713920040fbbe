// Package client talks to a running PixGonz backend over HTTP. It mirrors
// the endpoints the frontend uses: multipart image uploads in, PNG bytes
// out.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Client is a struct for communicating with the PixGonz backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the backend at addr (host:port or a full URL).
func New(addr string) *Client {
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	return &Client{
		baseURL: strings.TrimRight(addr, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// postFiles sends a multipart POST with the given file parts and form
// fields and returns the raw response body.
func (c *Client) postFiles(path string, files map[string]io.Reader, fields map[string]string) ([]byte, error) {
	logrus.WithFields(logrus.Fields{
		"path":    path,
		"baseURL": c.baseURL,
	}).Debug("sending request")

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for field, r := range files {
		fw, err := w.CreateFormFile(field, field+".png")
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(fw, r); err != nil {
			return nil, err
		}
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Post(c.baseURL+path, w.FormDataContentType(), body)
	if err != nil {
		var netErr *net.OpError
		if errors.As(err, &netErr) {
			return nil, ErrDaemonNotRunning
		}
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Message:    decodeErrorMessage(data),
		}
	}
	return data, nil
}

func (c *Client) get(path string) ([]byte, error) {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		var netErr *net.OpError
		if errors.As(err, &netErr) {
			return nil, ErrDaemonNotRunning
		}
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Message:    decodeErrorMessage(data),
		}
	}
	return data, nil
}

// decodeErrorMessage extracts the backend's {"error": "..."} payload,
// falling back to the raw body.
func decodeErrorMessage(data []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(data))
}
