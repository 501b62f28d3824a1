package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"aminashop/backend/internal/store"
)

const maxDocumentBytes = 32 << 20

// Store talks to a persistence endpoint exposing GET and POST on /data.
type Store struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func New(baseURL string, apiKey string) *Store {
	return &Store{
		endpoint: strings.TrimRight(baseURL, "/") + "/data",
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *Store) Load(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	case http.StatusNotFound:
		return nil, store.ErrNotFound
	default:
		return nil, statusError(resp)
	}
}

func (s *Store) Save(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (s *Store) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *Store) do(req *http.Request) (*http.Response, error) {
	if s.apiKey != "" {
		req.Header.Set("X-Data-Key", s.apiKey)
	}
	return s.client.Do(req)
}

func statusError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("persistence endpoint %s %s: %s: %s",
		resp.Request.Method, resp.Request.URL.Path, resp.Status, strings.TrimSpace(string(msg)))
}
