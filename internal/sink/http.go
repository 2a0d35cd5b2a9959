package sink

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
)

// HTTPSink posts one JSON document per run to a metrics collector endpoint.
type HTTPSink struct {
	url    string
	client *http.Client
}

func NewHTTPSink(url string) *HTTPSink {
	return &HTTPSink{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type httpPayload struct {
	Tags
	Metrics map[string]float64 `json:"metrics"`
}

func (s *HTTPSink) Emit(ctx context.Context, tags Tags, values map[string]float64) error {
	body, err := json.Marshal(httpPayload{Tags: tags, Metrics: values})
	if err != nil {
		return fmt.Errorf("encoding metrics payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("metrics endpoint returned %d", resp.StatusCode)
	}
	return nil
}
