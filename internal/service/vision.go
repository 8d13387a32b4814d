package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Verification is the advisory classifier's verdict on a submission
// photo. It is informational only and never gates a transition.
type Verification struct {
	IsValid       bool     `json:"is_valid"`
	Confidence    float64  `json:"confidence"`
	DetectedItems []string `json:"detected_items"`
	Reason        string   `json:"reason"`
}

type VisionClient interface {
	Verify(ctx context.Context, image string) (*Verification, error)
}

// HTTPVisionClient calls an external object-detection service over
// HTTP.
type HTTPVisionClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPVisionClient(baseURL string, timeout time.Duration) *HTTPVisionClient {
	return &HTTPVisionClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPVisionClient) Verify(ctx context.Context, image string) (*Verification, error) {
	payload, err := json.Marshal(map[string]string{"image": image})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/verify", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vision service returned status %d", resp.StatusCode)
	}

	var verdict Verification
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return nil, err
	}
	return &verdict, nil
}

// unavailableVerdict is attached when the classifier cannot be reached.
// Submissions are always allowed through.
func unavailableVerdict() *Verification {
	return &Verification{
		IsValid:    true,
		Confidence: 0,
		Reason:     "AI guidance unavailable; photo will be reviewed manually",
	}
}
