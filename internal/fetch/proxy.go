package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ProxyJob is the structured posting returned by the proxied fetch
// service, which performs the cross-origin retrieval and extraction on
// our behalf.
type ProxyJob struct {
	Title          string   `json:"title"`
	Company        string   `json:"company"`
	Location       string   `json:"location"`
	Description    string   `json:"description"`
	Requirements   []string `json:"requirements"`
	Qualifications []string `json:"qualifications"`
	SiteType       string   `json:"extraction_site_type"`
}

type proxyRequest struct {
	URL string `json:"url"`
}

type proxyResponse struct {
	Success  bool      `json:"success"`
	Job      *ProxyJob `json:"job"`
	SiteType string    `json:"extraction_site_type"`
	Error    string    `json:"error"`
}

// ProxyClient talks to the trusted intermediary that fetches cross-origin
// postings. Request headers are chosen to look like an ordinary browser to
// reduce bot-detection rejections on the far side.
type ProxyClient struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	logger     *zap.Logger
}

func NewProxyClient(baseURL, userAgent string, timeout time.Duration, logger *zap.Logger) *ProxyClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProxyClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		logger:     logger,
	}
}

// FetchJob asks the proxy service to retrieve and extract one posting.
func (p *ProxyClient) FetchJob(ctx context.Context, jobURL string) (*ProxyJob, error) {
	if p == nil || p.baseURL == "" {
		return nil, errors.New("proxy service is not configured")
	}

	payload, err := json.Marshal(proxyRequest{URL: jobURL})
	if err != nil {
		return nil, fmt.Errorf("marshal proxy request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	p.logger.Debug("proxy fetch", zap.String("url", jobURL))

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("proxy service returned %s", resp.Status)
	}

	var parsed proxyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse proxy response: %w", err)
	}

	if !parsed.Success || parsed.Job == nil {
		if parsed.Error != "" {
			return nil, fmt.Errorf("proxy fetch failed: %s", parsed.Error)
		}
		return nil, errors.New("proxy fetch failed")
	}

	job := parsed.Job
	if job.SiteType == "" {
		job.SiteType = parsed.SiteType
	}

	return job, nil
}
