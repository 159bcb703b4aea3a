package reports

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/PuerkitoBio/rehttp"
	"github.com/results-hub/results-hub/internal/config"
	"github.com/results-hub/results-hub/internal/otel"
	"github.com/results-hub/results-hub/pkg/api"
)

const (
	HEADER_TIMESTAMP = "X-Results-Hub-Timestamp"
	HEADER_SIGNATURE = "X-Results-Hub-Signature"

	defaultWebhookTimeout    = 10 * time.Second
	defaultWebhookRetries    = 3
	defaultWebhookBaseDelay  = 200 * time.Millisecond
	defaultWebhookMaxDelay   = 5 * time.Second
	maxWebhookResponseLength = 4096
)

// NewHTTPClient returns the client used to deliver reports. Requests are
// traced and retried on connection errors and on 429 and 5xx responses.
func NewHTTPClient(conf config.WebhookConfig) *http.Client {
	timeout := conf.Timeout
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	retries := conf.MaxRetries
	if retries <= 0 {
		retries = defaultWebhookRetries
	}
	baseDelay := conf.BaseDelay
	if baseDelay <= 0 {
		baseDelay = defaultWebhookBaseDelay
	}
	maxDelay := conf.MaxDelay
	if maxDelay < baseDelay {
		maxDelay = defaultWebhookMaxDelay
	}

	transport := rehttp.NewTransport(
		otel.NewRoundTripper(http.DefaultTransport),
		rehttp.RetryAll(
			rehttp.RetryAny(
				rehttp.RetryStatuses(http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout),
				rehttp.RetryTemporaryErr(),
			),
			rehttp.RetryHTTPMethods(http.MethodPost),
			rehttp.RetryMaxRetries(retries),
		),
		rehttp.ExpJitterDelay(baseDelay, maxDelay),
	)
	return &http.Client{Transport: transport, Timeout: timeout}
}

// WebhookNotifier posts the message as JSON to the robot token of the
// project. When the project has a robot secret the body is signed with
// HMAC-SHA256 over "<timestamp>\n<body>".
type WebhookNotifier struct {
	client *http.Client
	now    func() time.Time
}

func NewWebhookNotifier(client *http.Client) *WebhookNotifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebhookNotifier{client: client, now: time.Now}
}

func (n *WebhookNotifier) Notify(ctx context.Context, project *api.Project, message *Message) error {
	body, err := json.Marshal(message)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, project.RobotToken, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if project.RobotSecret != "" {
		timestamp := strconv.FormatInt(n.now().UnixMilli(), 10)
		req.Header.Set(HEADER_TIMESTAMP, timestamp)
		req.Header.Set(HEADER_SIGNATURE, Sign(project.RobotSecret, timestamp, body))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxWebhookResponseLength))
		return fmt.Errorf("webhook for project %d returned %d: %s", project.ID, resp.StatusCode, string(detail))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Sign returns the base64 encoded HMAC-SHA256 of the timestamp and body.
func Sign(secret string, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("\n"))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
