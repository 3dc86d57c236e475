package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/DrSkyle/costscope/pkg/billing"
)

// SlackClient posts analysis summaries to an incoming webhook.
type SlackClient struct {
	WebhookURL string
	Channel    string // optional channel override

	httpClient *http.Client
}

func NewSlackClient(webhookURL string, channel string) *SlackClient {
	return &SlackClient{
		WebhookURL: webhookURL,
		Channel:    channel,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SendReport posts the run summary. A client with no webhook URL is a
// no-op, so callers don't need to guard the optional integration.
func (s *SlackClient) SendReport(ctx context.Context, r billing.OptimizationReport) error {
	if s.WebhookURL == "" {
		return nil
	}
	return s.send(ctx, s.reportPayload(r))
}

// SendVelocityAlert warns when spend between runs is climbing fast.
func (s *SlackClient) SendVelocityAlert(ctx context.Context, dollarsPerHour float64) error {
	if s.WebhookURL == "" {
		return nil
	}

	payload := map[string]interface{}{
		"blocks": []map[string]interface{}{
			{
				"type": "header",
				"text": map[string]interface{}{
					"type": "plain_text",
					"text": "🔥 Spend Velocity Alert",
				},
			},
			{
				"type": "section",
				"text": map[string]interface{}{
					"type": "mrkdwn",
					"text": fmt.Sprintf("Total spend is climbing at *+$%.2f/hour* between analysis runs.", dollarsPerHour),
				},
			},
		},
	}
	if s.Channel != "" {
		payload["channel"] = s.Channel
	}
	return s.send(ctx, payload)
}

func (s *SlackClient) reportPayload(r billing.OptimizationReport) map[string]interface{} {
	statusIcon := "🟢"
	if r.Trend.Direction == billing.TrendIncreasing || len(r.Trend.Anomalies) > 0 {
		statusIcon = "🔴"
	} else if r.TotalPotentialSavings > 0 {
		statusIcon = "🟡"
	}

	blocks := []map[string]interface{}{
		{
			"type": "header",
			"text": map[string]interface{}{
				"type": "plain_text",
				"text": fmt.Sprintf("%s Cloud Cost Report", statusIcon),
			},
		},
		{
			"type": "context",
			"elements": []map[string]interface{}{
				{
					"type": "mrkdwn",
					"text": fmt.Sprintf("*Report:* %s | *Generated:* %s", r.ReportID, r.GeneratedAt.Format("2006-01-02")),
				},
			},
		},
		{
			"type": "divider",
		},
		{
			"type": "section",
			"fields": []map[string]interface{}{
				{
					"type": "mrkdwn",
					"text": fmt.Sprintf("*Total Spend:*\n$%.2f", r.TotalCost),
				},
				{
					"type": "mrkdwn",
					"text": fmt.Sprintf("*Potential Savings:*\n$%.2f", r.TotalPotentialSavings),
				},
				{
					"type": "mrkdwn",
					"text": fmt.Sprintf("*Trend:*\n%s (%+.1f%%)", r.Trend.Direction, r.Trend.ChangeRate),
				},
				{
					"type": "mrkdwn",
					"text": fmt.Sprintf("*Anomalous Days:*\n%d", len(r.Trend.Anomalies)),
				},
			},
		},
	}

	if len(r.PriorityActions) > 0 {
		top := r.PriorityActions[0]
		blocks = append(blocks, map[string]interface{}{
			"type": "section",
			"text": map[string]interface{}{
				"type": "mrkdwn",
				"text": fmt.Sprintf("*Top Action:* %s\n_%s_", top.Action, top.Scope),
			},
		})
	}

	payload := map[string]interface{}{
		"blocks": blocks,
	}
	if s.Channel != "" {
		payload["channel"] = s.Channel
	}
	return payload
}

func (s *SlackClient) send(ctx context.Context, payload map[string]interface{}) error {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.WebhookURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("received non-200 status from slack: %d", resp.StatusCode)
	}
	return nil
}
