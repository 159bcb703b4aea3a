package reports

import (
	"context"
	"net/http"

	"github.com/results-hub/results-hub/pkg/api"
	"github.com/slack-go/slack"
)

var statusColors = map[string]string{
	api.ResultStatusPass.String(): "good",
	api.ResultStatusWarn.String(): "warning",
	api.ResultStatusFail.String(): "danger",
}

// SlackNotifier posts the messages to the incoming webhook stored as the
// robot token of the project.
type SlackNotifier struct {
	client *http.Client
}

func NewSlackNotifier(client *http.Client) *SlackNotifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &SlackNotifier{client: client}
}

func (n *SlackNotifier) Notify(ctx context.Context, project *api.Project, message *Message) error {
	// PostWebhookCustomHTTP has no context, the request inherits it from the client transport
	client := &http.Client{
		Transport: contextTransport{ctx: ctx, base: n.client.Transport},
		Timeout:   n.client.Timeout,
	}
	return slack.PostWebhookCustomHTTP(project.RobotToken, client, toSlack(message))
}

func toSlack(message *Message) *slack.WebhookMessage {
	fields := make([]slack.AttachmentField, 0, len(message.Fields))
	for _, f := range message.Fields {
		fields = append(fields, slack.AttachmentField{Title: f.Name, Value: f.Value, Short: true})
	}
	return &slack.WebhookMessage{
		Text: message.Title,
		Attachments: []slack.Attachment{
			{
				Color:     statusColors[message.Status],
				Title:     message.Title,
				TitleLink: message.Link,
				Text:      message.Text,
				Fields:    fields,
			},
		},
	}
}

type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req.WithContext(t.ctx))
}
