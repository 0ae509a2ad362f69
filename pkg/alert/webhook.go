package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/imroc/req/v3"
)

// Message 是发送到 Webhook 的消息体，同时携带 Slack 的 text 与 Discord 的 content 字段
type Message struct {
	Text    string `json:"text"`
	Content string `json:"content"`
}

// webhookAlerter posts owner notifications to a chat webhook. The receiver is ignored.
type webhookAlerter struct {
	address string
	client  *req.Client
}

func newWebhookAlerter(address string) *webhookAlerter {
	return &webhookAlerter{
		address: address,
		client:  req.C().SetTimeout(10 * time.Second),
	}
}

func (w *webhookAlerter) SendMessageTo(ctx context.Context, _ *Receiver, subject, body string) error {
	content := subject + "\n\n" + body
	resp, err := w.client.R().
		SetContext(ctx).
		SetBody(&Message{Text: content, Content: content}).
		Post(w.address)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	if resp.IsErrorState() {
		return fmt.Errorf("webhook responded with status %d", resp.StatusCode)
	}
	return nil
}
