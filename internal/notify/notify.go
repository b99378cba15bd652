package notify

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wrenn/capitolwatch/pkg/config"
	"github.com/wrenn/capitolwatch/pkg/httputil"
	"github.com/wrenn/capitolwatch/pkg/logger"
)

// Notifier sends push notifications through an ntfy server. ntfy topics
// are plain HTTP POST targets; the metadata travels in headers.
type Notifier struct {
	http   *httputil.Client
	cfg    config.NtfyConfig
	logger *logger.Logger
	now    func() time.Time
}

// Message is one push notification.
type Message struct {
	Title    string
	Body     string
	Priority int // 1 (min) to 5 (max); 0 means the server default
	Tags     []string
	ClickURL string
}

// New creates an ntfy notifier.
func New(cfg config.NtfyConfig, log *logger.Logger) *Notifier {
	return &Notifier{
		http:   httputil.NewWithTimeout(log, 10*time.Second).DisableRetry(),
		cfg:    cfg,
		logger: log,
		now:    time.Now,
	}
}

// Enabled reports whether notifications are configured and on.
func (n *Notifier) Enabled() bool {
	return n.cfg.Enabled && n.cfg.Topic != ""
}

// Send delivers a message unless notifications are disabled or quiet
// hours are in effect. A delivery failure is logged, not returned:
// notifications are best effort and never block the pipeline.
func (n *Notifier) Send(ctx context.Context, msg Message) bool {
	if !n.Enabled() {
		return false
	}
	if n.inQuietHours() {
		n.logger.WithField("title", msg.Title).Debug("Skipping notification during quiet hours")
		return false
	}

	url := fmt.Sprintf("%s/%s", strings.TrimRight(n.cfg.Server, "/"), n.cfg.Topic)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(msg.Body))
	if err != nil {
		n.logger.WithError(err).Warn("Failed to build notification request")
		return false
	}
	req.Header.Set("Title", msg.Title)
	if msg.Priority > 0 {
		req.Header.Set("Priority", strconv.Itoa(msg.Priority))
	}
	if len(msg.Tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.Tags, ","))
	}
	if msg.ClickURL != "" {
		req.Header.Set("Click", msg.ClickURL)
	}

	resp, err := n.http.Do(req)
	if err != nil {
		n.logger.WithError(err).Warn("Failed to send notification")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		n.logger.WithField("status", resp.StatusCode).Warn("Notification rejected")
		return false
	}
	return true
}

// SendTest sends a fixed message to verify the topic setup.
func (n *Notifier) SendTest(ctx context.Context) bool {
	return n.Send(ctx, Message{
		Title:    "Capitol Watch Test",
		Body:     "If you see this, notifications are working!",
		Priority: 3,
		Tags:     []string{"white_check_mark"},
	})
}

// inQuietHours reports whether the current hour falls inside the
// configured quiet window. The window may cross midnight.
func (n *Notifier) inQuietHours() bool {
	start, end := n.cfg.QuietStart, n.cfg.QuietEnd
	if start == end {
		return false
	}

	hour := n.now().Hour()
	if start < end {
		return hour >= start && hour < end
	}
	return hour >= start || hour < end
}
