package bridge

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/flowbridge/flowbridge/pkg/models"
)

// DefaultDebounce is the delay between a local edit and the outbound post.
const DefaultDebounce = 500 * time.Millisecond

// Notifier debounces outbound update posts. Rapid successive edits collapse
// into one post, and a post is skipped entirely when the serialized payload
// matches the last one sent.
type Notifier struct {
	bridge *Bridge
	delay  time.Duration
	logger *slog.Logger

	mu         sync.Mutex
	timer      *time.Timer
	pending    *models.Workflow
	lastPosted []byte
}

// NewNotifier creates a notifier posting through bridge after delay.
func NewNotifier(bridge *Bridge, delay time.Duration, logger *slog.Logger) *Notifier {
	if delay <= 0 {
		delay = DefaultDebounce
	}

	return &Notifier{
		bridge: bridge,
		delay:  delay,
		logger: logger,
	}
}

// Notify schedules an update post for doc, replacing any pending one.
func (n *Notifier) Notify(ctx context.Context, doc *models.Workflow) {
	if !n.bridge.Enabled() {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.pending = doc

	if n.timer != nil {
		n.timer.Stop()
	}

	n.timer = time.AfterFunc(n.delay, func() {
		n.flush(ctx)
	})
}

// Flush posts the pending document immediately, if any.
func (n *Notifier) Flush(ctx context.Context) {
	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.mu.Unlock()

	n.flush(ctx)
}

func (n *Notifier) flush(ctx context.Context) {
	n.mu.Lock()
	doc := n.pending
	n.pending = nil
	n.mu.Unlock()

	if doc == nil {
		return
	}

	snapshot, err := json.Marshal(Serialize(doc))
	if err != nil {
		// Serialize already degraded to a transferable form; this only
		// happens for a nil document.
		return
	}

	n.mu.Lock()
	unchanged := n.lastPosted != nil && string(n.lastPosted) == string(snapshot)
	n.mu.Unlock()

	if unchanged {
		return
	}

	if err := n.bridge.PostUpdate(ctx, doc, false, nil, nil); err != nil {
		n.logger.ErrorContext(ctx, "Failed to post workflow update to host", "name", doc.Name, "error", err)

		return
	}

	n.mu.Lock()
	n.lastPosted = snapshot
	n.mu.Unlock()
}
