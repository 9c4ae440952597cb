package tracking

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/Madhav-Gupta-28/estatehub-backend-go/models"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/store"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/tasks"
	"go.uber.org/zap"
)

// DeriveSessionID fingerprints a browser session. Equal inputs always give
// the same id.
func DeriveSessionID(userAgent, ip string, firstSeen time.Time) string {
	sum := sha256.Sum256([]byte(userAgent + "|" + ip + "|" + strconv.FormatInt(firstSeen.UnixNano(), 10)))
	return hex.EncodeToString(sum[:])
}

type Tracker struct {
	queue  tasks.Submitter
	store  store.InteractionStore
	logger *zap.Logger
}

func NewTracker(queue tasks.Submitter, interactions store.InteractionStore, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{queue: queue, store: interactions, logger: logger}
}

// Record persists the event in the background. It never blocks the caller
// and reports whether the event was queued.
func (t *Tracker) Record(event models.Interaction) bool {
	if event.User.IsZero() {
		return false
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	ok := t.queue.Submit("track", func(ctx context.Context) error {
		return t.store.Insert(ctx, &event)
	})
	if !ok {
		t.logger.Debug("interaction not recorded", zap.String("action", event.Action))
	}
	return ok
}
