package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ewhitfield/stockdeck-backend/internal/models"
)

const autosaveDebounce = time.Second

type layoutPersister interface {
	SaveLayout(ctx context.Context, uid string, layout []models.LayoutItem) error
}

// LayoutSaver coalesces bursts of layout changes (drag and resize emit many)
// into one write per user per debounce window. A failed flush keeps the
// pending snapshot so the next tick retries it; newer snapshots always win
// over older pending ones.
type LayoutSaver struct {
	svc      layoutPersister
	log      *slog.Logger
	debounce time.Duration

	mu      sync.Mutex
	pending map[string][]models.LayoutItem
	timer   *time.Timer
}

func NewLayoutSaver(svc layoutPersister, log *slog.Logger) *LayoutSaver {
	return &LayoutSaver{
		svc:      svc,
		log:      log,
		debounce: autosaveDebounce,
		pending:  make(map[string][]models.LayoutItem),
	}
}

// Queue records the user's latest layout and arms the flush timer if it is
// not already armed. Later Queue calls within the window replace the
// snapshot without postponing the flush.
func (s *LayoutSaver) Queue(uid string, layout []models.LayoutItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[uid] = layout
	if s.timer == nil {
		s.timer = time.AfterFunc(s.debounce, s.flush)
	}
}

func (s *LayoutSaver) flush() {
	s.mu.Lock()
	batch := s.pending
	s.pending = make(map[string][]models.LayoutItem)
	s.timer = nil
	s.mu.Unlock()

	ctx := context.Background()
	for uid, layout := range batch {
		if err := s.svc.SaveLayout(ctx, uid, layout); err != nil {
			s.log.Error("layout autosave failed, retrying next flush", "uid", uid, "error", err)
			s.retain(uid, layout)
		}
	}
}

// retain puts a failed snapshot back unless a newer one arrived meanwhile.
func (s *LayoutSaver) retain(uid string, layout []models.LayoutItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[uid]; !ok {
		s.pending[uid] = layout
	}
	if s.timer == nil {
		s.timer = time.AfterFunc(s.debounce, s.flush)
	}
}

// Flush writes everything pending immediately. Called on shutdown.
func (s *LayoutSaver) Flush(ctx context.Context) {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	batch := s.pending
	s.pending = make(map[string][]models.LayoutItem)
	s.mu.Unlock()

	for uid, layout := range batch {
		if err := s.svc.SaveLayout(ctx, uid, layout); err != nil {
			s.log.Error("final layout flush failed", "uid", uid, "error", err)
		}
	}
}
