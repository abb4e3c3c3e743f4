// Package poll keeps widget data fresh in the background: one ticker per
// configured widget at that widget's refresh interval, reconciled live
// against dashboard changes.
package poll

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ewhitfield/stockdeck-backend/internal/dto"
	"github.com/ewhitfield/stockdeck-backend/internal/models"
)

type renderer interface {
	Render(ctx context.Context, uid string, w *models.Widget) dto.WidgetData
}

type dashboardWatcher interface {
	SubscribeAll(ctx context.Context, fn func(uid string, d *models.Dashboard)) error
}

// fetchTimeout bounds one poll fetch. An expired fetch simply waits for the
// widget's next tick.
const fetchTimeout = 30 * time.Second

type pollKey struct {
	uid      string
	widgetID string
}

type loop struct {
	cancel context.CancelFunc
	// interval and endpoint identify the configuration the loop was
	// started for; a change restarts the loop.
	interval time.Duration
	config   string
}

// Manager owns the per-widget poll loops and an in-memory cache of the
// latest render per widget.
type Manager struct {
	renderer renderer
	watcher  dashboardWatcher
	log      *slog.Logger

	mu     sync.Mutex
	loops  map[pollKey]*loop
	latest map[pollKey]dto.WidgetData
	// busy marks widgets with a fetch in flight; a tick that finds its
	// widget busy is skipped.
	busy map[pollKey]bool

	wg sync.WaitGroup
}

func NewManager(renderer renderer, watcher dashboardWatcher, log *slog.Logger) *Manager {
	return &Manager{
		renderer: renderer,
		watcher:  watcher,
		log:      log,
		loops:    make(map[pollKey]*loop),
		latest:   make(map[pollKey]dto.WidgetData),
		busy:     make(map[pollKey]bool),
	}
}

// Run subscribes to dashboard changes and reconciles poll loops until ctx
// is canceled. It blocks.
func (m *Manager) Run(ctx context.Context) error {
	defer m.stopAll()
	return m.watcher.SubscribeAll(ctx, func(uid string, d *models.Dashboard) {
		m.reconcile(ctx, uid, d)
	})
}

// Latest returns the cached render for a widget, if any poll completed yet.
func (m *Manager) Latest(uid, widgetID string) (dto.WidgetData, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.latest[pollKey{uid: uid, widgetID: widgetID}]
	return data, ok
}

// reconcile aligns running loops with the dashboard snapshot: new widgets
// get loops, removed widgets lose theirs, reconfigured widgets restart.
// An empty dashboard tears every loop for that user down.
func (m *Manager) reconcile(ctx context.Context, uid string, d *models.Dashboard) {
	m.mu.Lock()
	defer m.mu.Unlock()

	want := make(map[pollKey]*models.Widget, len(d.Widgets))
	for i := range d.Widgets {
		w := &d.Widgets[i]
		want[pollKey{uid: uid, widgetID: w.WidgetID}] = w
	}

	for key, l := range m.loops {
		if key.uid != uid {
			continue
		}
		w, keep := want[key]
		if keep && l.interval == refreshOf(w) && l.config == configOf(w) {
			delete(want, key)
			continue
		}
		l.cancel()
		delete(m.loops, key)
		if !keep {
			delete(m.latest, key)
			m.log.Info("stopped polling removed widget", "uid", uid, "widget_id", key.widgetID)
		}
	}

	for key, w := range want {
		m.startLocked(ctx, key, w)
	}
}

func (m *Manager) startLocked(ctx context.Context, key pollKey, w *models.Widget) {
	loopCtx, cancel := context.WithCancel(ctx)
	m.loops[key] = &loop{
		cancel:   cancel,
		interval: refreshOf(w),
		config:   configOf(w),
	}
	widget := *w
	m.wg.Add(1)
	go m.run(loopCtx, key, &widget)
}

// run is one widget's poll loop: fetch immediately, then on every tick. A
// tick that arrives while the previous fetch is still in flight is skipped;
// there is no retry between ticks.
func (m *Manager) run(ctx context.Context, key pollKey, w *models.Widget) {
	defer m.wg.Done()
	ticker := time.NewTicker(refreshOf(w))
	defer ticker.Stop()

	m.poll(ctx, key, w)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.poll(ctx, key, w)
		}
	}
}

func (m *Manager) poll(ctx context.Context, key pollKey, w *models.Widget) {
	m.mu.Lock()
	if m.busy[key] {
		m.mu.Unlock()
		m.log.Debug("skipping tick, fetch in flight", "uid", key.uid, "widget_id", key.widgetID)
		return
	}
	m.busy[key] = true
	m.mu.Unlock()

	// The fetch runs under its own timeout, not the loop context, so
	// teardown stops future ticks without aborting a request mid-flight.
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
	data := m.renderer.Render(fetchCtx, key.uid, w)
	cancel()

	m.mu.Lock()
	m.latest[key] = data
	delete(m.busy, key)
	m.mu.Unlock()

	if data.State != dto.StateOK {
		m.log.Warn("poll produced error state",
			"uid", key.uid, "widget_id", key.widgetID, "state", data.State, "message", data.Message)
	}
}

func (m *Manager) stopAll() {
	m.mu.Lock()
	for key, l := range m.loops {
		l.cancel()
		delete(m.loops, key)
	}
	m.mu.Unlock()
	m.wg.Wait()
}

func refreshOf(w *models.Widget) time.Duration {
	if w.RefreshInterval <= 0 {
		return time.Minute
	}
	return time.Duration(w.RefreshInterval) * time.Second
}

// configOf fingerprints the parts of a widget whose change requires a loop
// restart.
func configOf(w *models.Widget) string {
	return w.APIEndpoint + "\x00" + w.CredentialID + "\x00" + w.Type
}
