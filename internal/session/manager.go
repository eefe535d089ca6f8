package session

import (
	"context"
	"strconv"
	"time"

	"kaizen-online/internal/config"
	"kaizen-online/internal/metrics"
	"kaizen-online/internal/models"
	"kaizen-online/internal/timer"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const storeTimeout = 2 * time.Second

// Manager owns the session of one client: creation, validity, warning and
// expiry detection, bounded extension and logout. It is not safe for
// concurrent use; every call, including its timer callbacks, must run on
// the scheduler's event loop.
type Manager struct {
	cfg   config.SessionConfig
	store *Store
	sched timer.Scheduler
	log   zerolog.Logger

	checkTimer  timer.Handle
	expiryTimer timer.Handle
	generation  uint64

	subs subscribers
}

func NewManager(cfg config.SessionConfig, store *Store, sched timer.Scheduler, log zerolog.Logger) *Manager {
	return &Manager{
		cfg:   cfg,
		store: store,
		sched: sched,
		log:   log,
	}
}

func (m *Manager) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storeTimeout)
}

func (m *Manager) load() *models.Session {
	ctx, cancel := m.opContext()
	defer cancel()
	return m.store.Load(ctx)
}

func (m *Manager) persist(sess *models.Session, withActivity bool) bool {
	ctx, cancel := m.opContext()
	defer cancel()

	if err := m.store.Save(ctx, sess); err != nil {
		m.log.Error().Err(err).Str("session_id", sess.ID.String()).Msg("session write failed; session is now absent")
		return false
	}
	if withActivity {
		if err := m.store.SaveActivity(ctx, sess.LastActivity); err != nil {
			m.log.Warn().Err(err).Str("session_id", sess.ID.String()).Msg("last activity write failed")
		}
	}
	return true
}

func (m *Manager) durationFor(rememberMe bool) time.Duration {
	if rememberMe {
		return m.cfg.RememberMeDuration
	}
	return m.cfg.SessionDuration
}

// Subscribe registers h and returns a func that removes it. Subscribers
// are called in registration order.
func (m *Manager) Subscribe(h Handlers) (unsubscribe func()) {
	id := m.subs.add(h)
	return func() { m.subs.remove(id) }
}

func (m *Manager) emit(kind EventKind, sess models.Session, remaining time.Duration) {
	m.subs.publish(Event{Kind: kind, Session: sess, Remaining: remaining})
}

// CreateSession always returns the new session and replaces any previous
// one. If the record cannot be written the session reads as absent
// afterwards: no event is emitted and nothing is monitored.
func (m *Manager) CreateSession(subjectID string, rememberMe bool) *models.Session {
	now := m.sched.Now()
	sess := &models.Session{
		ID:             uuid.New(),
		SubjectID:      subjectID,
		LoginTime:      now,
		LastActivity:   now,
		ExpiresAt:      now.Add(m.durationFor(rememberMe)),
		RememberMe:     rememberMe,
		ExtensionCount: 0,
		Status:         models.StatusActive,
	}

	if !m.persist(sess, true) {
		m.cancelTimers()
		m.generation++
		out := *sess
		return &out
	}
	metrics.SessionsCreated.WithLabelValues(strconv.FormatBool(rememberMe)).Inc()
	m.log.Info().
		Str("session_id", sess.ID.String()).
		Str("subject_id", subjectID).
		Bool("remember_me", rememberMe).
		Time("expires_at", sess.ExpiresAt).
		Msg("session created")

	m.emit(EventCreated, *sess, sess.ExpiresAt.Sub(now))
	m.StartSessionMonitoring()

	out := *sess
	return &out
}

func (m *Manager) GetCurrentSession() *models.Session {
	return m.load()
}

func (m *Manager) IsSessionValid() bool {
	sess := m.load()
	return sess != nil && m.sched.Now().Before(sess.ExpiresAt)
}

func (m *Manager) remaining(sess *models.Session) time.Duration {
	if sess == nil {
		return 0
	}
	if d := sess.ExpiresAt.Sub(m.sched.Now()); d > 0 {
		return d
	}
	return 0
}

func (m *Manager) GetRemainingTime() time.Duration {
	return m.remaining(m.load())
}

func (m *Manager) ShouldShowWarning() bool {
	r := m.GetRemainingTime()
	return r > 0 && r <= m.cfg.WarningThreshold
}

// UpdateActivity refreshes LastActivity. It never moves ExpiresAt and
// reports false when there is no session.
func (m *Manager) UpdateActivity() bool {
	sess := m.load()
	if sess == nil {
		return false
	}

	if now := m.sched.Now(); now.After(sess.LastActivity) {
		sess.LastActivity = now
	}
	return m.persist(sess, true)
}

// ExtendSession pushes ExpiresAt one full duration past now. It is rejected
// without side effects when there is no session, the session has already
// expired, or the extension cap is reached.
func (m *Manager) ExtendSession() bool {
	sess := m.load()
	if sess == nil {
		metrics.ExtensionsRejected.WithLabelValues("no_session").Inc()
		return false
	}

	now := m.sched.Now()
	if !now.Before(sess.ExpiresAt) {
		metrics.ExtensionsRejected.WithLabelValues("expired").Inc()
		m.log.Info().Str("session_id", sess.ID.String()).Msg("extension rejected: session already expired")
		return false
	}
	if sess.ExtensionCount >= m.cfg.MaxExtensions {
		metrics.ExtensionsRejected.WithLabelValues("limit").Inc()
		m.log.Info().
			Str("session_id", sess.ID.String()).
			Int("extension_count", sess.ExtensionCount).
			Msg("extension rejected: limit reached")
		return false
	}

	sess.ExpiresAt = now.Add(m.durationFor(sess.RememberMe))
	if now.After(sess.LastActivity) {
		sess.LastActivity = now
	}
	sess.ExtensionCount++
	sess.Status = models.StatusExtended

	if !m.persist(sess, true) {
		m.cancelTimers()
		return false
	}

	metrics.SessionsExtended.Inc()
	m.log.Info().
		Str("session_id", sess.ID.String()).
		Int("extension_count", sess.ExtensionCount).
		Time("expires_at", sess.ExpiresAt).
		Msg("session extended")

	m.StartSessionMonitoring()
	m.emit(EventExtended, *sess, sess.ExpiresAt.Sub(now))
	return true
}

// DestroySession cancels all timers and clears the store. Idempotent.
func (m *Manager) DestroySession() {
	m.cancelTimers()
	m.generation++

	sess := m.load()

	ctx, cancel := m.opContext()
	defer cancel()
	if err := m.store.Clear(ctx); err != nil {
		m.log.Error().Err(err).Msg("failed to clear session store")
	}

	if sess == nil {
		return
	}
	metrics.SessionsDestroyed.Inc()
	m.log.Info().Str("session_id", sess.ID.String()).Msg("session destroyed")
	m.emit(EventDestroyed, *sess, 0)
}

// StartSessionMonitoring replaces any running timers with one liveness
// check now, a recurring check every ActivityCheckInterval, and a one-shot
// check at the moment of expiry.
func (m *Manager) StartSessionMonitoring() {
	m.cancelTimers()
	m.generation++
	gen := m.generation

	if !m.check() {
		return
	}
	// A subscriber may have restarted or torn down monitoring from inside
	// check; its timers win.
	if gen != m.generation {
		return
	}
	m.checkTimer = m.sched.Every(m.cfg.ActivityCheckInterval, m.onCheckTick)
}

// Resume restarts monitoring for a record left by an earlier process.
// It reports whether a session record exists.
func (m *Manager) Resume() bool {
	if m.load() == nil {
		return false
	}
	m.StartSessionMonitoring()
	return true
}

// Stop cancels timers without touching the stored record.
func (m *Manager) Stop() {
	m.cancelTimers()
	m.generation++
}

func (m *Manager) onCheckTick() {
	m.check()
}

func (m *Manager) onExpiryTimer() {
	m.expiryTimer = 0
	m.check()
}

// check is one liveness evaluation. It reports whether the session is
// still live afterwards.
func (m *Manager) check() bool {
	sess := m.load()
	if sess == nil {
		m.cancelTimers()
		return false
	}

	now := m.sched.Now()
	if !now.Before(sess.ExpiresAt) {
		m.expire(sess)
		return false
	}

	remaining := sess.ExpiresAt.Sub(now)
	m.sched.Cancel(m.expiryTimer)
	m.expiryTimer = m.sched.After(remaining, m.onExpiryTimer)

	if remaining <= m.cfg.WarningThreshold {
		metrics.SessionWarnings.Inc()
		m.log.Debug().
			Str("session_id", sess.ID.String()).
			Dur("remaining", remaining).
			Msg("session expiring soon")
		m.emit(EventWarning, *sess, remaining)
	}
	return true
}

func (m *Manager) expire(sess *models.Session) {
	m.cancelTimers()

	if sess.Status != models.StatusExpired {
		sess.Status = models.StatusExpired
		m.persist(sess, false)
		metrics.SessionsExpired.Inc()
		m.log.Info().Str("session_id", sess.ID.String()).Msg("session expired")
	}
	m.emit(EventExpired, *sess, 0)
}

func (m *Manager) cancelTimers() {
	m.sched.Cancel(m.checkTimer)
	m.sched.Cancel(m.expiryTimer)
	m.checkTimer = 0
	m.expiryTimer = 0
}

// GetSessionInfo is the UI read model. The reported status reflects the
// warning window and expiry even though those are not persisted as such.
func (m *Manager) GetSessionInfo() models.SessionInfo {
	info := models.SessionInfo{
		WarningThresholdMs:  m.cfg.WarningThreshold.Milliseconds(),
		UIRefreshIntervalMs: m.cfg.UIRefreshInterval.Milliseconds(),
	}

	sess := m.load()
	if sess == nil {
		return info
	}

	remaining := m.remaining(sess)
	info.Session = sess
	info.Valid = remaining > 0
	info.RemainingMs = remaining.Milliseconds()
	info.ShowWarning = remaining > 0 && remaining <= m.cfg.WarningThreshold
	info.ExtensionsLeft = max(0, m.cfg.MaxExtensions-sess.ExtensionCount)

	switch {
	case !info.Valid:
		sess.Status = models.StatusExpired
	case info.ShowWarning:
		sess.Status = models.StatusWarning
	}
	return info
}
