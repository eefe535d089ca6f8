package session

import (
	"context"
	"testing"
	"time"

	"kaizen-online/internal/config"
	"kaizen-online/internal/models"
	"kaizen-online/internal/storage"
	"kaizen-online/internal/timer"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type harness struct {
	clock   *timer.Fake
	kv      *storage.MemoryStorage
	store   *Store
	manager *Manager
	events  []Event
}

func newHarness(t *testing.T, cfg config.SessionConfig) *harness {
	t.Helper()

	kv := storage.NewMemoryStorage(0)
	t.Cleanup(func() { _ = kv.Close() })

	h := &harness{
		clock: timer.NewFake(testStart),
		kv:    kv,
	}
	h.store = NewStore(kv, "client-1", zerolog.Nop())
	h.manager = NewManager(cfg, h.store, h.clock, zerolog.Nop())
	h.manager.Subscribe(HandlerFunc(func(ev Event) { h.events = append(h.events, ev) }))
	return h
}

func (h *harness) count(kind EventKind) int {
	n := 0
	for _, ev := range h.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func TestCreateSession(t *testing.T) {
	h := newHarness(t, config.DefaultSessionConfig())

	sess := h.manager.CreateSession("E001", false)
	require.NotNil(t, sess)
	require.Equal(t, "E001", sess.SubjectID)
	require.Equal(t, models.StatusActive, sess.Status)
	require.Zero(t, sess.ExtensionCount)
	require.True(t, sess.ExpiresAt.Equal(testStart.Add(30*time.Minute)))

	require.True(t, h.manager.IsSessionValid())
	require.Equal(t, 30*time.Minute, h.manager.GetRemainingTime())
	require.False(t, h.manager.ShouldShowWarning())
	require.Equal(t, 1, h.count(EventCreated))

	stored := h.manager.GetCurrentSession()
	require.NotNil(t, stored)
	require.Equal(t, sess.ID, stored.ID)

	at, ok := h.store.LoadActivity(context.Background())
	require.True(t, ok)
	require.Equal(t, testStart.UnixMilli(), at.UnixMilli())
}

func TestCreateSession_RememberMe(t *testing.T) {
	h := newHarness(t, config.DefaultSessionConfig())

	sess := h.manager.CreateSession("E001", true)
	require.True(t, sess.RememberMe)
	require.Equal(t, 7*24*time.Hour, h.manager.GetRemainingTime())
}

func TestCreateSession_ReplacesPrevious(t *testing.T) {
	h := newHarness(t, config.DefaultSessionConfig())

	first := h.manager.CreateSession("E001", false)
	h.clock.Advance(10 * time.Minute)
	second := h.manager.CreateSession("E002", false)

	require.NotEqual(t, first.ID, second.ID)
	current := h.manager.GetCurrentSession()
	require.Equal(t, second.ID, current.ID)
	require.Equal(t, 30*time.Minute, h.manager.GetRemainingTime())

	oneShot, recurring := h.clock.Pending()
	require.Equal(t, 1, oneShot)
	require.Equal(t, 1, recurring)
}

func TestValidityBoundary(t *testing.T) {
	h := newHarness(t, config.DefaultSessionConfig())
	h.manager.CreateSession("E001", false)

	h.clock.Advance(30*time.Minute - time.Millisecond)
	require.True(t, h.manager.IsSessionValid())
	require.Equal(t, time.Millisecond, h.manager.GetRemainingTime())
	require.Zero(t, h.count(EventExpired))

	h.clock.Advance(2 * time.Millisecond)
	require.False(t, h.manager.IsSessionValid())
	require.Zero(t, h.manager.GetRemainingTime())
	require.Equal(t, 1, h.count(EventExpired))
}

func TestExpiryTimerFiresBetweenChecks(t *testing.T) {
	cfg := config.DefaultSessionConfig()
	cfg.ActivityCheckInterval = 7 * time.Minute
	h := newHarness(t, cfg)
	h.manager.CreateSession("E001", false)

	// Checks land on 7, 14, 21 and 28 minutes; expiry at 30 comes from the
	// one-shot timer alone.
	h.clock.Advance(30 * time.Minute)
	require.Equal(t, 1, h.count(EventExpired))

	stored := h.manager.GetCurrentSession()
	require.NotNil(t, stored)
	require.Equal(t, models.StatusExpired, stored.Status)

	oneShot, recurring := h.clock.Pending()
	require.Zero(t, oneShot)
	require.Zero(t, recurring)
}

func TestWarningFiresOncePerCheckInWindow(t *testing.T) {
	h := newHarness(t, config.DefaultSessionConfig())
	h.manager.CreateSession("E001", false)

	h.clock.Advance(24 * time.Minute)
	require.Zero(t, h.count(EventWarning))

	h.clock.Advance(time.Minute)
	require.Equal(t, 1, h.count(EventWarning))
	require.Equal(t, 5*time.Minute, h.events[len(h.events)-1].Remaining)

	h.clock.Advance(4 * time.Minute)
	require.Equal(t, 5, h.count(EventWarning))
}

func TestExtensionCap(t *testing.T) {
	h := newHarness(t, config.DefaultSessionConfig())
	h.manager.CreateSession("E001", false)

	for i := 1; i <= 3; i++ {
		h.clock.Advance(time.Minute)
		require.True(t, h.manager.ExtendSession())
		require.Equal(t, i, h.manager.GetCurrentSession().ExtensionCount)
	}

	before := h.manager.GetCurrentSession()
	h.clock.Advance(time.Minute)
	require.False(t, h.manager.ExtendSession())

	after := h.manager.GetCurrentSession()
	require.Equal(t, 3, after.ExtensionCount)
	require.True(t, before.ExpiresAt.Equal(after.ExpiresAt))
	require.Equal(t, 3, h.count(EventExtended))
}

func TestExtendSession_ZeroCap(t *testing.T) {
	cfg := config.DefaultSessionConfig()
	cfg.MaxExtensions = 0
	h := newHarness(t, cfg)
	h.manager.CreateSession("E001", false)

	require.False(t, h.manager.ExtendSession())
	require.Zero(t, h.manager.GetSessionInfo().ExtensionsLeft)
}

func TestExtendSession_NoSession(t *testing.T) {
	h := newHarness(t, config.DefaultSessionConfig())
	require.False(t, h.manager.ExtendSession())
	require.Nil(t, h.manager.GetCurrentSession())
}

func TestExtendSession_RejectsExpiredBeforeReap(t *testing.T) {
	h := newHarness(t, config.DefaultSessionConfig())
	h.manager.CreateSession("E001", false)

	// Without timers nothing reaps the session.
	h.manager.Stop()
	h.clock.Advance(31 * time.Minute)

	before := h.manager.GetCurrentSession()
	require.NotNil(t, before)
	require.False(t, h.manager.ExtendSession())

	after := h.manager.GetCurrentSession()
	require.Zero(t, after.ExtensionCount)
	require.True(t, before.ExpiresAt.Equal(after.ExpiresAt))
	require.False(t, h.manager.IsSessionValid())
}

func TestDestroySession_Idempotent(t *testing.T) {
	h := newHarness(t, config.DefaultSessionConfig())
	h.manager.CreateSession("E001", false)

	h.manager.DestroySession()
	require.Nil(t, h.manager.GetCurrentSession())
	require.Zero(t, h.kv.Len())

	h.manager.DestroySession()
	require.Nil(t, h.manager.GetCurrentSession())
	require.Equal(t, 1, h.count(EventDestroyed))

	oneShot, recurring := h.clock.Pending()
	require.Zero(t, oneShot)
	require.Zero(t, recurring)

	// Nothing fires after logout.
	h.clock.Advance(time.Hour)
	require.Zero(t, h.count(EventExpired))
	require.Zero(t, h.count(EventWarning))
}

func TestUpdateActivity_NoSession(t *testing.T) {
	h := newHarness(t, config.DefaultSessionConfig())

	require.False(t, h.manager.UpdateActivity())
	require.Nil(t, h.manager.GetCurrentSession())
	require.Zero(t, h.kv.Len())
}

func TestUpdateActivity_DoesNotMoveExpiry(t *testing.T) {
	h := newHarness(t, config.DefaultSessionConfig())
	created := h.manager.CreateSession("E001", false)

	h.clock.Advance(10 * time.Minute)
	require.True(t, h.manager.UpdateActivity())

	sess := h.manager.GetCurrentSession()
	require.True(t, sess.LastActivity.Equal(testStart.Add(10*time.Minute)))
	require.True(t, sess.ExpiresAt.Equal(created.ExpiresAt))
}

func TestUpdateActivity_Monotonic(t *testing.T) {
	h := newHarness(t, config.DefaultSessionConfig())
	h.manager.CreateSession("E001", false)

	future := testStart.Add(5 * time.Minute)
	sess := h.manager.GetCurrentSession()
	sess.LastActivity = future
	require.NoError(t, h.store.Save(context.Background(), sess))

	var last time.Time
	for i := 0; i < 4; i++ {
		h.clock.Advance(time.Minute)
		require.True(t, h.manager.UpdateActivity())
		got := h.manager.GetCurrentSession().LastActivity
		require.False(t, got.Before(last))
		last = got
	}
	require.True(t, last.Equal(future))

	h.clock.Advance(2 * time.Minute)
	require.True(t, h.manager.UpdateActivity())
	require.True(t, h.manager.GetCurrentSession().LastActivity.After(future))
}

func TestSingleActiveTimer(t *testing.T) {
	h := newHarness(t, config.DefaultSessionConfig())
	h.manager.CreateSession("E001", false)

	for i := 0; i < 3; i++ {
		h.manager.StartSessionMonitoring()
		h.clock.Advance(30 * time.Second)
		h.manager.ExtendSession()
		h.manager.StartSessionMonitoring()
	}

	oneShot, recurring := h.clock.Pending()
	require.Equal(t, 1, oneShot)
	require.Equal(t, 1, recurring)
}

func TestSingleActiveTimer_ExtendFromWarningHandler(t *testing.T) {
	h := newHarness(t, config.DefaultSessionConfig())
	h.manager.Subscribe(Handlers{
		OnWarning: func(Event) { h.manager.ExtendSession() },
	})
	h.manager.CreateSession("E001", false)

	h.clock.Advance(25 * time.Minute)
	require.Equal(t, 1, h.count(EventExtended))
	require.Equal(t, 30*time.Minute, h.manager.GetRemainingTime())

	oneShot, recurring := h.clock.Pending()
	require.Equal(t, 1, oneShot)
	require.Equal(t, 1, recurring)
}

func TestSingleActiveTimer_ExtendDuringMonitoringStart(t *testing.T) {
	h := newHarness(t, config.DefaultSessionConfig())
	h.manager.CreateSession("E001", false)
	h.manager.Stop()
	h.clock.Advance(27 * time.Minute)

	extended := false
	h.manager.Subscribe(Handlers{
		OnWarning: func(Event) {
			if !extended {
				extended = true
				h.manager.ExtendSession()
			}
		},
	})

	// The first check lands in the warning window and the handler restarts
	// monitoring from inside it.
	h.manager.StartSessionMonitoring()
	require.True(t, extended)

	oneShot, recurring := h.clock.Pending()
	require.Equal(t, 1, oneShot)
	require.Equal(t, 1, recurring)
}

func TestSubscribe_OrderAndUnsubscribe(t *testing.T) {
	h := newHarness(t, config.DefaultSessionConfig())

	var order []string
	h.manager.Subscribe(Handlers{OnCreated: func(Event) { order = append(order, "a") }})
	unsubscribe := h.manager.Subscribe(Handlers{OnCreated: func(Event) { order = append(order, "b") }})
	h.manager.Subscribe(Handlers{OnCreated: func(Event) { order = append(order, "c") }})

	h.manager.CreateSession("E001", false)
	require.Equal(t, []string{"a", "b", "c"}, order)

	unsubscribe()
	order = nil
	h.manager.CreateSession("E001", false)
	require.Equal(t, []string{"a", "c"}, order)
}

func TestGetSessionInfo(t *testing.T) {
	h := newHarness(t, config.DefaultSessionConfig())

	info := h.manager.GetSessionInfo()
	require.Nil(t, info.Session)
	require.False(t, info.Valid)
	require.Equal(t, int64(300000), info.WarningThresholdMs)
	require.Equal(t, int64(1000), info.UIRefreshIntervalMs)

	h.manager.CreateSession("E001", false)
	h.manager.ExtendSession()

	info = h.manager.GetSessionInfo()
	require.True(t, info.Valid)
	require.Equal(t, 2, info.ExtensionsLeft)
	require.Equal(t, models.StatusExtended, info.Session.Status)

	h.clock.Advance(26 * time.Minute)
	info = h.manager.GetSessionInfo()
	require.True(t, info.ShowWarning)
	require.Equal(t, (4 * time.Minute).Milliseconds(), info.RemainingMs)
	require.Equal(t, models.StatusWarning, info.Session.Status)

	// The warning is reported, not stored.
	require.Equal(t, models.StatusExtended, h.manager.GetCurrentSession().Status)
}

func TestResume_ExpiredRecord(t *testing.T) {
	h := newHarness(t, config.DefaultSessionConfig())
	h.manager.CreateSession("E001", false)
	h.manager.Stop()
	h.clock.Advance(time.Hour)

	restarted := NewManager(config.DefaultSessionConfig(), h.store, h.clock, zerolog.Nop())
	var expired []Event
	restarted.Subscribe(Handlers{OnExpired: func(ev Event) { expired = append(expired, ev) }})

	require.True(t, restarted.Resume())
	require.Len(t, expired, 1)
	require.Equal(t, models.StatusExpired, restarted.GetCurrentSession().Status)

	oneShot, recurring := h.clock.Pending()
	require.Zero(t, oneShot)
	require.Zero(t, recurring)
}

func TestResume_NoRecord(t *testing.T) {
	h := newHarness(t, config.DefaultSessionConfig())
	require.False(t, h.manager.Resume())

	oneShot, recurring := h.clock.Pending()
	require.Zero(t, oneShot)
	require.Zero(t, recurring)
}

func TestCorruptRecordIsAbsent(t *testing.T) {
	h := newHarness(t, config.DefaultSessionConfig())
	require.NoError(t, h.kv.Set(context.Background(), "client-1:kaizen_session", []byte("{not json")))

	require.Nil(t, h.manager.GetCurrentSession())
	require.False(t, h.manager.IsSessionValid())
	require.False(t, h.manager.UpdateActivity())
	require.False(t, h.manager.ExtendSession())
}

func TestWriteFailureDegradesToAbsent(t *testing.T) {
	mem := storage.NewMemoryStorage(0)
	t.Cleanup(func() { _ = mem.Close() })
	kv := &failingKV{KV: mem}
	clock := timer.NewFake(testStart)
	m := NewManager(config.DefaultSessionConfig(), NewStore(kv, "client-1", zerolog.Nop()), clock, zerolog.Nop())

	m.CreateSession("E001", false)
	require.NotNil(t, m.GetCurrentSession())

	kv.failSet = true
	require.False(t, m.UpdateActivity())
	require.Nil(t, m.GetCurrentSession())
	require.False(t, m.IsSessionValid())

	// A stale timer finds nothing and stands down.
	clock.Advance(time.Minute)
	oneShot, recurring := clock.Pending()
	require.Zero(t, oneShot)
	require.Zero(t, recurring)
}

func TestCreateSession_WriteFailure(t *testing.T) {
	mem := storage.NewMemoryStorage(0)
	t.Cleanup(func() { _ = mem.Close() })
	kv := &failingKV{KV: mem, failSet: true}
	clock := timer.NewFake(testStart)
	m := NewManager(config.DefaultSessionConfig(), NewStore(kv, "client-1", zerolog.Nop()), clock, zerolog.Nop())

	var events []Event
	m.Subscribe(HandlerFunc(func(ev Event) { events = append(events, ev) }))

	sess := m.CreateSession("E001", false)
	require.NotNil(t, sess)
	require.Nil(t, m.GetCurrentSession())
	require.False(t, m.IsSessionValid())
	require.Empty(t, events)

	oneShot, recurring := clock.Pending()
	require.Zero(t, oneShot)
	require.Zero(t, recurring)
}

func TestScenario_FullLifecycle(t *testing.T) {
	h := newHarness(t, config.DefaultSessionConfig())

	h.manager.CreateSession("E001", false)
	require.True(t, h.manager.IsSessionValid())
	require.Equal(t, 30*time.Minute, h.manager.GetRemainingTime())

	h.clock.Advance(26 * time.Minute)
	require.True(t, h.manager.ShouldShowWarning())
	require.Equal(t, 4*time.Minute, h.manager.GetRemainingTime())

	require.True(t, h.manager.ExtendSession())
	sess := h.manager.GetCurrentSession()
	require.Equal(t, 1, sess.ExtensionCount)
	require.Equal(t, models.StatusExtended, sess.Status)
	require.Equal(t, 30*time.Minute, h.manager.GetRemainingTime())

	h.clock.Advance(31 * time.Minute)
	require.False(t, h.manager.IsSessionValid())
	require.Equal(t, 1, h.count(EventExpired))

	h.clock.Advance(10 * time.Minute)
	require.Equal(t, 1, h.count(EventExpired))

	h.manager.DestroySession()
	require.Nil(t, h.manager.GetCurrentSession())
	require.False(t, h.manager.IsSessionValid())
}
