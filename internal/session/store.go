package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"kaizen-online/internal/metrics"
	"kaizen-online/internal/models"
	"kaizen-online/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	sessionKey  = "kaizen_session"
	activityKey = "kaizen_last_activity"
)

// Store persists the single session record of one client and its
// last-activity scalar.
type Store struct {
	kv        storage.KV
	namespace string
	log       zerolog.Logger
}

func NewStore(kv storage.KV, namespace string, log zerolog.Logger) *Store {
	return &Store{kv: kv, namespace: namespace, log: log}
}

func (s *Store) key(name string) string {
	return s.namespace + ":" + name
}

// Save overwrites the record. On a failed write the old record is removed
// as well, so a later Load reports the session as absent.
func (s *Store) Save(ctx context.Context, sess *models.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.kv.Set(ctx, s.key(sessionKey), data); err != nil {
		metrics.StoreErrors.WithLabelValues("save").Inc()
		_ = s.kv.Delete(ctx, s.key(sessionKey))
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load returns nil when the record is missing, unreadable or corrupt.
func (s *Store) Load(ctx context.Context) *models.Session {
	data, err := s.kv.Get(ctx, s.key(sessionKey))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			metrics.StoreErrors.WithLabelValues("load").Inc()
			s.log.Error().Err(err).Msg("failed to read session record")
		}
		return nil
	}

	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		s.log.Warn().Err(err).Msg("ignoring corrupt session record")
		return nil
	}
	if sess.ID == uuid.Nil || sess.ExpiresAt.IsZero() {
		s.log.Warn().Msg("ignoring incomplete session record")
		return nil
	}

	return &sess
}

func (s *Store) SaveActivity(ctx context.Context, at time.Time) error {
	value := strconv.FormatInt(at.UnixMilli(), 10)
	if err := s.kv.Set(ctx, s.key(activityKey), []byte(value)); err != nil {
		metrics.StoreErrors.WithLabelValues("save_activity").Inc()
		return fmt.Errorf("failed to save last activity: %w", err)
	}
	return nil
}

func (s *Store) LoadActivity(ctx context.Context) (time.Time, bool) {
	data, err := s.kv.Get(ctx, s.key(activityKey))
	if err != nil {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		s.log.Warn().Err(err).Msg("ignoring corrupt last activity value")
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// Clear removes the record and the activity scalar.
func (s *Store) Clear(ctx context.Context) error {
	errSession := s.kv.Delete(ctx, s.key(sessionKey))
	errActivity := s.kv.Delete(ctx, s.key(activityKey))
	if err := errors.Join(errSession, errActivity); err != nil {
		metrics.StoreErrors.WithLabelValues("clear").Inc()
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
