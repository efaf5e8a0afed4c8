// Package draft keeps the single in-progress report payload in durable local storage.
package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/shiftreport/internal/crypto/clientcrypto"
	"github.com/and161185/shiftreport/internal/errs"
	"github.com/and161185/shiftreport/internal/model"
	"github.com/and161185/shiftreport/internal/repository"
)

// Key names the only draft entry.
const Key = "driver_report_draft"

const dateLayout = "2006-01-02"

// Store loads, saves and resets the draft. It has exactly one writer (the active form).
type Store struct {
	repo   repository.DraftRepository
	sealer *clientcrypto.Sealer
	now    func() time.Time
	log    *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithSealer encrypts entries at rest.
func WithSealer(s *clientcrypto.Sealer) Option { return func(st *Store) { st.sealer = s } }

// WithClock overrides time.Now (used for the default date).
func WithClock(now func() time.Time) Option { return func(st *Store) { st.now = now } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(st *Store) {
		if l != nil {
			st.log = l
		}
	}
}

// New constructs a Store over repo.
func New(repo repository.DraftRepository, opts ...Option) *Store {
	s := &Store{repo: repo, now: time.Now, log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Default returns the empty payload dated today.
func Default(now time.Time) model.ReportPayload {
	return model.ReportPayload{Date: now.Format(dateLayout)}
}

// Default returns the empty payload for the store's clock.
func (s *Store) Default() model.ReportPayload { return Default(s.now()) }

// Load returns the payload to seed the form with. While editing, the draft is
// bypassed and the report's own payload is returned as is. A stored entry that
// cannot be read back is discarded.
func (s *Store) Load(ctx context.Context, editing *model.Report) model.ReportPayload {
	if editing != nil {
		return editing.Payload
	}
	def := s.Default()

	raw, err := s.repo.Get(ctx, Key)
	if errors.Is(err, errs.ErrNotFound) {
		return def
	}
	if err != nil {
		s.log.Warn("draft read failed", zap.Error(err))
		return def
	}

	p, err := s.decode(raw, def)
	if err != nil {
		s.log.Warn("discarding draft", zap.Error(err))
		if derr := s.repo.Delete(ctx, Key); derr != nil {
			s.log.Warn("draft delete failed", zap.Error(derr))
		}
		return def
	}
	return p
}

// decode unseals raw and merges it over def: keys absent from the stored JSON keep defaults.
func (s *Store) decode(raw []byte, def model.ReportPayload) (model.ReportPayload, error) {
	if s.sealer != nil {
		plain, err := s.sealer.Open(Key, raw)
		if err != nil {
			return def, fmt.Errorf("%w: unseal: %v", errs.ErrCorruptDraft, err)
		}
		raw = plain
	}
	p := def
	if err := json.Unmarshal(raw, &p); err != nil {
		return def, fmt.Errorf("%w: %v", errs.ErrCorruptDraft, err)
	}
	return p, nil
}

// Save overwrites the draft with p. It does nothing while a report is being edited.
func (s *Store) Save(ctx context.Context, p model.ReportPayload, editing bool) error {
	if editing {
		return nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if s.sealer != nil {
		if b, err = s.sealer.Seal(Key, b); err != nil {
			return fmt.Errorf("seal draft: %w", err)
		}
	}
	return s.repo.Put(ctx, Key, b)
}

// Reset removes the draft and returns the default payload.
func (s *Store) Reset(ctx context.Context) model.ReportPayload {
	if err := s.repo.Delete(ctx, Key); err != nil {
		s.log.Warn("draft delete failed", zap.Error(err))
	}
	return s.Default()
}

// Close releases the underlying repository.
func (s *Store) Close() error { return s.repo.Close() }
