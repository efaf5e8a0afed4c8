package main

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/and161185/shiftreport/internal/api"
	"github.com/and161185/shiftreport/internal/config"
	"github.com/and161185/shiftreport/internal/crypto/clientcrypto"
	"github.com/and161185/shiftreport/internal/draft"
	"github.com/and161185/shiftreport/internal/errs"
	"github.com/and161185/shiftreport/internal/host"
	"github.com/and161185/shiftreport/internal/logging"
	"github.com/and161185/shiftreport/internal/model"
	"github.com/and161185/shiftreport/internal/repository"
	"github.com/and161185/shiftreport/internal/repository/file"
	"github.com/and161185/shiftreport/internal/repository/sqlite"
	"github.com/and161185/shiftreport/internal/service"
)

// app holds the wired collaborators for one run.
type app struct {
	log     *zap.Logger
	bridge  host.Bridge
	drafts  *draft.Store
	auth    service.AuthService
	reports service.ReportService
}

// newApp wires logging, draft storage, the backend client and the host bridge.
// out receives terminal haptics or stand-in alerts.
func newApp(ctx context.Context, cfg *config.Config, out io.Writer) (*app, error) {
	log, err := logging.New(cfg.Log.Level, cfg.LogPath())
	if err != nil {
		return nil, err
	}

	drafts, err := openDrafts(ctx, cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}

	client := api.New(cfg.APIURL, api.WithLogger(log), api.WithTimeout(cfg.Timeout))
	return &app{
		log:     log,
		bridge:  host.Select(cfg.Bridge(), out, log),
		drafts:  drafts,
		auth:    service.NewAuthService(client, log),
		reports: service.NewReportService(client, drafts, log),
	}, nil
}

// openDrafts opens the configured draft backend sealed with the device key.
func openDrafts(ctx context.Context, cfg *config.Config, log *zap.Logger) (*draft.Store, error) {
	var key []byte
	var err error
	if cfg.Draft.Passphrase != "" {
		key, err = clientcrypto.PassphraseKey(cfg.Draft.Passphrase, config.Path("draft.salt"))
	} else {
		key, err = clientcrypto.LoadOrCreateKey(config.Path("draft.key"))
	}
	if err != nil {
		return nil, fmt.Errorf("draft key: %w", err)
	}
	sealer, err := clientcrypto.NewSealer(key)
	if err != nil {
		return nil, err
	}

	var repo repository.DraftRepository
	switch cfg.Draft.Backend {
	case config.BackendSQLite:
		db, err := sqlite.Open(ctx, config.Path("drafts.db"))
		if err != nil {
			return nil, fmt.Errorf("open drafts db: %w", err)
		}
		repo = sqlite.NewDraftRepo(db)
	default:
		repo = file.NewDraftRepo(config.Dir())
	}
	log.Debug("draft store", zap.String("backend", cfg.Draft.Backend))
	return draft.New(repo, draft.WithSealer(sealer), draft.WithLogger(log)), nil
}

// user resolves the launching user for non-interactive commands.
func (a *app) user(ctx context.Context) (*model.User, error) {
	id, ok := a.bridge.Identity()
	if !ok {
		return nil, errs.ErrNoIdentity
	}
	u, err := a.auth.Resolve(ctx, id.IDString())
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", id.IDString(), err)
	}
	return u, nil
}

// Close releases the draft store and flushes the log.
func (a *app) Close() {
	if err := a.drafts.Close(); err != nil {
		a.log.Warn("close drafts", zap.Error(err))
	}
	_ = a.log.Sync()
}
