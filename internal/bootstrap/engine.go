// Package bootstrap wires the batch engine's gateways, use cases, and
// HTTP surface together, the way the teacher's bootstrap.NewHTTPServer
// wires ImportJobRepository/UserBulkImportRepository into handlers.
package bootstrap

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/genai"

	appbatch "github.com/mohammadpnp/resumebatch/internal/application/batch"
	domain "github.com/mohammadpnp/resumebatch/internal/domain/batch"
	"github.com/mohammadpnp/resumebatch/internal/infrastructure/analyzer"
	"github.com/mohammadpnp/resumebatch/internal/infrastructure/objectstore"
	"github.com/mohammadpnp/resumebatch/internal/metrics"
)

// Engine bundles the running components a process needs to stop
// cleanly: the Controller the HTTP/CLI surface calls into, the
// Watchdog background loop, and the collaborators startWorker needs
// to spin up a Worker per batch.
type Engine struct {
	Controller *appbatch.Controller
	Watchdog   *appbatch.Watchdog
	Recorder   *metrics.Recorder

	analyzer domain.Analyzer
	logger   *zap.Logger
	cfg      appbatch.EngineConfig
}

// NewEngine constructs an Engine from already-opened collaborators,
// mirroring the teacher's cmd/api/main.go style of building gateways
// inline and handing them to the wiring layer.
func NewEngine(
	store domain.StateStore,
	objects *objectstore.BlobGateway,
	genaiClient *genai.Client,
	geminiModel string,
	recorder *metrics.Recorder,
	logger *zap.Logger,
	engineCfg appbatch.EngineConfig,
) *Engine {
	an := analyzer.NewGeminiAnalyzer(genaiClient, geminiModel, objects)

	controller := &appbatch.Controller{
		Store:  store,
		Object: objects,
		Cfg:    engineCfg,
	}

	watchdog := appbatch.NewWatchdog(appbatch.WatchdogDeps{
		Store:      store,
		Logger:     logger,
		OnRecovery: recorder.OnWatchdogRecovery,
	}, engineCfg)

	e := &Engine{
		Controller: controller,
		Watchdog:   watchdog,
		Recorder:   recorder,
		analyzer:   an,
		logger:     logger,
		cfg:        engineCfg,
	}

	controller.OnBatchCreated = e.startWorker
	return e
}

// startWorker spins up a Worker for batchID, the way the teacher's
// ImportWorker is started once per job discovery.
func (e *Engine) startWorker(batchID string) {
	w := appbatch.NewWorker(appbatch.WorkerDeps{
		Store:     e.Controller.Store,
		Analyzer:  e.analyzer,
		Logger:    e.logger,
		OnOutcome: e.Recorder.OnWorkerOutcome,
	}, e.cfg)
	w.Start(context.Background(), batchID)
}

// Run starts the Watchdog loop; it blocks until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	e.Watchdog.Run(ctx)
}

// ResumeRunningBatches restarts a Worker for every batch still in the
// running state, covering a process restart that left batches with
// no Worker bound to them; the items themselves survive in the State
// Store untouched.
func (e *Engine) ResumeRunningBatches(ctx context.Context) error {
	ids, err := e.Controller.Store.ListBatchIDsByStatus(ctx, domain.StatusRunning)
	if err != nil {
		return err
	}
	for _, id := range ids {
		e.startWorker(id)
	}
	return nil
}
