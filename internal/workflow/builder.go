package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"bagger/internal/bag"
	"bagger/internal/config"
	"bagger/internal/ledger"
	"bagger/internal/logging"
	"bagger/internal/plugins"
	"bagger/internal/services"
	"bagger/internal/services/drupal"
)

const stageName = "workflow"

// Recorder persists completed runs.
type Recorder interface {
	Record(ctx context.Context, run ledger.Run) (ledger.Run, error)
}

// Result summarizes one completed bag build.
type Result struct {
	RunID          string
	NodeID         string
	BagName        string
	BagDir         string
	SerializedPath string
	PayloadFiles   int
	PayloadBytes   int64
	Duration       time.Duration
}

// Builder creates one bag per node: it fetches the node, runs the configured
// plugins against a fresh bag, finalizes it, and records the run.
type Builder struct {
	cfg      *config.Config
	logger   *slog.Logger
	recorder Recorder
	doer     drupal.HTTPDoer
	now      func() time.Time
}

// Option customizes a Builder.
type Option func(*Builder)

// WithRecorder records completed runs, typically in the ledger.
func WithRecorder(r Recorder) Option {
	return func(b *Builder) {
		b.recorder = r
	}
}

// WithHTTPDoer routes Drupal requests through doer.
func WithHTTPDoer(doer drupal.HTTPDoer) Option {
	return func(b *Builder) {
		b.doer = doer
	}
}

// NewBuilder constructs a Builder for cfg.
func NewBuilder(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Builder, error) {
	if cfg == nil {
		return nil, errors.New("workflow builder requires configuration")
	}
	b := &Builder{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, stageName),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b, nil
}

// Create builds the bag for nodeID. An empty token falls back to the
// configured drupal.token. A second concurrent Create for the same node
// fails fast instead of sharing the staging directory.
func (b *Builder) Create(ctx context.Context, nodeID, token string) (Result, error) {
	nodeID = strings.TrimSpace(nodeID)
	if nodeID == "" {
		return Result{}, services.Wrap(services.ErrValidation, stageName, "create", "node id is required", nil)
	}
	if strings.TrimSpace(token) == "" {
		token = b.cfg.Drupal.Token
	}

	started := b.now()
	runID := uuid.NewString()
	ctx = services.WithRequestID(services.WithNodeID(ctx, nodeID), runID)
	logger := logging.WithContext(ctx, b.logger)

	if err := b.cfg.EnsureDirectories(); err != nil {
		return Result{}, services.Wrap(services.ErrFilesystem, stageName, "prepare directories", "", err)
	}

	lock, err := acquireNodeLock(b.cfg.Paths.StagingDir, nodeID)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release node lock", logging.String("lock", lock.Path()), logging.Error(err))
		}
	}()

	client := b.client(token)
	node, err := client.Node(ctx, nodeID)
	if err != nil {
		return Result{}, err
	}

	name, err := BagName(b.cfg.Bag.NameTemplate, nodeID, node)
	if err != nil {
		return Result{}, err
	}
	stagingDir := filepath.Join(b.cfg.Paths.StagingDir, name)
	bagDir := filepath.Join(b.cfg.Paths.OutputDir, name)
	logger.Info("bag run started",
		logging.String(logging.FieldEventType, "bag_start"),
		logging.String("bag_name", name),
		logging.String("bag_dir", bagDir),
		logging.String("plugins", strings.Join(b.cfg.Bag.Plugins, ",")),
	)

	if err := resetDir(stagingDir); err != nil {
		return Result{}, services.Wrap(services.ErrFilesystem, stageName, "prepare staging", stagingDir, err)
	}
	if _, err := os.Stat(bagDir); err == nil {
		logging.WarnWithContext(logger, "replacing existing bag", "bag_replaced",
			logging.String("bag_dir", bagDir),
			logging.String(logging.FieldImpact, "previous bag contents are discarded"),
			logging.String(logging.FieldErrorHint, "copy the bag elsewhere before rerunning to keep it"),
		)
		if err := os.RemoveAll(bagDir); err != nil {
			return Result{}, services.Wrap(services.ErrFilesystem, stageName, "remove previous bag", bagDir, err)
		}
	}

	bg, err := bag.Create(bagDir, bag.Options{Algorithms: b.cfg.Bag.Algorithms, Info: b.cfg.Bag.Info})
	if err != nil {
		return Result{}, services.Wrap(services.ErrFilesystem, stageName, "create bag", bagDir, err)
	}
	if _, ok := bg.InfoValue("External-Identifier"); !ok {
		bg.SetInfo("External-Identifier", client.BaseURL()+"/node/"+nodeID)
	}

	built, err := plugins.Build(b.cfg.Bag.Plugins, plugins.Dependencies{Config: b.cfg, Logger: b.logger, HTTPDoer: b.doer})
	if err != nil {
		return Result{}, err
	}
	for _, plugin := range built {
		pluginCtx := services.WithPlugin(ctx, plugin.Name())
		pluginStart := time.Now()
		bg, err = plugin.Execute(pluginCtx, bg, stagingDir, nodeID, node.Raw, token)
		if err != nil {
			logger.Error("plugin failed",
				logging.String(logging.FieldPlugin, plugin.Name()),
				logging.String(logging.FieldEventType, "plugin_failed"),
				logging.Error(err),
			)
			return Result{}, err
		}
		logger.Debug("plugin finished",
			logging.String(logging.FieldPlugin, plugin.Name()),
			logging.Duration("elapsed", time.Since(pluginStart)),
		)
	}

	if err := bg.Finalize(); err != nil {
		return Result{}, services.Wrap(services.ErrFilesystem, stageName, "finalize bag", bagDir, err)
	}
	entries, err := bg.Payload()
	if err != nil {
		return Result{}, services.Wrap(services.ErrFilesystem, stageName, "list payload", bagDir, err)
	}

	result := Result{
		RunID:        runID,
		NodeID:       nodeID,
		BagName:      name,
		BagDir:       bagDir,
		PayloadFiles: len(entries),
		PayloadBytes: bag.PayloadBytes(entries),
	}

	if format := b.cfg.Bag.Serialize; format != config.SerializeNone {
		archive, err := bag.Serialize(bagDir, format, b.cfg.Paths.OutputDir)
		if err != nil {
			return Result{}, services.Wrap(services.ErrFilesystem, stageName, "serialize bag", bagDir, err)
		}
		result.SerializedPath = archive
	}

	if b.recorder != nil {
		if _, err := b.recorder.Record(ctx, ledger.Run{
			RunID:          runID,
			NodeID:         nodeID,
			BagName:        name,
			BagPath:        bagDir,
			SerializedPath: result.SerializedPath,
			PayloadFiles:   result.PayloadFiles,
			PayloadBytes:   result.PayloadBytes,
			CreatedAt:      b.now(),
		}); err != nil {
			logging.WarnWithContext(logger, "failed to record bag run", "ledger_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "bag was created but is missing from history"),
			)
		}
	}

	if !b.cfg.Bag.KeepStaging {
		if err := os.RemoveAll(stagingDir); err != nil {
			logger.Warn("failed to clean staging directory; leftover files remain",
				logging.String("staging_dir", stagingDir), logging.Error(err))
		}
	}

	result.Duration = b.now().Sub(started)
	logger.Info("bag run completed",
		logging.String(logging.FieldEventType, "bag_complete"),
		logging.String("bag_dir", bagDir),
		logging.Int("payload_files", result.PayloadFiles),
		logging.Int64("payload_bytes", result.PayloadBytes),
		logging.String("serialized", result.SerializedPath),
		logging.Duration("elapsed", result.Duration),
	)
	return result, nil
}

func (b *Builder) client(token string) *drupal.Client {
	if b.doer != nil {
		c := drupal.NewClientWithDoer(b.cfg.Drupal.BaseURL, token, b.doer)
		c.SetStrictStatus(b.cfg.Media.StrictStatus)
		return c
	}
	return drupal.NewClient(b.cfg.MediaSettings(), token)
}

// ErrNodeBusy is returned when another run holds the node's lock.
var ErrNodeBusy = errors.New("node is already being bagged")

func acquireNodeLock(stagingRoot, nodeID string) (*flock.Flock, error) {
	lock := flock.New(filepath.Join(stagingRoot, lockFileName(nodeID)))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, stageName, "acquire lock", lock.Path(), err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrValidation, stageName, "acquire lock",
			fmt.Sprintf("another bagger run holds %s", lock.Path()), ErrNodeBusy)
	}
	return lock, nil
}

func lockFileName(nodeID string) string {
	return SanitizeName(nodeID) + ".lock"
}

func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}
