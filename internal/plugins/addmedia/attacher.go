package addmedia

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"bagger/internal/bag"
	"bagger/internal/config"
	"bagger/internal/logging"
	"bagger/internal/services"
	"bagger/internal/services/drupal"
)

const (
	// Name is the plugin's registry name.
	Name      = "AddMedia"
	stageName = "addmedia"
)

// Attacher downloads a node's media files into a bag, optionally alongside a
// media use summary.
type Attacher struct {
	settings config.MediaSettings
	logger   *slog.Logger
	doer     drupal.HTTPDoer
}

// Option customizes an Attacher.
type Option func(*Attacher)

// WithHTTPDoer routes every Drupal request through doer instead of a client
// built from the settings.
func WithHTTPDoer(doer drupal.HTTPDoer) Option {
	return func(a *Attacher) {
		a.doer = doer
	}
}

// New constructs an Attacher. Settings are fixed for its lifetime.
func New(settings config.MediaSettings, logger *slog.Logger, opts ...Option) *Attacher {
	a := &Attacher{
		settings: settings,
		logger:   logging.NewComponentLogger(logger, stageName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Name returns the plugin's registry name.
func (a *Attacher) Name() string { return Name }

// Settings returns the settings the attacher was built with.
func (a *Attacher) Settings() config.MediaSettings { return a.settings }

func (a *Attacher) client(token string) *drupal.Client {
	if a.doer != nil {
		c := drupal.NewClientWithDoer(a.settings.DrupalBaseURL, token, a.doer)
		c.SetStrictStatus(a.settings.StrictStatus)
		return c
	}
	return drupal.NewClient(a.settings, token)
}

// Execute fetches the media list for nodeID and adds each selected file to b.
// Only the first media use term of a record downloads its file; later terms
// on the same record still contribute summary lines. nodeJSON is unused.
func (a *Attacher) Execute(ctx context.Context, b *bag.Bag, stagingDir, nodeID string, _ []byte, token string) (*bag.Bag, error) {
	ctx = services.WithNodeID(ctx, nodeID)
	ctx = services.WithPlugin(ctx, Name)
	logger := logging.WithContext(ctx, a.logger)
	client := a.client(token)

	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return b, services.Wrap(services.ErrFilesystem, stageName, "prepare staging", stagingDir, err)
	}

	records, err := client.MediaList(ctx, nodeID)
	if err != nil {
		return b, err
	}
	logger.Debug("fetched node media list",
		logging.Int("media_count", len(records)),
		logging.Int("tag_filter_count", a.settings.TagCount()),
	)

	var summary *useSummary
	if a.settings.IncludeMediaUseList {
		summary = &useSummary{}
	}

	var downloaded int
	for _, record := range records {
		src := Classify(record)
		if len(record.MediaUse) == 0 {
			continue
		}
		for i, term := range record.MediaUse {
			if !a.settings.TagAllowed(term.URL) {
				continue
			}

			fileURL := directURL(record, src)
			if fileURL == "" {
				entry, ok := src.first()
				if !ok || entry.TargetID.Empty() {
					attrs := append(logging.DecisionAttrs("media_source", "skipped", "no known media source field"),
						logging.String("media_id", record.MediaID()),
						logging.String("drupal_url", client.BaseURL()),
					)
					logger.Info("skipping media with no known media source field", logging.Args(attrs...)...)
					continue
				}
				fileURL, err = client.ResolveFileURL(ctx, entry.TargetID)
				if err != nil {
					return b, err
				}
			}

			filename := FilenameFromURL(fileURL)
			if filename == "" || filename == "." || filename == ".." {
				return b, services.Wrap(services.ErrMalformedResponse, stageName, "derive filename", fileURL, nil)
			}

			if summary != nil {
				externalURI, err := client.TermExternalURI(ctx, term.URL)
				if err != nil {
					return b, err
				}
				summary.add(filename, externalURI)
			}

			if i > 0 {
				attrs := append(logging.DecisionAttrs("media_use_term", "skipped", "file already added for this media"),
					logging.Int("term_index", i),
					logging.String("term_url", term.URL),
					logging.String("media_id", record.MediaID()),
					logging.String("file", filename),
				)
				logger.Info("skipping duplicate media use term on same media file", logging.Args(attrs...)...)
				continue
			}

			local, err := a.download(ctx, client, fileURL, stagingDir, filename, src)
			if err != nil {
				return b, err
			}
			logical := a.settings.MediaFileDirectories + filename
			if err := b.AddFile(local, logical); err != nil {
				return b, services.Wrap(services.ErrFilesystem, stageName, "add to bag", logical, err)
			}
			downloaded++
		}
	}

	if summary != nil {
		path, err := summary.write(stagingDir)
		if err != nil {
			return b, err
		}
		if err := b.AddFile(path, SummaryFilename); err != nil {
			return b, services.Wrap(services.ErrFilesystem, stageName, "add to bag", SummaryFilename, err)
		}
		logger.Info("media use summary added", logging.Int("lines", summary.lines))
	}

	logger.Info("node media attached",
		logging.Int("media_count", len(records)),
		logging.Int("files_added", downloaded),
	)
	return b, nil
}

// download streams fileURL into stagingDir/filename, replacing any earlier
// copy, and returns the local path.
func (a *Attacher) download(ctx context.Context, client *drupal.Client, fileURL, stagingDir, filename string, src Source) (string, error) {
	logger := logging.WithContext(ctx, a.logger)
	target := filepath.Join(stagingDir, filename)
	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return "", services.Wrap(services.ErrFilesystem, stageName, "open staging file", target, err)
	}
	n, err := client.Download(ctx, fileURL, out)
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = services.Wrap(services.ErrFilesystem, stageName, "close staging file", target, closeErr)
	}
	if err != nil {
		return "", err
	}

	attrs := []logging.Attr{
		logging.String("file", filename),
		logging.String("source", src.Kind.Label()),
		logging.Int64("size_bytes", n),
		logging.String("size", humanizeBytes(n)),
	}
	if mime, err := detectType(target); err == nil {
		attrs = append(attrs, logging.String("content_type", mime))
	}
	logger.Info("downloaded media file", logging.Args(attrs...)...)
	return target, nil
}
