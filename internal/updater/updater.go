package updater

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"aircheck/internal/catalog"
	"aircheck/internal/config"
	"aircheck/internal/discovery"
	"aircheck/internal/enrich"
	"aircheck/internal/feeds"
	"aircheck/internal/logging"
	"aircheck/internal/persist"
	"aircheck/internal/source"
	"aircheck/internal/station"
)

// Options narrow and steer a reconciliation pass.
type Options struct {
	// Match, Since, Until narrow the discovered resources before
	// enrichment; unmatched entities survive through the merge.
	Match string
	Since *time.Time
	Until *time.Time
	// Select is an allow-list of resource URLs that must each resolve
	// against discovery; failures on selected resources are fatal.
	Select []string
	// DryRun runs the full pass and reports the diff without persisting.
	DryRun bool
	// SkipFeeds persists the state file but leaves feed rendering out.
	SkipFeeds bool
}

// Updater drives one reconciliation pass: discover live resources, enrich
// them into a fresh catalog, merge into the persisted one, save state and
// feeds exactly once at the end.
type Updater struct {
	cfg    *config.Config
	source station.Source
	logger *slog.Logger
}

// New creates an updater over a source.
func New(cfg *config.Config, src station.Source, logger *slog.Logger) *Updater {
	return &Updater{
		cfg:    cfg,
		source: src,
		logger: logging.NewComponentLogger(logger, "updater"),
	}
}

// Update runs the pass and returns its report. A second updater against
// the same data directory is locked out for the duration.
func (u *Updater) Update(ctx context.Context, opts Options) (*Report, error) {
	started := time.Now()
	if err := u.cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	lock := flock.New(filepath.Join(u.cfg.Paths.DataDir, "aircheck.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire update lock: %w", err)
	}
	if !locked {
		return nil, errors.New("another update is already running against this data directory")
	}
	defer func() { _ = lock.Unlock() }()

	local, _, err := persist.Load(u.cfg.StatePath())
	if err != nil {
		return nil, err
	}
	before, err := persist.Clone(local)
	if err != nil {
		return nil, err
	}

	resources, err := u.Discover(ctx)
	if err != nil {
		return nil, err
	}

	work, err := u.narrow(resources, opts)
	if err != nil {
		return nil, err
	}

	report := &Report{Discovered: len(resources), DryRun: opts.DryRun}
	selected := selectionSet(opts.Select)
	live := catalog.New()
	enricher := enrich.New(u.source, live, resources, u.cfg.Station.ShowsPath, u.cfg.Station.PlayerSuffix, u.logger)

	for _, resource := range work {
		result, err := enricher.Enrich(ctx, resource)
		if err != nil {
			if station.IsFatal(err) {
				return nil, err
			}
			if _, isSelected := selected[resource.URL]; isSelected {
				return nil, fmt.Errorf("selected resource %s: %w", resource.URL, err)
			}
			u.logger.Warn("resource skipped", logging.String("url", resource.URL), logging.Error(err))
			report.Failed++
			report.Failures = append(report.Failures, Failure{URL: resource.URL, Reason: err.Error()})
			continue
		}
		if result.CacheHit {
			report.Skipped++
			continue
		}
		report.Updated += result.Touched
	}

	if err := local.Merge(live); err != nil {
		return nil, fmt.Errorf("merge catalogs: %w", err)
	}
	report.Diff = before.Diff(local).Summary()
	report.Duration = time.Since(started)

	if opts.DryRun {
		u.logger.Info("dry run complete", logging.Int("updated", report.Updated))
		return report, nil
	}

	if err := persist.Save(u.cfg.StatePath(), local); err != nil {
		return nil, err
	}
	if !opts.SkipFeeds {
		writer := feeds.NewWriter(local, u.cfg.Paths.FeedDir, u.cfg.Feeds, u.logger)
		if _, err := writer.WriteAll(); err != nil {
			return nil, err
		}
	}

	u.logger.Info("update complete",
		logging.Int("discovered", report.Discovered),
		logging.Int("updated", report.Updated),
		logging.Int("skipped", report.Skipped),
		logging.Int("failed", report.Failed),
		logging.Duration("duration", report.Duration))
	return report, nil
}

// Discover enumerates the live resource universe: sitemap walking for live
// sources, a directory walk for mirror sources.
func (u *Updater) Discover(ctx context.Context) (map[string]*catalog.Resource, error) {
	if u.source.UsesSitemap() {
		return discovery.New(u.source, u.cfg.Station.ShowsPath, u.logger).Discover(ctx)
	}
	enumerator, ok := u.source.(source.Enumerator)
	if !ok {
		return nil, station.Wrap(station.ErrDiscovery, "updater", "enumerate resources",
			"source neither walks sitemaps nor enumerates", nil)
	}
	return enumerator.Enumerate(ctx, u.cfg.Station.ShowsPath, u.cfg.Station.PlayerSuffix)
}

// narrow applies the filter and selection to discovered resources and
// returns a deterministic work list ordered by URL. Show pages order
// before their episode pages, so parents enrich before children.
func (u *Updater) narrow(resources map[string]*catalog.Resource, opts Options) ([]*catalog.Resource, error) {
	filter, err := catalog.NewFilter(opts.Match, opts.Since, opts.Until)
	if err != nil {
		return nil, err
	}

	selected := selectionSet(opts.Select)
	if len(selected) > 0 {
		var unmatched []string
		for url := range selected {
			if _, ok := resources[url]; !ok {
				unmatched = append(unmatched, url)
			}
		}
		if len(unmatched) > 0 {
			sort.Strings(unmatched)
			return nil, station.Wrap(station.ErrSelectionMismatch, "updater", "resolve selection",
				strings.Join(unmatched, ", "), nil)
		}
	}

	work := make([]*catalog.Resource, 0, len(resources))
	for url, resource := range resources {
		if len(selected) > 0 {
			if _, ok := selected[url]; !ok {
				continue
			}
		} else if !filter.MatchResource(resource) {
			continue
		}
		work = append(work, resource)
	}
	sort.Slice(work, func(i, j int) bool { return work[i].URL < work[j].URL })
	return work, nil
}

func selectionSet(entries []string) map[string]struct{} {
	set := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		entry = strings.TrimRight(strings.TrimSpace(entry), "/")
		if entry != "" {
			set[entry] = struct{}{}
		}
	}
	return set
}
