package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/whooof/brewsty/pkg/model"
)

// Config tunes the coordinator. The zero value selects the defaults.
type Config struct {
	// MaxConcurrentInfo bounds in-flight detail lookups (default 15).
	MaxConcurrentInfo int

	// InfoTimeout is how long a detail lookup may run before it is
	// reported as failed and abandoned (default 10s).
	InfoTimeout time.Duration

	// CancelLookupsOnTimeout interrupts a timed-out lookup's provider call
	// via context cancellation. When false (the default) a timed-out
	// lookup is merely abandoned: it keeps running in the background and
	// its eventual result is dropped.
	CancelLookupsOnTimeout bool

	// DetailCache, when non-nil, short-circuits lookups whose cached
	// record is younger than DetailCacheTTL.
	DetailCache    DetailCache
	DetailCacheTTL time.Duration
}

// Coordinator bridges variable-duration background operations and a
// single-threaded, fixed-cadence render loop. Submissions are
// fire-and-forget; the render loop calls Poll once per frame and never
// blocks.
//
// All Coordinator methods must be called from the same goroutine (the
// render loop). Background workers communicate only through result cells.
type Coordinator struct {
	cfg      Config
	exec     *Executor
	packages PackageProvider
	services ServiceProvider

	set   *TaskSet
	queue *EnrichmentQueue

	// cacheHits holds detail records served from the cache, delivered on
	// the next Poll so cached and fetched lookups surface the same way.
	cacheHits []model.Package

	log *eventLog
}

// NewCoordinator wires a coordinator. The services provider may be nil on
// platforms without `brew services`; service operations then report
// failure.
func NewCoordinator(exec *Executor, packages PackageProvider, services ServiceProvider, cfg Config) *Coordinator {
	return &Coordinator{
		cfg:      cfg,
		exec:     exec,
		packages: packages,
		services: services,
		set:      NewTaskSet(),
		queue:    NewEnrichmentQueue(cfg.MaxConcurrentInfo, cfg.InfoTimeout),
		log:      newEventLog("coordinator"),
	}
}

// LoadInstalled submits the bulk installed-packages load. A submission
// while one is outstanding is dropped.
func (c *Coordinator) LoadInstalled() {
	c.submitList(KindLoadInstalled, "installed packages", func(ctx context.Context) ([]model.Package, error) {
		return c.packages.ListInstalled(ctx)
	})
}

// LoadOutdated submits the bulk outdated-packages load.
func (c *Coordinator) LoadOutdated() {
	c.submitList(KindLoadOutdated, "outdated packages", func(ctx context.Context) ([]model.Package, error) {
		return c.packages.ListOutdated(ctx)
	})
}

// Search submits a package search for query.
func (c *Coordinator) Search(query string) {
	c.submitList(KindSearch, fmt.Sprintf("search results for %q", query), func(ctx context.Context) ([]model.Package, error) {
		return c.packages.Search(ctx, query)
	})
}

func (c *Coordinator) submitList(kind Kind, what string, load func(ctx context.Context) ([]model.Package, error)) {
	cell := NewResultCell[listOutcome]()
	if !c.set.Submit(&listTask{kind: kind, cell: cell}) {
		return
	}
	c.exec.Spawn(func(ctx context.Context) {
		pkgs, err := load(ctx)
		out := listOutcome{packages: pkgs}
		if err != nil {
			out.packages = nil
			out.logs = []string{fmt.Sprintf("Failed to load %s: %v", what, err)}
		} else {
			out.logs = []string{fmt.Sprintf("Loaded %d %s", len(pkgs), what)}
		}
		cell.Put(out)
	})
}

// LoadServices submits the services list load.
func (c *Coordinator) LoadServices() {
	cell := NewResultCell[servicesOutcome]()
	if !c.set.Submit(&servicesTask{cell: cell}) {
		return
	}
	c.exec.Spawn(func(ctx context.Context) {
		out := servicesOutcome{}
		if c.services == nil {
			out.logs = []string{"Services are not available"}
		} else if svcs, err := c.services.ListServices(ctx); err != nil {
			out.logs = []string{fmt.Sprintf("Failed to load services: %v", err)}
		} else {
			out.services = svcs
			out.logs = []string{fmt.Sprintf("Loaded %d services", len(svcs))}
		}
		cell.Put(out)
	})
}

// Install submits a package install.
func (c *Coordinator) Install(name string, ptype model.PackageType) {
	c.submitMutation(KindInstall, name, fmt.Sprintf("Installed %s", name), func(ctx context.Context) error {
		return c.packages.Install(ctx, name, ptype)
	})
}

// Uninstall submits a package uninstall.
func (c *Coordinator) Uninstall(name string, ptype model.PackageType) {
	c.submitMutation(KindUninstall, name, fmt.Sprintf("Uninstalled %s", name), func(ctx context.Context) error {
		return c.packages.Uninstall(ctx, name, ptype)
	})
}

// Upgrade submits an upgrade of a single package.
func (c *Coordinator) Upgrade(name string) {
	c.submitMutation(KindUpgrade, name, fmt.Sprintf("Upgraded %s", name), func(ctx context.Context) error {
		return c.packages.Upgrade(ctx, name)
	})
}

// UpgradeAll submits a bulk upgrade of every outdated package.
func (c *Coordinator) UpgradeAll() {
	c.submitMutation(KindUpgradeAll, "", "Upgraded all packages", func(ctx context.Context) error {
		return c.packages.UpgradeAll(ctx)
	})
}

// Pin submits a version pin for name.
func (c *Coordinator) Pin(name string) {
	c.submitMutation(KindPin, name, fmt.Sprintf("Pinned %s", name), func(ctx context.Context) error {
		return c.packages.Pin(ctx, name)
	})
}

// Unpin submits a version unpin for name.
func (c *Coordinator) Unpin(name string) {
	c.submitMutation(KindUnpin, name, fmt.Sprintf("Unpinned %s", name), func(ctx context.Context) error {
		return c.packages.Unpin(ctx, name)
	})
}

// CleanCache submits a download-cache cleanup.
func (c *Coordinator) CleanCache() {
	c.submitMutation(KindCleanCache, "", "Cleaned download cache", func(ctx context.Context) error {
		return c.packages.CleanCache(ctx)
	})
}

// CleanupOldVersions submits removal of outdated installed versions.
func (c *Coordinator) CleanupOldVersions() {
	c.submitMutation(KindCleanupOldVersions, "", "Removed old versions", func(ctx context.Context) error {
		return c.packages.CleanupOldVersions(ctx)
	})
}

// StartService submits a service start.
func (c *Coordinator) StartService(name string) {
	c.submitMutation(KindStartService, name, fmt.Sprintf("Started %s", name), func(ctx context.Context) error {
		if c.services == nil {
			return fmt.Errorf("services are not available")
		}
		return c.services.StartService(ctx, name)
	})
}

// StopService submits a service stop.
func (c *Coordinator) StopService(name string) {
	c.submitMutation(KindStopService, name, fmt.Sprintf("Stopped %s", name), func(ctx context.Context) error {
		if c.services == nil {
			return fmt.Errorf("services are not available")
		}
		return c.services.StopService(ctx, name)
	})
}

func (c *Coordinator) submitMutation(kind Kind, target, successMsg string, run func(ctx context.Context) error) {
	cell := NewResultCell[mutationOutcome]()
	if !c.set.Submit(&mutationTask{kind: kind, target: target, cell: cell}) {
		return
	}
	c.exec.Spawn(func(ctx context.Context) {
		out := mutationOutcome{}
		if err := run(ctx); err != nil {
			out.message = err.Error()
			out.logs = []string{fmt.Sprintf("%s failed: %v", kind, err)}
		} else {
			out.ok = true
			out.message = successMsg
			out.logs = []string{successMsg}
		}
		cell.Put(out)
	})
}

// RequestPackageInfo asks for the detail record of one package. Requests
// for a package already in flight or queued are merged; beyond the
// concurrency bound, requests queue FIFO and are admitted as capacity
// frees up.
func (c *Coordinator) RequestPackageInfo(name string, ptype model.PackageType) {
	if c.queue.Tracks(name) {
		c.log.event(logDebug, "info_request_merged", map[string]any{
			"package": name,
		})
		return
	}
	if c.queue.CanAdmitMore() {
		c.launchInfo(name, ptype)
	} else {
		c.queue.Enqueue(name, ptype)
	}
}

// launchInfo starts one detail lookup immediately. A fresh cache record
// short-circuits the lookup entirely; the hit is delivered on the next
// Poll so callers observe a single completion path.
func (c *Coordinator) launchInfo(name string, ptype model.PackageType) {
	if c.cfg.DetailCache != nil {
		if pkg, ok := c.cfg.DetailCache.Get(name, ptype, c.cfg.DetailCacheTTL); ok {
			c.log.event(logDebug, "info_cache_hit", map[string]any{
				"package": name,
			})
			c.cacheHits = append(c.cacheHits, pkg)
			return
		}
	}

	cell := NewResultCell[model.Package]()
	lookupCtx := c.exec.Context()
	var cancel context.CancelFunc
	if c.cfg.CancelLookupsOnTimeout {
		lookupCtx, cancel = context.WithCancel(lookupCtx)
	}
	c.queue.launch(name, ptype, cell, cancel)

	c.exec.Spawn(func(context.Context) {
		pkg, err := c.packages.PackageInfo(lookupCtx, name, ptype)
		if err != nil {
			c.log.event(logDebug, "info_load_failed", map[string]any{
				"package": name,
				"error":   err.Error(),
			})
			failed := model.NewPackage(name, ptype)
			failed.DetailLoadFailed = true
			cell.Put(failed)
			return
		}
		if c.cfg.DetailCache != nil {
			if err := c.cfg.DetailCache.Put(pkg); err != nil {
				c.log.event(logDebug, "detail_cache_put_failed", map[string]any{
					"package": name,
					"error":   err.Error(),
				})
			}
		}
		cell.Put(pkg)
	})
}

// Poll drains everything that completed since the last frame. It is safe
// and cheap to call every frame with nothing outstanding, and it never
// blocks: cells currently held by a writer are simply retried next frame.
func (c *Coordinator) Poll() TaskResult {
	var res TaskResult

	c.set.poll(&res)
	c.queue.PollAll(&res)

	for _, pkg := range c.cacheHits {
		res.addPackageInfo(pkg)
	}
	c.cacheHits = nil

	c.replenishInfoLoads()

	return res
}

// replenishInfoLoads tops the in-flight set back up toward the concurrency
// bound from the pending FIFO.
func (c *Coordinator) replenishInfoLoads() {
	for c.queue.CanAdmitMore() && c.queue.PendingCount() > 0 {
		batch := c.queue.DrainPending(c.cfg.maxConcurrent() - c.queue.InFlightCount())
		if len(batch) == 0 {
			return
		}
		c.log.event(logDebug, "info_batch_launch", map[string]any{
			"count":   len(batch),
			"pending": c.queue.PendingCount(),
		})
		for _, p := range batch {
			c.launchInfo(p.name, p.ptype)
		}
	}
}

func (cfg Config) maxConcurrent() int {
	if cfg.MaxConcurrentInfo <= 0 {
		return DefaultMaxConcurrentInfo
	}
	return cfg.MaxConcurrentInfo
}

// IsLoadingInfo reports whether a detail lookup for name is in flight.
func (c *Coordinator) IsLoadingInfo(name string) bool {
	return c.queue.IsLoading(name)
}

// PendingInfoCount returns the number of queued detail lookups.
func (c *Coordinator) PendingInfoCount() int {
	return c.queue.PendingCount()
}

// CanLoadMoreInfo reports whether a new detail lookup would launch
// immediately rather than queue.
func (c *Coordinator) CanLoadMoreInfo() bool {
	return c.queue.CanAdmitMore()
}

// Idle reports whether nothing is outstanding: no singleton tasks, no
// in-flight detail lookups, no queued lookups, no undelivered cache hits.
func (c *Coordinator) Idle() bool {
	return c.set.Len() == 0 &&
		c.queue.InFlightCount() == 0 &&
		c.queue.PendingCount() == 0 &&
		len(c.cacheHits) == 0
}

// HasTask reports whether a singleton task of kind k is outstanding.
func (c *Coordinator) HasTask(k Kind) bool {
	return c.set.Has(k)
}

// CleanupPreviewNow fetches a cleanup preview synchronously. It exists for
// the pre-confirmation modal and must not be called from the per-frame
// poll path.
func (c *Coordinator) CleanupPreviewNow(pruneAll bool, timeout time.Duration) (model.CleanupPreview, error) {
	return RunBlocking(c.exec, timeout, func(ctx context.Context) (model.CleanupPreview, error) {
		return c.packages.CleanupPreview(ctx, pruneAll)
	})
}
