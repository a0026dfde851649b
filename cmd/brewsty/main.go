package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/goccy/go-json"

	"github.com/whooof/brewsty/internal/detailcache"
	"github.com/whooof/brewsty/pkg/brew"
	"github.com/whooof/brewsty/pkg/config"
	"github.com/whooof/brewsty/pkg/logview"
	"github.com/whooof/brewsty/pkg/model"
	"github.com/whooof/brewsty/pkg/tasks"
	"github.com/whooof/brewsty/pkg/version"
	"github.com/whooof/brewsty/pkg/watcher"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (default: XDG config dir)")
	jsonOut := flag.Bool("json", false, "Print results as JSON")
	cask := flag.Bool("cask", false, "Treat the package argument as a cask")
	pruneAll := flag.Bool("prune-all", false, "Preview removal of old installed versions instead of the cache")
	enrich := flag.Bool("enrich", false, "Fetch detail records for listed packages before printing")
	versionFlag := flag.Bool("version", false, "Show version")
	help := flag.Bool("help", false, "Show help")
	flag.Parse()

	if *help {
		usage()
		os.Exit(0)
	}
	if *versionFlag {
		fmt.Printf("brewsty %s\n", version.Version)
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fatal(err)
	}

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	b := brew.New(brew.WithBrewPath(cfg.BrewPath))
	if !b.Available() {
		fatal(fmt.Errorf("brew not found in PATH (looked for %q)", cfg.BrewPath))
	}

	exec := tasks.NewExecutor()
	defer exec.Close(5 * time.Second)

	coordCfg := tasks.Config{
		MaxConcurrentInfo:      cfg.Tasks.MaxConcurrentInfo,
		InfoTimeout:            cfg.Tasks.InfoTimeout(),
		CancelLookupsOnTimeout: cfg.Tasks.CancelLookupsOnTimeout,
	}
	if cfg.CacheEnabled() {
		if path := cfg.ResolvedCachePath(); path != "" {
			if store, err := detailcache.Open(path); err == nil {
				defer store.Close()
				coordCfg.DetailCache = store
				coordCfg.DetailCacheTTL = cfg.Cache.TTL()
			}
		}
	}

	coord := tasks.NewCoordinator(exec, b, b, coordCfg)

	ptype := model.Formula
	if *cask {
		ptype = model.Cask
	}

	switch cmd := args[0]; cmd {
	case "list":
		coord.LoadInstalled()
		runUntilIdle(coord, cfg, *jsonOut, *enrich, ptype)
	case "outdated":
		coord.LoadOutdated()
		runUntilIdle(coord, cfg, *jsonOut, *enrich, ptype)
	case "search":
		if len(args) < 2 {
			fatal(fmt.Errorf("search requires a query"))
		}
		coord.Search(args[1])
		runUntilIdle(coord, cfg, *jsonOut, *enrich, ptype)
	case "info":
		if len(args) < 2 {
			fatal(fmt.Errorf("info requires a package name"))
		}
		coord.RequestPackageInfo(args[1], ptype)
		runUntilIdle(coord, cfg, *jsonOut, false, ptype)
	case "services":
		coord.LoadServices()
		runUntilIdle(coord, cfg, *jsonOut, false, ptype)
	case "install", "uninstall", "upgrade", "pin", "unpin", "start", "stop":
		if len(args) < 2 {
			fatal(fmt.Errorf("%s requires a name", cmd))
		}
		name := args[1]
		switch cmd {
		case "install":
			coord.Install(name, ptype)
		case "uninstall":
			coord.Uninstall(name, ptype)
		case "upgrade":
			coord.Upgrade(name)
		case "pin":
			coord.Pin(name)
		case "unpin":
			coord.Unpin(name)
		case "start":
			coord.StartService(name)
		case "stop":
			coord.StopService(name)
		}
		runUntilIdle(coord, cfg, *jsonOut, false, ptype)
	case "upgrade-all":
		coord.UpgradeAll()
		runUntilIdle(coord, cfg, *jsonOut, false, ptype)
	case "clean-cache":
		coord.CleanCache()
		runUntilIdle(coord, cfg, *jsonOut, false, ptype)
	case "clean-old-versions":
		coord.CleanupOldVersions()
		runUntilIdle(coord, cfg, *jsonOut, false, ptype)
	case "cleanup-preview":
		preview, err := coord.CleanupPreviewNow(*pruneAll, 2*time.Minute)
		if err != nil {
			fatal(err)
		}
		printCleanup(preview, *jsonOut)
	case "watch":
		watch(coord, cfg, *jsonOut)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("Usage: brewsty [options] <command> [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  list                 List installed packages")
	fmt.Println("  outdated             List packages with updates available")
	fmt.Println("  search <query>       Search formulae and casks")
	fmt.Println("  info <name>          Show detail for one package (-cask for casks)")
	fmt.Println("  services             List Homebrew-managed services")
	fmt.Println("  install <name>       Install a package")
	fmt.Println("  uninstall <name>     Uninstall a package")
	fmt.Println("  upgrade <name>       Upgrade one package")
	fmt.Println("  upgrade-all          Upgrade every outdated package")
	fmt.Println("  pin <name>           Pin a formula to its installed version")
	fmt.Println("  unpin <name>         Remove a version pin")
	fmt.Println("  start <name>         Start a Homebrew service")
	fmt.Println("  stop <name>          Stop a Homebrew service")
	fmt.Println("  clean-cache          Scrub the download cache")
	fmt.Println("  clean-old-versions   Remove outdated installed versions")
	fmt.Println("  cleanup-preview      Show what brew cleanup would remove (-prune-all for old versions)")
	fmt.Println("  watch                Refresh the installed list when Homebrew state changes")
	fmt.Println()
	flag.PrintDefaults()
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// runUntilIdle drives the coordinator's per-frame poll loop until every
// submitted task and detail lookup has completed, printing results as
// they arrive.
func runUntilIdle(coord *tasks.Coordinator, cfg config.Config, jsonOut, enrich bool, ptype model.PackageType) {
	ticker := time.NewTicker(cfg.FrameInterval())
	defer ticker.Stop()

	deadline := time.After(5 * time.Minute)
	for {
		select {
		case <-deadline:
			fatal(fmt.Errorf("timed out waiting for background tasks"))
		case <-ticker.C:
		}

		res := coord.Poll()
		printResult(res, jsonOut)

		if enrich {
			for _, pkg := range collectPackages(res) {
				coord.RequestPackageInfo(pkg.Name, pkg.Type)
			}
		}

		if coord.Idle() {
			return
		}
	}
}

// watch reloads the installed list whenever the Homebrew lock directory
// changes, until interrupted. Worker log lines accumulate in a bounded
// log pane buffer and print as they arrive.
func watch(coord *tasks.Coordinator, cfg config.Config, jsonOut bool) {
	dir := lockDir(cfg)
	w, err := watcher.New(dir,
		watcher.WithDebounceDuration(time.Duration(cfg.Watch.DebounceMs)*time.Millisecond),
		watcher.WithPollInterval(time.Duration(cfg.Watch.PollIntervalSeconds)*time.Second),
	)
	if err != nil {
		fatal(err)
	}
	if err := w.Start(); err != nil {
		fatal(err)
	}
	defer w.Stop()

	fmt.Fprintf(os.Stderr, "watching %s (polling: %v)\n", dir, w.IsPolling())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.FrameInterval())
	defer ticker.Stop()

	pane := logview.NewManager()
	coord.LoadInstalled()
	for {
		select {
		case <-sig:
			return
		case <-w.Changed():
			coord.LoadInstalled()
		case <-ticker.C:
			res := coord.Poll()
			fresh := len(res.Logs)
			pane.Extend(res.Logs)
			res.Logs = nil
			printResult(res, jsonOut)
			all := pane.All()
			if fresh > len(all) {
				fresh = len(all)
			}
			for _, e := range all[len(all)-fresh:] {
				fmt.Fprintf(os.Stderr, "%s %s\n", e.FormatTimestamp(), e.Message)
			}
		}
	}
}

// lockDir returns the directory brew locks while mutating its state.
func lockDir(cfg config.Config) string {
	if len(cfg.Watch.Paths) > 0 {
		return cfg.Watch.Paths[0]
	}
	if prefix := os.Getenv("HOMEBREW_PREFIX"); prefix != "" {
		return filepath.Join(prefix, "var", "homebrew", "locks")
	}
	return "/opt/homebrew/var/homebrew/locks"
}

func collectPackages(res tasks.TaskResult) []model.Package {
	var pkgs []model.Package
	if res.InstalledLoaded {
		pkgs = append(pkgs, res.Installed...)
	}
	if res.OutdatedLoaded {
		pkgs = append(pkgs, res.Outdated...)
	}
	if res.SearchDone {
		pkgs = append(pkgs, res.SearchResults...)
	}
	return pkgs
}

func printResult(res tasks.TaskResult, jsonOut bool) {
	if res.Empty() {
		return
	}
	if jsonOut {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			fatal(err)
		}
		fmt.Println(string(data))
		return
	}

	if res.InstalledLoaded {
		printPackages("Installed", res.Installed)
	}
	if res.OutdatedLoaded {
		printPackages("Outdated", res.Outdated)
	}
	if res.SearchDone {
		printPackages("Search results", res.SearchResults)
	}
	if res.ServicesLoaded {
		fmt.Printf("Services (%d):\n", len(res.Services))
		for _, svc := range res.Services {
			fmt.Printf("  %-24s %s\n", svc.Name, svc.Status)
		}
	}
	for _, pkg := range res.PackageInfo {
		if pkg.DetailLoadFailed {
			fmt.Printf("%s: detail lookup failed\n", pkg.Name)
			continue
		}
		fmt.Printf("%s %s\n", pkg.Name, pkg.Version)
		if pkg.Description != "" {
			fmt.Printf("  %s\n", pkg.Description)
		}
	}
	for _, m := range res.Mutations {
		if m.OK {
			fmt.Println(m.Message)
		} else {
			fmt.Fprintf(os.Stderr, "%s failed: %s\n", m.Kind, m.Message)
		}
	}
	for _, line := range res.Logs {
		fmt.Fprintln(os.Stderr, line)
	}
}

func printPackages(title string, pkgs []model.Package) {
	fmt.Printf("%s (%d):\n", title, len(pkgs))
	for _, pkg := range pkgs {
		marker := " "
		if pkg.Pinned {
			marker = "*"
		}
		if pkg.Version != "" {
			fmt.Printf(" %s%-32s %s\n", marker, pkg.Name, pkg.Version)
		} else {
			fmt.Printf(" %s%s\n", marker, pkg.Name)
		}
	}
}

func printCleanup(preview model.CleanupPreview, jsonOut bool) {
	if jsonOut {
		data, err := json.MarshalIndent(preview, "", "  ")
		if err != nil {
			fatal(err)
		}
		fmt.Println(string(data))
		return
	}
	for _, item := range preview.Items {
		fmt.Printf("  %12d  %s\n", item.Size, item.Path)
	}
	fmt.Printf("Total: %d bytes in %d items\n", preview.TotalSize, len(preview.Items))
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "brewsty: %v\n", err)
	os.Exit(1)
}
