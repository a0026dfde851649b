package brew

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/whooof/brewsty/pkg/model"
)

// ListInstalled returns every installed package, formulae and casks
// fetched in parallel. Pin state comes from `brew list --pinned`.
func (b *Brew) ListInstalled(ctx context.Context) ([]model.Package, error) {
	var (
		formulaeRaw string
		casksRaw    string
		pinnedRaw   string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, err := b.brewOutput(gctx, "info", "--json=v2", "--installed", "--formula")
		formulaeRaw = raw
		return err
	})
	g.Go(func() error {
		raw, err := b.brewOutput(gctx, "info", "--json=v2", "--installed", "--cask")
		casksRaw = raw
		return err
	})
	g.Go(func() error {
		// Pin listing is best effort; a failure just leaves pins unset.
		raw, err := b.brewOutput(gctx, "list", "--pinned")
		if err == nil {
			pinnedRaw = raw
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pinned := make(map[string]bool)
	for _, name := range parseLines(pinnedRaw) {
		pinned[name] = true
	}

	formulae, err := parseInstalled(formulaeRaw, pinned)
	if err != nil {
		return nil, err
	}
	casks, err := parseInstalled(casksRaw, pinned)
	if err != nil {
		return nil, err
	}

	pkgs := append(formulae, casks...)
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].Name < pkgs[j].Name })
	return pkgs, nil
}

// ListOutdated returns every package with a newer version available.
func (b *Brew) ListOutdated(ctx context.Context) ([]model.Package, error) {
	var formulaeRaw, casksRaw string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, err := b.brewOutput(gctx, "outdated", "--formula", "--json=v2")
		formulaeRaw = raw
		return err
	})
	g.Go(func() error {
		raw, err := b.brewOutput(gctx, "outdated", "--cask", "--json=v2")
		casksRaw = raw
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	formulae, err := parseOutdated(formulaeRaw)
	if err != nil {
		return nil, err
	}
	casks, err := parseOutdated(casksRaw)
	if err != nil {
		return nil, err
	}
	return append(formulae, casks...), nil
}

// Search runs a name search over both package types in parallel.
func (b *Brew) Search(ctx context.Context, query string) ([]model.Package, error) {
	var formulaeRaw, casksRaw string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, err := b.brewOutput(gctx, "search", "--formula", query)
		formulaeRaw = raw
		return err
	})
	g.Go(func() error {
		raw, err := b.brewOutput(gctx, "search", "--cask", query)
		casksRaw = raw
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pkgs := parseSearch(formulaeRaw, model.Formula)
	return append(pkgs, parseSearch(casksRaw, model.Cask)...), nil
}

// PackageInfo fetches the detail record for a single package.
func (b *Brew) PackageInfo(ctx context.Context, name string, ptype model.PackageType) (model.Package, error) {
	raw, err := b.brewOutput(ctx, "info", "--json=v2", ptype.BrewFlag(), name)
	if err != nil {
		return model.Package{}, err
	}
	return parseInfo(raw, name, ptype)
}

// Install installs a package.
func (b *Brew) Install(ctx context.Context, name string, ptype model.PackageType) error {
	return b.brewRun(ctx, "install", ptype.BrewFlag(), name)
}

// Uninstall removes a package.
func (b *Brew) Uninstall(ctx context.Context, name string, ptype model.PackageType) error {
	return b.brewRun(ctx, "uninstall", ptype.BrewFlag(), name)
}

// Upgrade upgrades one package.
func (b *Brew) Upgrade(ctx context.Context, name string) error {
	return b.brewRun(ctx, "upgrade", name)
}

// UpgradeAll upgrades every outdated package.
func (b *Brew) UpgradeAll(ctx context.Context) error {
	return b.brewRun(ctx, "upgrade")
}

// Pin pins a formula to its installed version.
func (b *Brew) Pin(ctx context.Context, name string) error {
	return b.brewRun(ctx, "pin", name)
}

// Unpin removes a version pin.
func (b *Brew) Unpin(ctx context.Context, name string) error {
	return b.brewRun(ctx, "unpin", name)
}

// CleanCache scrubs the download cache.
func (b *Brew) CleanCache(ctx context.Context) error {
	return b.brewRun(ctx, "cleanup", "-s")
}

// CleanupOldVersions removes outdated installed versions.
func (b *Brew) CleanupOldVersions(ctx context.Context) error {
	return b.brewRun(ctx, "cleanup", "--prune=all")
}

// ListServices lists Homebrew-managed services.
func (b *Brew) ListServices(ctx context.Context) ([]model.Service, error) {
	raw, err := b.brewOutput(ctx, "services", "list")
	if err != nil {
		return nil, err
	}
	return parseServices(raw), nil
}

// StartService starts a service.
func (b *Brew) StartService(ctx context.Context, name string) error {
	return b.brewRun(ctx, "services", "start", name)
}

// StopService stops a service.
func (b *Brew) StopService(ctx context.Context, name string) error {
	return b.brewRun(ctx, "services", "stop", name)
}
