package tasks

import (
	"context"
	"time"

	"github.com/whooof/brewsty/pkg/model"
)

// PackageProvider is the external package-data collaborator. Every call is
// treated as opaque, long-running, and fallible; the coordinator never
// retries a provider call itself.
type PackageProvider interface {
	ListInstalled(ctx context.Context) ([]model.Package, error)
	ListOutdated(ctx context.Context) ([]model.Package, error)
	Search(ctx context.Context, query string) ([]model.Package, error)
	PackageInfo(ctx context.Context, name string, ptype model.PackageType) (model.Package, error)

	Install(ctx context.Context, name string, ptype model.PackageType) error
	Uninstall(ctx context.Context, name string, ptype model.PackageType) error
	Upgrade(ctx context.Context, name string) error
	UpgradeAll(ctx context.Context) error
	Pin(ctx context.Context, name string) error
	Unpin(ctx context.Context, name string) error

	CleanCache(ctx context.Context) error
	CleanupOldVersions(ctx context.Context) error
	CleanupPreview(ctx context.Context, pruneAll bool) (model.CleanupPreview, error)
}

// ServiceProvider manages Homebrew services.
type ServiceProvider interface {
	ListServices(ctx context.Context) ([]model.Service, error)
	StartService(ctx context.Context, name string) error
	StopService(ctx context.Context, name string) error
}

// DetailCache is an optional persistent cache of package detail records,
// consulted before a lookup is launched and updated when one completes.
type DetailCache interface {
	// Get returns the cached record for (name, ptype) if one exists and is
	// no older than maxAge.
	Get(name string, ptype model.PackageType, maxAge time.Duration) (model.Package, bool)

	// Put stores a freshly fetched record.
	Put(pkg model.Package) error
}
