// Package model defines the domain entities shared across brewsty:
// packages (formulae and casks), Homebrew-managed services, and cleanup
// previews.
package model

// PackageType distinguishes Homebrew formulae from casks.
type PackageType string

const (
	Formula PackageType = "formula"
	Cask    PackageType = "cask"
)

// String returns the display name used in the UI and in log lines.
func (t PackageType) String() string {
	switch t {
	case Cask:
		return "Cask"
	default:
		return "Formula"
	}
}

// BrewFlag returns the brew CLI flag selecting this package type.
func (t PackageType) BrewFlag() string {
	if t == Cask {
		return "--cask"
	}
	return "--formula"
}

// Package is a single Homebrew package as the front end sees it. A Package
// starts out as little more than a name (e.g. a bare search result) and is
// enriched with version and description once a detail lookup completes.
type Package struct {
	Name             string      `json:"name"`
	Version          string      `json:"version,omitempty"`
	AvailableVersion string      `json:"available_version,omitempty"`
	Description      string      `json:"description,omitempty"`
	Type             PackageType `json:"type"`
	Installed        bool        `json:"installed,omitempty"`
	Outdated         bool        `json:"outdated,omitempty"`
	Pinned           bool        `json:"pinned,omitempty"`

	// DetailLoadFailed marks a package whose detail lookup failed or timed
	// out, so the UI can render it distinctly from a package that simply
	// has no detail yet.
	DetailLoadFailed bool `json:"detail_load_failed,omitempty"`
}

// NewPackage returns a Package with only its identity set.
func NewPackage(name string, t PackageType) Package {
	return Package{Name: name, Type: t}
}

// ServiceStatus is the lifecycle state reported by `brew services`.
type ServiceStatus string

const (
	ServiceStarted ServiceStatus = "started"
	ServiceStopped ServiceStatus = "stopped"
	ServiceError   ServiceStatus = "error"
	ServiceUnknown ServiceStatus = "unknown"
)

// Service is a Homebrew-managed background service.
type Service struct {
	Name   string        `json:"name"`
	Status ServiceStatus `json:"status"`
	User   string        `json:"user,omitempty"`
	File   string        `json:"file,omitempty"`
}

// Running reports whether the service is currently started.
func (s Service) Running() bool {
	return s.Status == ServiceStarted
}

// CleanupItem is one path `brew cleanup --dry-run` would remove.
type CleanupItem struct {
	Path string `json:"path"`
	Size uint64 `json:"size"`
}

// CleanupPreview summarizes what a cleanup run would delete.
type CleanupPreview struct {
	Items     []CleanupItem `json:"items"`
	TotalSize uint64        `json:"total_size"`
}
