package tasks

import "github.com/whooof/brewsty/pkg/model"

// MutationOutcome reports one completed mutation (install, uninstall,
// upgrade, pin, unpin, service start/stop, cache maintenance).
type MutationOutcome struct {
	Kind    Kind
	Target  string
	OK      bool
	Message string
}

// TaskResult aggregates everything that completed during a single Poll
// call. It is constructed fresh each frame, consumed immediately by the
// caller, and never persisted. A frame with no completions yields a result
// for which Empty reports true.
//
// Loaded/Done flags distinguish "operation completed with an empty list"
// from "operation still outstanding".
type TaskResult struct {
	Installed       []model.Package
	InstalledLoaded bool

	Outdated       []model.Package
	OutdatedLoaded bool

	SearchResults []model.Package
	SearchDone    bool

	Services       []model.Service
	ServicesLoaded bool

	// PackageInfo maps package name to its completed detail record.
	// Entries with DetailLoadFailed set come from provider failures or
	// lookup timeouts; the map is nil when no lookups completed.
	PackageInfo map[string]model.Package

	// CompletedInfoLoads lists the package names whose detail lookups left
	// the in-flight set this frame, including timed-out ones.
	CompletedInfoLoads []string

	Mutations []MutationOutcome

	// Logs accumulates worker log lines for the on-screen log pane.
	Logs []string
}

// Empty reports whether the frame produced no completions at all.
func (r *TaskResult) Empty() bool {
	return !r.InstalledLoaded &&
		!r.OutdatedLoaded &&
		!r.SearchDone &&
		!r.ServicesLoaded &&
		len(r.PackageInfo) == 0 &&
		len(r.CompletedInfoLoads) == 0 &&
		len(r.Mutations) == 0 &&
		len(r.Logs) == 0
}

func (r *TaskResult) addPackageInfo(pkg model.Package) {
	if r.PackageInfo == nil {
		r.PackageInfo = make(map[string]model.Package)
	}
	r.PackageInfo[pkg.Name] = pkg
	r.CompletedInfoLoads = append(r.CompletedInfoLoads, pkg.Name)
}
