package tasks

import "github.com/whooof/brewsty/pkg/model"

// Kind identifies one singleton background operation. At most one task of
// each kind may be outstanding at a time.
type Kind string

const (
	KindLoadInstalled Kind = "load-installed"
	KindLoadOutdated  Kind = "load-outdated"
	KindSearch        Kind = "search"
	KindLoadServices  Kind = "load-services"

	KindInstall      Kind = "install"
	KindUninstall    Kind = "uninstall"
	KindUpgrade      Kind = "upgrade"
	KindUpgradeAll   Kind = "upgrade-all"
	KindPin          Kind = "pin"
	KindUnpin        Kind = "unpin"
	KindStartService Kind = "start-service"
	KindStopService  Kind = "stop-service"

	KindCleanCache         Kind = "clean-cache"
	KindCleanupOldVersions Kind = "cleanup-old-versions"
)

// singletonTask is one outstanding singleton operation. Each concrete task
// type carries exactly one typed completion cell: the worker writes a full
// completion record into it when it finishes, on success and on failure
// alike, so completion is always an explicit state rather than something
// inferred from a side effect.
type singletonTask interface {
	Kind() Kind

	// collect attempts a non-blocking read of the task's completion cell
	// and merges the result into res. keep=true means the task has not
	// completed (or its cell was contended) and must be polled again next
	// frame.
	collect(res *TaskResult) (keep bool)
}

// listOutcome is the completion record for the three package-list loads.
type listOutcome struct {
	packages []model.Package
	logs     []string
}

type listTask struct {
	kind Kind // KindLoadInstalled, KindLoadOutdated, or KindSearch
	cell *ResultCell[listOutcome]
}

func (t *listTask) Kind() Kind { return t.kind }

func (t *listTask) collect(res *TaskResult) bool {
	out, ok := t.cell.TryTake()
	if !ok {
		return true
	}
	switch t.kind {
	case KindLoadInstalled:
		res.Installed = out.packages
		res.InstalledLoaded = true
	case KindLoadOutdated:
		res.Outdated = out.packages
		res.OutdatedLoaded = true
	case KindSearch:
		res.SearchResults = out.packages
		res.SearchDone = true
	}
	res.Logs = append(res.Logs, out.logs...)
	return false
}

// servicesOutcome is the completion record for the services list load.
type servicesOutcome struct {
	services []model.Service
	logs     []string
}

type servicesTask struct {
	cell *ResultCell[servicesOutcome]
}

func (t *servicesTask) Kind() Kind { return KindLoadServices }

func (t *servicesTask) collect(res *TaskResult) bool {
	out, ok := t.cell.TryTake()
	if !ok {
		return true
	}
	res.Services = out.services
	res.ServicesLoaded = true
	res.Logs = append(res.Logs, out.logs...)
	return false
}

// mutationOutcome is the completion record for install/uninstall/upgrade/
// pin/unpin/service/maintenance operations.
type mutationOutcome struct {
	ok      bool
	message string
	logs    []string
}

type mutationTask struct {
	kind Kind
	// target is the affected package or service name; empty for operations
	// without a single target (upgrade-all, cache maintenance).
	target string
	cell   *ResultCell[mutationOutcome]
}

func (t *mutationTask) Kind() Kind { return t.kind }

func (t *mutationTask) collect(res *TaskResult) bool {
	out, ok := t.cell.TryTake()
	if !ok {
		return true
	}
	res.Mutations = append(res.Mutations, MutationOutcome{
		Kind:    t.kind,
		Target:  t.target,
		OK:      out.ok,
		Message: out.message,
	})
	res.Logs = append(res.Logs, out.logs...)
	return false
}
