package brew

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/whooof/brewsty/pkg/model"
)

// infoDoc mirrors the relevant parts of `brew info --json=v2` output.
type infoDoc struct {
	Formulae []formulaEntry `json:"formulae"`
	Casks    []caskEntry    `json:"casks"`
}

type formulaEntry struct {
	Name     string `json:"name"`
	Desc     string `json:"desc"`
	Versions struct {
		Stable string `json:"stable"`
	} `json:"versions"`
	Installed []struct {
		Version string `json:"version"`
	} `json:"installed"`
	Pinned bool `json:"pinned"`
}

type caskEntry struct {
	Token     string `json:"token"`
	Desc      string `json:"desc"`
	Version   string `json:"version"`
	Installed string `json:"installed"`
}

// outdatedDoc mirrors `brew outdated --json=v2` output.
type outdatedDoc struct {
	Formulae []outdatedEntry `json:"formulae"`
	Casks    []outdatedEntry `json:"casks"`
}

type outdatedEntry struct {
	Name              string   `json:"name"`
	InstalledVersions []string `json:"installed_versions"`
	CurrentVersion    string   `json:"current_version"`
	Pinned            bool     `json:"pinned"`
}

// parseInstalled converts `brew info --json=v2 --installed` output into
// packages of both types. pinned is the set of pinned formula names from
// `brew list --pinned`.
func parseInstalled(raw string, pinned map[string]bool) ([]model.Package, error) {
	var doc infoDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("parsing installed packages: %w", err)
	}

	pkgs := make([]model.Package, 0, len(doc.Formulae)+len(doc.Casks))
	for _, f := range doc.Formulae {
		pkg := model.NewPackage(f.Name, model.Formula)
		pkg.Installed = true
		pkg.Description = f.Desc
		pkg.Pinned = f.Pinned || pinned[f.Name]
		if len(f.Installed) > 0 {
			pkg.Version = f.Installed[0].Version
		}
		pkgs = append(pkgs, pkg)
	}
	for _, c := range doc.Casks {
		pkg := model.NewPackage(c.Token, model.Cask)
		pkg.Installed = true
		pkg.Description = c.Desc
		pkg.Version = c.Installed
		pkgs = append(pkgs, pkg)
	}
	return pkgs, nil
}

// parseOutdated converts `brew outdated --json=v2` output.
func parseOutdated(raw string) ([]model.Package, error) {
	var doc outdatedDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("parsing outdated packages: %w", err)
	}

	var pkgs []model.Package
	appendEntries := func(entries []outdatedEntry, t model.PackageType) {
		for _, e := range entries {
			pkg := model.NewPackage(e.Name, t)
			pkg.Installed = true
			pkg.Outdated = true
			pkg.Pinned = e.Pinned
			pkg.AvailableVersion = e.CurrentVersion
			if len(e.InstalledVersions) > 0 {
				pkg.Version = e.InstalledVersions[0]
			}
			pkgs = append(pkgs, pkg)
		}
	}
	appendEntries(doc.Formulae, model.Formula)
	appendEntries(doc.Casks, model.Cask)
	return pkgs, nil
}

// parseInfo extracts the first entry from `brew info --json=v2 <name>`.
func parseInfo(raw, name string, ptype model.PackageType) (model.Package, error) {
	var doc infoDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return model.Package{}, fmt.Errorf("parsing info for %s: %w", name, err)
	}

	pkg := model.NewPackage(name, ptype)
	switch ptype {
	case model.Cask:
		if len(doc.Casks) == 0 {
			return model.Package{}, fmt.Errorf("no info found for cask %s", name)
		}
		c := doc.Casks[0]
		pkg.Version = c.Version
		pkg.Description = c.Desc
	default:
		if len(doc.Formulae) == 0 {
			return model.Package{}, fmt.Errorf("no info found for formula %s", name)
		}
		f := doc.Formulae[0]
		pkg.Version = f.Versions.Stable
		pkg.Description = f.Desc
		pkg.Pinned = f.Pinned
	}
	return pkg, nil
}

// parseSearch converts the line-per-name output of `brew search`.
func parseSearch(raw string, ptype model.PackageType) []model.Package {
	var pkgs []model.Package
	for _, line := range strings.Split(raw, "\n") {
		name := strings.TrimSpace(line)
		if name == "" || strings.HasPrefix(name, "==>") {
			continue
		}
		pkgs = append(pkgs, model.NewPackage(name, ptype))
	}
	return pkgs
}

// parseLines splits plain-text output into trimmed non-empty lines
// (e.g. `brew list --pinned`).
func parseLines(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parseServices converts the whitespace-separated table printed by
// `brew services list`. The first line is the header.
func parseServices(raw string) []model.Service {
	var services []model.Service
	for i, line := range strings.Split(raw, "\n") {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		svc := model.Service{
			Name:   fields[0],
			Status: parseServiceStatus(fields[1]),
		}
		if len(fields) >= 3 {
			svc.User = fields[2]
		}
		if len(fields) >= 4 {
			svc.File = fields[3]
		}
		services = append(services, svc)
	}
	return services
}

func parseServiceStatus(raw string) model.ServiceStatus {
	s := strings.ToLower(raw)
	switch {
	case strings.Contains(s, "started"):
		return model.ServiceStarted
	case strings.Contains(s, "stopped"), strings.Contains(s, "none"):
		return model.ServiceStopped
	case strings.Contains(s, "error"):
		return model.ServiceError
	default:
		return model.ServiceUnknown
	}
}
