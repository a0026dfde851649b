// Package detailcache persists fetched package detail records in a
// local SQLite database so restarts do not refetch everything.
package detailcache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/whooof/brewsty/pkg/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS package_details (
	name              TEXT NOT NULL,
	package_type      TEXT NOT NULL,
	version           TEXT NOT NULL DEFAULT '',
	available_version TEXT NOT NULL DEFAULT '',
	description       TEXT NOT NULL DEFAULT '',
	installed         INTEGER NOT NULL DEFAULT 0,
	outdated          INTEGER NOT NULL DEFAULT 0,
	pinned            INTEGER NOT NULL DEFAULT 0,
	fetched_at        TIMESTAMP NOT NULL,
	PRIMARY KEY (name, package_type)
)`

// Store is a SQLite-backed package detail cache.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("cannot create cache directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open cache database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot create cache schema: %w", err)
	}

	return &Store{db: db, path: path, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get returns the cached record for (name, ptype) if it is no older
// than maxAge. A maxAge of zero disables the cache.
func (s *Store) Get(name string, ptype model.PackageType, maxAge time.Duration) (model.Package, bool) {
	if maxAge <= 0 {
		return model.Package{}, false
	}

	var (
		pkg       model.Package
		fetchedAt time.Time
	)
	err := s.db.QueryRow(`
		SELECT version, available_version, description, installed, outdated, pinned, fetched_at
		FROM package_details
		WHERE name = ? AND package_type = ?`, name, string(ptype)).
		Scan(&pkg.Version, &pkg.AvailableVersion, &pkg.Description,
			&pkg.Installed, &pkg.Outdated, &pkg.Pinned, &fetchedAt)
	if err != nil {
		return model.Package{}, false
	}
	if s.now().Sub(fetchedAt) > maxAge {
		return model.Package{}, false
	}

	pkg.Name = name
	pkg.Type = ptype
	return pkg, true
}

// Put stores a freshly fetched record, replacing any older one.
func (s *Store) Put(pkg model.Package) error {
	_, err := s.db.Exec(`
		INSERT INTO package_details
			(name, package_type, version, available_version, description, installed, outdated, pinned, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name, package_type) DO UPDATE SET
			version = excluded.version,
			available_version = excluded.available_version,
			description = excluded.description,
			installed = excluded.installed,
			outdated = excluded.outdated,
			pinned = excluded.pinned,
			fetched_at = excluded.fetched_at`,
		pkg.Name, string(pkg.Type), pkg.Version, pkg.AvailableVersion, pkg.Description,
		pkg.Installed, pkg.Outdated, pkg.Pinned, s.now())
	if err != nil {
		return fmt.Errorf("cannot store package detail: %w", err)
	}
	return nil
}

// Prune deletes every record older than maxAge.
func (s *Store) Prune(maxAge time.Duration) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM package_details WHERE fetched_at < ?`, s.now().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
