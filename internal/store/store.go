package store

import (
	"context"
	"os"
	"path/filepath"

	"syncline/internal/model"
)

const workspaceDirName = ".syncline"

// DB is the whole in-memory workspace state: every data job plus the stored
// tenant credentials. Job.Groups is the single source of truth for the tree;
// flat views are derived, never stored.
type DB struct {
	Version     int            `json:"version"`
	ActiveJobID string         `json:"activeJobId,omitempty"`
	Jobs        []model.Job    `json:"dataJobs"`
	Tenants     []model.Tenant `json:"tenants"`

	// Clipboard is a detached snapshot of copied clips; session-only.
	Clipboard *Clipboard `json:"-"`
}

// Clipboard holds copied clips plus their originating track, for
// paste-at-time operations independent of drag-copy.
type Clipboard struct {
	Clips         []model.Clip
	SourceTrackID string
}

type Store struct {
	Dir string
}

// DiscoverDir walks upward from start looking for an existing workspace dir.
func DiscoverDir(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, workspaceDirName)
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func DefaultDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if found, ok := DiscoverDir(cwd); ok {
		return found, nil
	}
	return filepath.Join(cwd, workspaceDirName), nil
}

// WorkspaceDir resolves a named workspace under the user's home directory,
// independent of cwd discovery.
func WorkspaceDir(name string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, workspaceDirName, "workspaces", name), nil
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) Load() (*DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	return s.LoadSQLite(context.Background())
}

func (s Store) Save(db *DB) error {
	if err := s.Ensure(); err != nil {
		return err
	}
	return s.SaveSQLite(context.Background(), db)
}

func (db *DB) FindJob(id string) (*model.Job, bool) {
	for i := range db.Jobs {
		if db.Jobs[i].ID == id {
			return &db.Jobs[i], true
		}
	}
	return nil, false
}

// ActiveJob returns the currently active job, if any.
func (db *DB) ActiveJob() (*model.Job, bool) {
	if db.ActiveJobID == "" {
		return nil, false
	}
	return db.FindJob(db.ActiveJobID)
}

func (db *DB) FindTenant(id string) (*model.Tenant, bool) {
	for i := range db.Tenants {
		if db.Tenants[i].ID == id {
			return &db.Tenants[i], true
		}
	}
	return nil, false
}

// DefaultTenant returns the tenant flagged as default, else the first one.
func (db *DB) DefaultTenant() (*model.Tenant, bool) {
	for i := range db.Tenants {
		if db.Tenants[i].IsDefault {
			return &db.Tenants[i], true
		}
	}
	if len(db.Tenants) > 0 {
		return &db.Tenants[0], true
	}
	return nil, false
}
