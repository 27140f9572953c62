package commands

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/duststorm/duststorm/internal/config"
	"github.com/duststorm/duststorm/internal/users"
)

// loadOrBootstrapUsers loads cfg.UsersFile if it exists, or creates a fresh
// store seeded with the configured bootstrap admin if it doesn't. Returns
// whether the bootstrap admin was just created.
func loadOrBootstrapUsers(cfg *config.Config) (*users.Store, bool, error) {
	f, err := os.Open(cfg.UsersFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, false, err
		}
		store := users.New()
		store.InsertOrUpdate(cfg.Bootstrap.Username, cfg.Bootstrap.Password, users.RoleAdmin)
		if err := saveUsers(cfg.UsersFile, store); err != nil {
			return nil, false, err
		}
		return store, true, nil
	}
	defer func() { _ = f.Close() }()

	store, err := users.Load(f)
	if err != nil {
		return nil, false, err
	}
	return store, false, nil
}

// saveUsers persists store to path, creating its parent directory if needed.
func saveUsers(path string, store *users.Store) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return users.Save(f, store)
}
