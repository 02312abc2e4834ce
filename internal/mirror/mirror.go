// Package mirror keeps the last known snapshot in an embedded badger
// database. It is read only when the remote store cannot be reached at
// startup.
package mirror

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gymdesk/pkg/logger"
	"gymdesk/pkg/model"

	"github.com/dgraph-io/badger/v4"
)

const (
	KeyBaseSchedule   = "gs_base_schedule"
	KeyWeeklySchedule = "gs_weekly_schedule"
	KeyInventory      = "gs_inventory"
	KeyAdmins         = "gs_admins"
	KeyAdminRequests  = "gs_admin_requests"
	KeyLocations      = "gs_locations"
	KeyActivityLogs   = "gs_activity_logs"
	KeyGreeting       = "gs_greeting"
)

var ErrEmpty = errors.New("mirror holds no snapshot")

type Config struct {
	// Path is ignored when InMemory is set.
	Path       string
	InMemory   bool
	SyncWrites bool
}

func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true}
}

func InMemoryConfig() Config {
	return Config{InMemory: true}
}

type Mirror struct {
	db  *badger.DB
	log *logger.Logger
}

// badgerLogger routes badger's printf-style logging into slog.
type badgerLogger struct {
	log *logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.log.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.log.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.log.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.log.Debug(fmt.Sprintf(format, args...))
}

func Open(cfg Config, log *logger.Logger) (*Mirror, error) {
	log = log.Component("mirror")

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("mirror path is required")
		}
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create mirror directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1).
		WithLogger(&badgerLogger{log: log})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open mirror database: %w", err)
	}

	log.Info("Local mirror opened", "path", cfg.Path, "in_memory", cfg.InMemory)
	return &Mirror{db: db, log: log}, nil
}

func (m *Mirror) Close() error {
	return m.db.Close()
}

// Save overwrites every key in one transaction.
func (m *Mirror) Save(snap *model.Snapshot) error {
	entries := map[string]any{
		KeyBaseSchedule:   snap.BaseSchedule,
		KeyWeeklySchedule: snap.WeeklySchedule,
		KeyInventory:      snap.Inventory,
		KeyAdmins:         snap.Admins,
		KeyAdminRequests:  snap.AdminRequests,
		KeyLocations:      snap.Locations,
		KeyActivityLogs:   snap.ActivityLogs,
		KeyGreeting:       snap.Greeting,
	}

	err := m.db.Update(func(txn *badger.Txn) error {
		for key, value := range entries {
			raw, err := json.Marshal(value)
			if err != nil {
				return fmt.Errorf("encode %s: %w", key, err)
			}
			if err := txn.Set([]byte(key), raw); err != nil {
				return fmt.Errorf("write %s: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save mirror: %w", err)
	}
	return nil
}

// Load rebuilds a snapshot from whatever keys are present. Missing keys
// leave their collection empty; no keys at all yields ErrEmpty.
func (m *Mirror) Load() (*model.Snapshot, error) {
	snap := &model.Snapshot{}
	targets := map[string]any{
		KeyBaseSchedule:   &snap.BaseSchedule,
		KeyWeeklySchedule: &snap.WeeklySchedule,
		KeyInventory:      &snap.Inventory,
		KeyAdmins:         &snap.Admins,
		KeyAdminRequests:  &snap.AdminRequests,
		KeyLocations:      &snap.Locations,
		KeyActivityLogs:   &snap.ActivityLogs,
		KeyGreeting:       &snap.Greeting,
	}

	found := 0
	err := m.db.View(func(txn *badger.Txn) error {
		for key, target := range targets {
			item, err := txn.Get([]byte(key))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", key, err)
			}
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("copy %s: %w", key, err)
			}
			if err := json.Unmarshal(raw, target); err != nil {
				m.log.Warn("Discarding unreadable mirror entry", "key", key, "error", err)
				continue
			}
			found++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load mirror: %w", err)
	}
	if found == 0 {
		return nil, ErrEmpty
	}

	snap.Normalize()
	return snap, nil
}
