package storage

import (
	"fmt"

	"github.com/mentionwatch/dashboard/internal/config"
	"github.com/sirupsen/logrus"
)

// New builds the backend selected by STORAGE_BACKEND. The "none" backend
// returns a nil interface and snapshots are not persisted.
func New(cfg *config.Config) (StorageInterface, error) {
	switch cfg.StorageBackend {
	case "", "none":
		logrus.Info("Snapshot storage disabled")
		return nil, nil
	case "file":
		s, err := NewFileStorage(cfg.StorageDir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "azure":
		s, err := NewAzureStorage(cfg.StorageAccount, cfg.StorageContainer)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "redis":
		s, err := NewRedisStorage(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
