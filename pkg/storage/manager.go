package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// Manager holds the named disks and the default one.
type Manager struct {
	mu          sync.RWMutex
	disks       map[string]Disk
	defaultName string
}

func NewManager(defaultName string) *Manager {
	return &Manager{disks: make(map[string]Disk), defaultName: defaultName}
}

// FromConfig boots the local disk, plus the s3 disk when S3_BUCKET is set.
// An s3 failure disables that disk with a warning.
func FromConfig(ctx context.Context) (*Manager, error) {
	m := NewManager(config.StorageDefault())

	local, err := NewLocalDisk(config.StorageLocalRoot(), config.StorageURL())
	if err != nil {
		return nil, err
	}
	m.Register("local", local)

	if config.StorageS3Bucket() != "" {
		s3Disk, err := NewS3Disk(ctx, S3Config{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			URL:      config.StorageS3URL(),
		})
		if err != nil {
			logger.Warn("storage: s3 disk disabled", "error", err)
		} else {
			m.Register("s3", s3Disk)
		}
	}

	if _, err := m.Disk(m.defaultName); err != nil {
		logger.Warn("storage: default disk unavailable, using local", "disk", m.defaultName)
		m.defaultName = "local"
	}
	return m, nil
}

// Register adds or replaces a named disk.
func (m *Manager) Register(name string, d Disk) {
	m.mu.Lock()
	m.disks[name] = d
	m.mu.Unlock()
}

// Disk returns the named disk.
func (m *Manager) Disk(name string) (Disk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.disks[name]
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured", name)
	}
	return d, nil
}

// Default returns the STORAGE_DISK disk.
func (m *Manager) Default() Disk {
	d, err := m.Disk(m.defaultName)
	if err != nil {
		panic(err)
	}
	return d
}

// Local returns the local disk when it is registered.
func (m *Manager) Local() (*LocalDisk, bool) {
	d, err := m.Disk("local")
	if err != nil {
		return nil, false
	}
	l, ok := d.(*LocalDisk)
	return l, ok
}

// URLs maps keys to public URLs on the default disk.
func (m *Manager) URLs(keys []string) []string {
	d := m.Default()
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = d.URL(k)
	}
	return out
}
