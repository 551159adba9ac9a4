package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// Manager holds the configured disks.
type Manager struct {
	mu          sync.RWMutex
	disks       map[string]Disk
	defaultDisk string
	local       *LocalDisk
}

// NewManager returns a manager whose default disk is name.
func NewManager(local *LocalDisk, defaultDisk string) *Manager {
	m := &Manager{
		disks:       map[string]Disk{"local": local},
		defaultDisk: defaultDisk,
		local:       local,
	}
	return m
}

// Connect boots the local disk at UPLOAD_ROOT and, when S3_BUCKET is set,
// the s3 disk.
func Connect(ctx context.Context) *Manager {
	m := NewManager(NewLocalDisk(config.UploadRoot(), ""), config.StorageDisk())

	if config.StorageS3Bucket() != "" {
		d, err := NewS3Disk(ctx, S3Options{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			URL:      config.StorageS3URL(),
		})
		if err != nil {
			logger.Warn("s3 disk disabled", "error", err)
		} else {
			m.Register("s3", d)
		}
	}
	return m
}

// Register plugs a disk in under name.
func (m *Manager) Register(name string, d Disk) {
	m.mu.Lock()
	m.disks[name] = d
	m.mu.Unlock()
}

// Use returns the named disk.
func (m *Manager) Use(name string) (Disk, error) {
	m.mu.RLock()
	d, ok := m.disks[name]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured", name)
	}
	return d, nil
}

// Default returns the disk named by STORAGE_DISK.
func (m *Manager) Default() (Disk, error) {
	return m.Use(m.defaultDisk)
}

// Local returns the local disk, which also backs /images.
func (m *Manager) Local() *LocalDisk { return m.local }
