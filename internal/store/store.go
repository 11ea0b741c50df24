package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"fieldops-backend/internal/model"
)

// ErrAssetNotFound is returned when an operation references an asset ID
// that does not exist.
var ErrAssetNotFound = errors.New("asset not found")

// ErrClientNotFound is returned when a projection references an unknown
// client ID.
var ErrClientNotFound = errors.New("client not found")

// ErrConcurrentModification is returned by SaveAsset when the aggregate
// was changed by another writer since it was loaded.
var ErrConcurrentModification = errors.New("asset modified concurrently")

// Store is the persistence port. Assets are loaded and saved as whole
// aggregates; clients are read-only from this subsystem's point of view.
type Store interface {
	LoadAsset(ctx context.Context, id string) (*model.Asset, error)
	LoadAllAssets(ctx context.Context) ([]model.Asset, error)
	SaveAsset(ctx context.Context, a *model.Asset) error
	DeleteAsset(ctx context.Context, id string) error

	ListSerialNumbers(ctx context.Context) (map[string]struct{}, error)

	GetClient(ctx context.Context, id string) (*model.Client, error)
	ListClients(ctx context.Context) ([]model.Client, error)

	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying connection for the subscription handlers.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// LoadAsset fetches one aggregate by ID.
func (s *gormStore) LoadAsset(ctx context.Context, id string) (*model.Asset, error) {
	var a model.Asset
	if err := s.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, fmt.Errorf("failed to load asset %s: %w", id, err)
	}
	return &a, nil
}

// LoadAllAssets fetches every aggregate.
func (s *gormStore) LoadAllAssets(ctx context.Context) ([]model.Asset, error) {
	var assets []model.Asset
	if err := s.db.WithContext(ctx).Find(&assets).Error; err != nil {
		return nil, fmt.Errorf("failed to load assets: %w", err)
	}
	return assets, nil
}

// SaveAsset writes the whole aggregate back. Existing rows are replaced
// only when the in-memory version matches the stored one; a mismatch means
// another writer got there first.
func (s *gormStore) SaveAsset(ctx context.Context, a *model.Asset) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if a.Version == 0 {
			a.Version = 1
			if err := tx.Create(a).Error; err != nil {
				a.Version = 0
				return fmt.Errorf("failed to create asset %s: %w", a.ID, err)
			}
			return nil
		}

		loadedVersion := a.Version
		a.Version = loadedVersion + 1
		res := tx.Model(&model.Asset{}).
			Where("id = ? AND version = ?", a.ID, loadedVersion).
			Select("name", "description", "serial_number", "image_url", "status",
				"history", "maintenance_log", "status_logs", "version").
			Updates(*a)
		if res.Error != nil {
			a.Version = loadedVersion
			return fmt.Errorf("failed to save asset %s: %w", a.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			a.Version = loadedVersion
			var count int64
			if err := tx.Model(&model.Asset{}).Where("id = ?", a.ID).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to save asset %s: %w", a.ID, err)
			}
			if count == 0 {
				return ErrAssetNotFound
			}
			return ErrConcurrentModification
		}
		return nil
	})
}

// DeleteAsset removes an aggregate permanently. Deletion is terminal and
// leaves no tombstone.
func (s *gormStore) DeleteAsset(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&model.Asset{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete asset %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAssetNotFound
	}
	return nil
}

// ListSerialNumbers returns the set of serial numbers currently in
// storage. Used by the bulk importer to decide create-vs-skip.
func (s *gormStore) ListSerialNumbers(ctx context.Context) (map[string]struct{}, error) {
	var serials []string
	if err := s.db.WithContext(ctx).Model(&model.Asset{}).Pluck("serial_number", &serials).Error; err != nil {
		return nil, fmt.Errorf("failed to list serial numbers: %w", err)
	}
	set := make(map[string]struct{}, len(serials))
	for _, sn := range serials {
		set[sn] = struct{}{}
	}
	return set, nil
}

// GetClient fetches one client. The ledger never writes clients.
func (s *gormStore) GetClient(ctx context.Context, id string) (*model.Client, error) {
	var c model.Client
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to load client %s: %w", id, err)
	}
	return &c, nil
}

// ListClients fetches all clients, for the assignment form lookups.
func (s *gormStore) ListClients(ctx context.Context) ([]model.Client, error) {
	var clients []model.Client
	if err := s.db.WithContext(ctx).Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}
