package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"fieldops-backend/internal/model"
	"fieldops-backend/internal/store"
)

// Notifier is told when an asset becomes available again, so subscribed
// operators can be pushed a message. The engine tolerates a nil notifier.
type Notifier interface {
	Dispatch(assetID string)
}

// Engine is the sole writer of asset state. Every operation re-reads the
// aggregate through the persistence port, applies one transition and
// writes the whole aggregate back. Callers supply the timestamp and the
// acting operator; the engine never reads a global clock or user.
type Engine struct {
	store    store.Store
	notifier Notifier
}

// NewEngine creates a lifecycle engine on top of the persistence port.
func NewEngine(s store.Store, n Notifier) *Engine {
	return &Engine{store: s, notifier: n}
}

// Create enters a new piece of equipment into inventory. Serial numbers
// are not checked for duplicates here; uniqueness is an import-time
// concern.
func (e *Engine) Create(ctx context.Context, in CreateIntent, now time.Time, actor string) (*model.Asset, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	a := NewAsset(uuid.NewString(), uuid.NewString(), in, now, actor)
	if err := e.store.SaveAsset(ctx, a); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"asset_id": a.ID,
		"serial":   a.SerialNumber,
		"actor":    actor,
	}).Info("asset entered inventory")
	return a, nil
}

// Assign deploys an asset to a client site, closing any assignment still
// open from a previous deployment.
func (e *Engine) Assign(ctx context.Context, assetID string, in AssignIntent, now time.Time, actor string) (*model.Asset, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	a, err := e.store.LoadAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	updated, err := ApplyAssign(a, in, uuid.NewString(), now, actor)
	if err != nil {
		return nil, err
	}
	if err := e.store.SaveAsset(ctx, updated); err != nil {
		return nil, err
	}
	e.logTransition(a.Status, updated.Status, assetID, actor)
	return updated, nil
}

// SendToWorkshop records a repair cycle and parks the asset in workshop
// status.
func (e *Engine) SendToWorkshop(ctx context.Context, assetID string, in WorkshopIntent, now time.Time, actor string) (*model.Asset, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	a, err := e.store.LoadAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	updated, err := ApplySendToWorkshop(a, in, uuid.NewString(), uuid.NewString(), now, actor)
	if err != nil {
		return nil, err
	}
	if err := e.store.SaveAsset(ctx, updated); err != nil {
		return nil, err
	}
	e.logTransition(a.Status, updated.Status, assetID, actor)
	return updated, nil
}

// ChangeStatus moves an asset to Available or Inactive. A no-op change
// is returned as-is without touching storage.
func (e *Engine) ChangeStatus(ctx context.Context, assetID string, newStatus model.AssetStatus, reason string, now time.Time, actor string) (*model.Asset, error) {
	a, err := e.store.LoadAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	updated, err := ApplyChangeStatus(a, newStatus, reason, uuid.NewString(), now, actor)
	if err != nil {
		return nil, err
	}
	if updated == a {
		return a, nil
	}
	if err := e.store.SaveAsset(ctx, updated); err != nil {
		return nil, err
	}
	e.logTransition(a.Status, updated.Status, assetID, actor)
	if a.Status != model.StatusAvailable && updated.Status == model.StatusAvailable && e.notifier != nil {
		e.notifier.Dispatch(assetID)
	}
	return updated, nil
}

// Delete removes an asset permanently. Terminal; no tombstone is kept.
func (e *Engine) Delete(ctx context.Context, assetID string, actor string) error {
	if err := e.store.DeleteAsset(ctx, assetID); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"asset_id": assetID,
		"actor":    actor,
	}).Warn("asset deleted from inventory")
	return nil
}

func (e *Engine) logTransition(from, to model.AssetStatus, assetID, actor string) {
	logrus.WithFields(logrus.Fields{
		"asset_id": assetID,
		"from":     from,
		"to":       to,
		"actor":    actor,
	}).Info("asset status changed")
}
