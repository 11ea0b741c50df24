// Package notification pushes "equipment available again" messages to
// operators who subscribed to specific assets. It observes lifecycle
// transitions; it is not a messaging channel.
package notification

import (
	"context"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"fieldops-backend/internal/model"
)

// Sender sends a single web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real Sender backed by the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool fans asset-available events out to push subscriptions.
type WorkerPool struct {
	size    int
	jobs    chan string
	db      *gorm.DB
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a worker pool of the given size.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan string, size),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	logrus.WithField("worker", id).Debug("notification worker started")
	for {
		select {
		case assetID := <-wp.jobs:
			wp.notifyAssetAvailable(ctx, assetID)
		case <-ctx.Done():
			logrus.WithField("worker", id).Debug("notification worker stopped")
			return
		}
	}
}

// Dispatch queues an asset-available event. Called by the lifecycle
// engine when a transition lands on Available.
func (wp *WorkerPool) Dispatch(assetID string) {
	wp.jobs <- assetID
}

func (wp *WorkerPool) notifyAssetAvailable(ctx context.Context, assetID string) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Joins("JOIN subscription_asset_mapping sam ON sam.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("sam.asset_id = ?", assetID).
		Find(&subscriptions).Error
	if err != nil {
		logrus.WithField("asset_id", assetID).WithError(err).Error("failed to fetch subscriptions")
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	label := assetID
	var asset model.Asset
	if err := wp.db.WithContext(ctx).Select("name").First(&asset, "id = ?", assetID).Error; err != nil {
		logrus.WithField("asset_id", assetID).WithError(err).Warn("failed to fetch asset name")
	} else if asset.Name != "" {
		label = asset.Name
	}

	payload := []byte(fmt.Sprintf("Equipo %s disponible nuevamente", label))
	for _, sub := range subscriptions {
		wp.send(ctx, sub, payload)
	}
}

func (wp *WorkerPool) send(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		logrus.WithField("endpoint", sub.Endpoint).WithError(err).Error("failed to send notification")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		logrus.WithField("endpoint", sub.Endpoint).Info("subscription expired, deleting")
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			logrus.WithField("endpoint", sub.Endpoint).WithError(err).Error("failed to delete expired subscription")
		}
	}
}
