package worker

import (
	"context"
	"log"

	"order-analytics/internal/broker"
	"order-analytics/internal/models"
	"order-analytics/internal/redisclient"
	"order-analytics/internal/util"

	"go.uber.org/zap"
)

// CacheWorker listens to the order system's mutation events and drops
// the affected organization's cached raw rows, so the next report sees
// fresh data. It never writes order data itself.
type CacheWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.OrderEventHandler
	logger       *zap.Logger
}

// NewCacheWorker creates a new cache invalidation worker
func NewCacheWorker(consumer *broker.Consumer, cache *redisclient.Client) *CacheWorker {
	logger := util.GetLogger()
	eventHandler := broker.NewOrderEventHandler()

	eventHandler.OnOrderMutated(func(ctx context.Context, event *models.OrderMutatedEvent) error {
		if event.Org == "" {
			return nil
		}
		if err := cache.InvalidateRows(ctx, event.Org); err != nil {
			logger.Error("Failed to invalidate row cache",
				zap.String("org", event.Org),
				zap.Error(err))
			return err
		}
		util.CacheInvalidationsTotal.Inc()
		logger.Info("Row cache invalidated",
			zap.String("org", event.Org),
			zap.Int64("order_id", event.OrderID))
		return nil
	})

	return &CacheWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
		logger:       logger,
	}
}

// Start starts the worker
func (w *CacheWorker) Start(ctx context.Context) error {
	log.Println("Starting cache invalidation worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *CacheWorker) Stop() error {
	log.Println("Stopping cache invalidation worker...")
	return w.consumer.Close()
}
