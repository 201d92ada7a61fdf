package service

import (
	"context"
	"fmt"
	"strings"

	"gym-pos-service/internal/models"
	"gym-pos-service/internal/redisclient"
	"gym-pos-service/internal/store"
	"gym-pos-service/internal/util"

	"go.uber.org/zap"
)

// InventoryService handles stock operations with a Redis fast path and a
// database fallback. Services carry no stock and pass through untouched.
type InventoryService struct {
	store  *store.Store
	redis  *redisclient.Client
	logger *zap.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(store *store.Store, redis *redisclient.Client) *InventoryService {
	return &InventoryService{
		store:  store,
		redis:  redis,
		logger: util.NamedLogger("inventory"),
	}
}

// Reserve reserves stock for a product. Returns false when available stock
// is insufficient.
func (is *InventoryService) Reserve(ctx context.Context, productID int64, quantity int) (bool, error) {
	ctx, span := util.StartSpan(ctx, "InventoryService.Reserve")
	defer span.End()

	success, err := is.redis.ReserveStock(ctx, productID, quantity)
	if err != nil {
		is.logger.Warn("Redis reservation failed, falling back to DB",
			zap.Int64("product_id", productID),
			zap.Error(err))

		return is.reserveDB(ctx, productID, quantity)
	}

	if !success {
		return false, nil
	}

	if err := is.store.ReserveStockTx(ctx, productID, quantity); err != nil {
		// Redis said yes but the database disagreed; undo the fast path so
		// the two stay consistent.
		is.logger.Error("DB reservation failed after Redis reserve",
			zap.Int64("product_id", productID),
			zap.Error(err))
		if rerr := is.redis.ReleaseStock(ctx, productID, quantity); rerr != nil {
			is.logger.Error("Failed to undo Redis reservation", zap.Error(rerr))
		}
		if strings.Contains(err.Error(), "insufficient stock") {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// reserveDB reserves stock using a database transaction (fallback)
func (is *InventoryService) reserveDB(ctx context.Context, productID int64, quantity int) (bool, error) {
	err := is.store.ReserveStockTx(ctx, productID, quantity)
	if err != nil {
		if strings.Contains(err.Error(), "insufficient stock") {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Release releases reserved stock (compensation)
func (is *InventoryService) Release(ctx context.Context, productID int64, quantity int) error {
	ctx, span := util.StartSpan(ctx, "InventoryService.Release")
	defer span.End()

	if err := is.redis.ReleaseStock(ctx, productID, quantity); err != nil {
		util.StockOperationsFailed.WithLabelValues("release").Inc()
		is.logger.Error("Failed to release stock in Redis",
			zap.Int64("product_id", productID),
			zap.Error(err))
	}

	return is.store.ReleaseStock(ctx, productID, quantity)
}

// Commit commits reserved stock and returns the remaining available units.
func (is *InventoryService) Commit(ctx context.Context, productID int64, quantity int) (int, error) {
	ctx, span := util.StartSpan(ctx, "InventoryService.Commit")
	defer span.End()

	available, err := is.redis.CommitStock(ctx, productID, quantity)
	if err != nil {
		util.StockOperationsFailed.WithLabelValues("commit").Inc()
		is.logger.Error("Failed to commit stock in Redis",
			zap.Int64("product_id", productID),
			zap.Error(err))
	}

	if dberr := is.store.CommitStock(ctx, productID, quantity); dberr != nil {
		util.StockOperationsFailed.WithLabelValues("commit").Inc()
		return available, dberr
	}

	if err != nil {
		// Redis did not report a count, so read it back from the database.
		// A failed lookup must surface as an error rather than a zero
		// count, which callers would read as the shelf being empty.
		inv, ierr := is.store.GetInventory(ctx, productID)
		if ierr != nil {
			return 0, fmt.Errorf("failed to read available stock: %w", ierr)
		}
		return inv.Available, nil
	}
	return available, nil
}

// SyncToRedis seeds Redis with the database inventory at startup.
func (is *InventoryService) SyncToRedis(ctx context.Context) error {
	is.logger.Info("Starting inventory sync to Redis")

	list, err := is.store.GetInventoryList(ctx)
	if err != nil {
		return fmt.Errorf("failed to get inventory list: %w", err)
	}

	for _, inv := range list {
		if err := is.redis.InitInventory(ctx, inv.ProductID, inv.Available, inv.Reserved); err != nil {
			is.logger.Error("Failed to init Redis inventory",
				zap.Int64("product_id", inv.ProductID),
				zap.Error(err))
		}
	}

	is.logger.Info("Inventory sync completed", zap.Int("count", len(list)))
	return nil
}

// GetInventory retrieves inventory for a product
func (is *InventoryService) GetInventory(ctx context.Context, productID int64) (*models.Inventory, error) {
	return is.store.GetInventory(ctx, productID)
}
