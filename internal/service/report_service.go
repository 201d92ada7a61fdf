package service

import (
	"context"
	"encoding/json"
	"time"

	"gym-pos-service/internal/models"
	"gym-pos-service/internal/redisclient"
	"gym-pos-service/internal/store"
	"gym-pos-service/internal/util"

	"go.uber.org/zap"
)

const reportCacheTTL = 5 * time.Minute

// SalesReport splits subscription sales by plan tag and aggregates product
// sales for the current month.
type SalesReport struct {
	MonthlySubscriptions []models.Subscription   `json:"monthly_subscriptions"`
	SessionSubscriptions []models.Subscription   `json:"session_subscriptions"`
	ProductSales         []store.ProductSalesRow `json:"product_sales"`
	GeneratedAt          time.Time               `json:"generated_at"`
}

// InventoryReportRow joins a product with its stock counts.
type InventoryReportRow struct {
	Product   models.Product `json:"product"`
	Available int            `json:"available"`
	Reserved  int            `json:"reserved"`
}

// InventoryReport splits stocked products by type.
type InventoryReport struct {
	Supplements []InventoryReportRow `json:"supplements"`
	Equipment   []InventoryReportRow `json:"equipment"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// ReportService builds the sales and inventory reports, caching rendered
// payloads in Redis for a few minutes. The cache is invalidated when a
// transaction completes.
type ReportService struct {
	store  *store.Store
	cache  *redisclient.Client
	logger *zap.Logger
}

// NewReportService creates a new report service
func NewReportService(store *store.Store, cache *redisclient.Client) *ReportService {
	return &ReportService{
		store:  store,
		cache:  cache,
		logger: util.NamedLogger("reports"),
	}
}

// Sales builds the sales report for the month containing now.
func (rs *ReportService) Sales(ctx context.Context, now time.Time) (*SalesReport, error) {
	if cached, err := rs.cache.GetCachedReport(ctx, "sales"); err == nil && cached != nil {
		var report SalesReport
		if err := json.Unmarshal(cached, &report); err == nil {
			return &report, nil
		}
	}

	monthly, err := rs.store.GetSubscriptionsByTag(ctx, models.SubscriptionTagMonthly)
	if err != nil {
		return nil, err
	}
	session, err := rs.store.GetSubscriptionsByTag(ctx, models.SubscriptionTagSession)
	if err != nil {
		return nil, err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)
	productSales, err := rs.store.GetProductSales(ctx,
		monthStart.Format(time.RFC3339), monthEnd.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}

	report := &SalesReport{
		MonthlySubscriptions: monthly,
		SessionSubscriptions: session,
		ProductSales:         productSales,
		GeneratedAt:          now,
	}

	rs.cacheReport(ctx, "sales", report)
	return report, nil
}

// Inventory builds the inventory report: all stocked products split into
// supplements and equipment. Services carry no stock and are excluded.
func (rs *ReportService) Inventory(ctx context.Context, now time.Time) (*InventoryReport, error) {
	if cached, err := rs.cache.GetCachedReport(ctx, "inventory"); err == nil && cached != nil {
		var report InventoryReport
		if err := json.Unmarshal(cached, &report); err == nil {
			return &report, nil
		}
	}

	products, err := rs.store.GetProducts(ctx)
	if err != nil {
		return nil, err
	}
	stock, err := rs.store.GetInventoryList(ctx)
	if err != nil {
		return nil, err
	}

	byProduct := make(map[int64]models.Inventory, len(stock))
	for _, inv := range stock {
		byProduct[inv.ProductID] = inv
	}

	report := &InventoryReport{GeneratedAt: now}
	for _, p := range products {
		inv := byProduct[p.ID]
		row := InventoryReportRow{Product: p, Available: inv.Available, Reserved: inv.Reserved}

		switch p.Type {
		case models.ProductTypeSupplement:
			report.Supplements = append(report.Supplements, row)
		case models.ProductTypeEquipment:
			report.Equipment = append(report.Equipment, row)
		}
	}

	rs.cacheReport(ctx, "inventory", report)
	return report, nil
}

// InvalidateSales drops the cached sales report. Called by the worker when a
// transaction completes so the next read is fresh.
func (rs *ReportService) InvalidateSales(ctx context.Context) {
	if err := rs.cache.DeleteCachedReport(ctx, "sales"); err != nil {
		rs.logger.Warn("Failed to invalidate sales report cache", zap.Error(err))
	}
}

func (rs *ReportService) cacheReport(ctx context.Context, name string, report interface{}) {
	data, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := rs.cache.CacheReport(ctx, name, data, reportCacheTTL); err != nil {
		rs.logger.Warn("Failed to cache report", zap.String("report", name), zap.Error(err))
	}
}
