package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"rims/feature/inventory/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Config holds tunables for the reconciliation engine.
type Config struct {
	// RecentLimit is the default number of entries returned by the
	// recently-changed views when the caller passes no limit.
	RecentLimit int `mapstructure:"recent_limit" default:"10"`
}

// Engine computes reconciled inventory views from the ledger.
type Engine struct {
	db     *gorm.DB
	logger *zap.Logger
	cfg    Config
}

// New creates a reconciliation engine.
func New(db *gorm.DB, logger *zap.Logger, cfg Config) *Engine {
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = 10
	}
	return &Engine{db: db, logger: logger, cfg: cfg}
}

// LatestForSite returns the reconciled inventory of a site: one row per
// product, the most recent non-deleted ledger entry, ordered by product name.
// If asOf is non-nil only rows with modified <= asOf are considered.
// An empty result is valid; a site with no inventory yields no rows.
func (e *Engine) LatestForSite(ctx context.Context, siteID uint, asOf *time.Time) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := e.db.WithContext(ctx).
		Preload("Product").
		Where("site_id = ?", siteID).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger for site %d: %w", siteID, err)
	}

	latest := reconcile(items, asOf, func(it models.InventoryItem) string {
		return it.ProductCode
	})

	sort.SliceStable(latest, func(i, j int) bool {
		ni, nj := latest[i].Product.Name, latest[j].Product.Name
		if ni != nj {
			return ni < nj
		}
		return latest[i].ProductCode < latest[j].ProductCode
	})
	return latest, nil
}

// LatestForProduct returns the reconciled presence of one product across all
// sites: the most recent non-deleted ledger entry per site, ordered by site
// name.
func (e *Engine) LatestForProduct(ctx context.Context, code string, asOf *time.Time) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := e.db.WithContext(ctx).
		Preload("Site").
		Where("product_code = ?", models.NormalizeProductCode(code)).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger for product %s: %w", code, err)
	}

	latest := reconcile(items, asOf, func(it models.InventoryItem) string {
		return fmt.Sprintf("%d", it.SiteID)
	})

	sort.SliceStable(latest, func(i, j int) bool {
		ni, nj := latest[i].Site.Name, latest[j].Site.Name
		if ni != nj {
			return ni < nj
		}
		return latest[i].SiteID < latest[j].SiteID
	})
	return latest, nil
}

// TotalForSite sums the reconciled quantities of a site. Raw ledger rows are
// not summed; only the winning row per product counts.
func (e *Engine) TotalForSite(ctx context.Context, siteID uint) (int64, error) {
	latest, err := e.LatestForSite(ctx, siteID, nil)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, it := range latest {
		total += int64(it.Quantity)
	}
	return total, nil
}

// History returns every ledger row for a (site, product) pair, newest first,
// optionally cut off at asOf. Rows are returned as stored; nothing is
// reconciled away.
func (e *Engine) History(ctx context.Context, siteID uint, code string, asOf *time.Time) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := e.db.WithContext(ctx).
		Where("site_id = ? AND product_code = ?", siteID, models.NormalizeProductCode(code)).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load history for site %d product %s: %w", siteID, code, err)
	}

	items = cutoff(items, asOf)
	sortByOrderKey(items)
	reverse(items)
	return items, nil
}

// RecentSites walks the global ledger newest-first and collects the first
// `limit` distinct sites. Later rows for an already-seen site are skipped,
// not double-counted. Sites are returned in reverse-chronological order of
// their most recent change.
func (e *Engine) RecentSites(ctx context.Context, limit int) ([]models.Site, error) {
	if limit <= 0 {
		limit = e.cfg.RecentLimit
	}

	var items []models.InventoryItem
	if err := e.db.WithContext(ctx).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	sortByOrderKey(items)
	reverse(items)

	seen := make(map[uint]struct{})
	order := make([]uint, 0, limit)
	for _, it := range items {
		if _, ok := seen[it.SiteID]; ok {
			continue
		}
		seen[it.SiteID] = struct{}{}
		order = append(order, it.SiteID)
		if len(order) == limit {
			break
		}
	}
	if len(order) == 0 {
		return []models.Site{}, nil
	}

	var sites []models.Site
	if err := e.db.WithContext(ctx).Where("id IN ?", order).Find(&sites).Error; err != nil {
		return nil, fmt.Errorf("failed to load recent sites: %w", err)
	}
	byID := make(map[uint]models.Site, len(sites))
	for _, s := range sites {
		byID[s.ID] = s
	}
	out := make([]models.Site, 0, len(order))
	for _, id := range order {
		if s, ok := byID[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// RecentProducts walks the global ledger newest-first and collects the most
// recent ledger row of the first `limit` distinct products.
func (e *Engine) RecentProducts(ctx context.Context, limit int) ([]models.InventoryItem, error) {
	if limit <= 0 {
		limit = e.cfg.RecentLimit
	}

	var items []models.InventoryItem
	if err := e.db.WithContext(ctx).Preload("Product").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	sortByOrderKey(items)
	reverse(items)

	seen := make(map[string]struct{})
	out := make([]models.InventoryItem, 0, limit)
	for _, it := range items {
		if _, ok := seen[it.ProductCode]; ok {
			continue
		}
		seen[it.ProductCode] = struct{}{}
		out = append(out, it)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// reconcile picks the winning row per key: stable-sort ascending on the
// composite order key, then let later rows overwrite earlier ones. Rows whose
// winner is a deletion marker are dropped.
func reconcile(items []models.InventoryItem, asOf *time.Time, keyFn func(models.InventoryItem) string) []models.InventoryItem {
	items = cutoff(items, asOf)
	sortByOrderKey(items)

	latest := make(map[string]models.InventoryItem)
	order := make([]string, 0)
	for _, it := range items {
		key := keyFn(it)
		if _, ok := latest[key]; !ok {
			order = append(order, key)
		}
		latest[key] = it
	}

	out := make([]models.InventoryItem, 0, len(order))
	for _, key := range order {
		it := latest[key]
		if it.Deleted {
			// A pair whose latest row is a deletion has no current
			// inventory. A later non-deleted row would have won here,
			// so deletion is not sticky.
			continue
		}
		out = append(out, it)
	}
	return out
}

// cutoff filters rows to modified <= asOf. Nil means no cutoff.
func cutoff(items []models.InventoryItem, asOf *time.Time) []models.InventoryItem {
	if asOf == nil {
		return items
	}
	out := items[:0]
	for _, it := range items {
		if !it.Modified.After(*asOf) {
			out = append(out, it)
		}
	}
	return out
}

// sortByOrderKey sorts ascending by (modified, modified_microseconds) with
// the primary key as tie-break. Ties on the full composite should not occur
// in practice; the ID tie-break keeps the outcome deterministic if they do.
func sortByOrderKey(items []models.InventoryItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Audit.Before(b.Audit) {
			return true
		}
		if b.Audit.Before(a.Audit) {
			return false
		}
		return a.ID < b.ID
	})
}

func reverse(items []models.InventoryItem) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}
