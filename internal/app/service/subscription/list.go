package subscription

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"

	"github.com/vendahub/billing/internal/models"
	"github.com/vendahub/billing/pkg/types"
)

// ListItem is a subscription joined with the product display fields the
// account dashboard renders.
type ListItem struct {
	*models.Subscription
	ProductName  string          `json:"product_name"`
	ProductImage string          `json:"product_image"`
	ProductPrice decimal.Decimal `json:"product_price"`
}

// List returns all subscriptions for a user, newest first. Read-only.
func (s *Service) List(ctx context.Context, userID string) ([]*ListItem, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrValidation)
	}

	var subs []*models.Subscription
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return []*ListItem{}, nil
	}

	productIDs := lo.Uniq(lo.Map(subs, func(sub *models.Subscription, _ int) string {
		return sub.ProductID
	}))
	var products []*models.Product
	if err := s.db.WithContext(ctx).Where("id IN ?", productIDs).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	byID := lo.KeyBy(products, func(p *models.Product) string { return p.ID })

	return lo.Map(subs, func(sub *models.Subscription, _ int) *ListItem {
		item := &ListItem{Subscription: sub}
		if p, ok := byID[sub.ProductID]; ok {
			item.ProductName = p.Name
			item.ProductImage = p.ImageURL
			item.ProductPrice = p.Price
		}
		return item
	}), nil
}

// Admin scan: filtered, paginated listing for back-office tables.

type ScanRequest struct {
	Filters   []*types.ScanFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanResponse struct {
	Items []*models.Subscription `json:"items"`
	Total int64                  `json:"total"`
}

// filtersAnd combines multiple ScanFilter into a single clause.Expression.
type filtersAnd struct{ filters []*types.ScanFilter }

func (w filtersAnd) Build(builder clause.Builder) {
	if len(w.filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := make([]clause.Expression, 0, len(w.filters))
	for _, f := range w.filters {
		exprs = append(exprs, f)
	}
	clause.And(exprs...).Build(builder)
}

// Scan implements the admin listing with filters and pagination.
func (s *Service) Scan(ctx context.Context, req *ScanRequest) (*ScanResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.From < 0 {
		req.From = 0
	}

	tx := s.db.WithContext(ctx).Model(&models.Subscription{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{filtersAnd{filters: req.Filters}}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	q := tx.Limit(req.Size)
	if req.From > 0 {
		q = q.Offset(req.From)
	}
	if req.SortBy != "" {
		q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: req.SortBy}, Desc: req.SortOrder != "asc"}}})
	}

	var rows []*models.Subscription
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return &ScanResponse{Items: rows, Total: total}, nil
}
