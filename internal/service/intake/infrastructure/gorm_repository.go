// internal/service/intake/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"boost/internal/service/intake/domain"
)

// GormCatalogRepository 是 domain.Catalog 的 GORM 实现
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository 创建一个新的目录仓储实例
func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

var _ domain.Catalog = (*GormCatalogRepository)(nil)

func (r *GormCatalogRepository) ListPlatforms(ctx context.Context) ([]domain.Platform, error) {
	var models []PlatformModel
	if err := r.db.WithContext(ctx).Order("name").Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list platforms")
	}
	out := make([]domain.Platform, 0, len(models))
	for _, m := range models {
		out = append(out, domain.Platform{Name: m.Name})
	}
	return out, nil
}

func (r *GormCatalogRepository) ListServices(ctx context.Context, platform string) ([]domain.Service, error) {
	var models []ServiceModel
	err := r.db.WithContext(ctx).
		Where("platform = ?", platform).
		Order("display_name").
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list services for platform %s", platform)
	}
	out := make([]domain.Service, 0, len(models))
	for i := range models {
		out = append(out, *ToDomainService(&models[i]))
	}
	return out, nil
}

// GetService 按 ID 查找服务；不存在时返回 (nil, nil)。
func (r *GormCatalogRepository) GetService(ctx context.Context, id string) (*domain.Service, error) {
	numericID, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return nil, nil
	}
	var model ServiceModel
	if err := r.db.WithContext(ctx).First(&model, numericID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to get service %s", id)
	}
	return ToDomainService(&model), nil
}

// GetPricingRules 返回服务的全部计价规则，flat 规则按 unit_size 升序。
func (r *GormCatalogRepository) GetPricingRules(ctx context.Context, serviceID string) ([]domain.PricingRule, error) {
	numericID, err := strconv.ParseUint(serviceID, 10, 64)
	if err != nil {
		return nil, nil
	}
	var models []PricingRuleModel
	e := r.db.WithContext(ctx).
		Where("service_id = ?", numericID).
		Order("unit_size, qty_from").
		Find(&models).Error
	if e != nil {
		return nil, errors.Wrapf(e, "failed to get pricing rules for service %s", serviceID)
	}
	out := make([]domain.PricingRule, 0, len(models))
	for i := range models {
		out = append(out, ToDomainPricingRule(&models[i]))
	}
	return out, nil
}

// GormOrderRepository 是 domain.OrderRepository 的 GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository 创建一个新的订单仓储实例
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

var _ domain.OrderRepository = (*GormOrderRepository)(nil)

// Save 插入或更新一份订单。
func (r *GormOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	model := FromDomainOrder(order)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return errors.Wrapf(err, "failed to save order %s", order.ID)
	}
	return nil
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var model OrderModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to find order %s", id)
	}
	return ToDomainOrder(&model), nil
}
