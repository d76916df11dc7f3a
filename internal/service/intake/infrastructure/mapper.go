// internal/service/intake/infrastructure/mapper.go
package infrastructure

import (
	"strconv"
	"strings"

	"boost/internal/service/intake/domain"
)

// ToDomainService 将数据库模型转换为领域模型
func ToDomainService(model *ServiceModel) *domain.Service {
	if model == nil {
		return nil
	}
	return &domain.Service{
		ID:          strconv.FormatUint(uint64(model.ID), 10),
		Platform:    model.Platform,
		Type:        model.Type,
		DisplayName: model.DisplayName,
		MinQty:      model.MinQty,
		MaxQty:      model.MaxQty,
		PricingMode: model.PricingMode,
		Description: model.Description,
	}
}

// ToDomainPricingRule 将数据库模型转换为领域模型
func ToDomainPricingRule(model *PricingRuleModel) domain.PricingRule {
	return domain.PricingRule{
		ServiceID:    strconv.FormatUint(uint64(model.ServiceID), 10),
		Mode:         model.Mode,
		UnitSize:     model.UnitSize,
		PriceUSD:     model.PriceUSD,
		QtyFrom:      model.QtyFrom,
		QtyTo:        model.QtyTo,
		PricePerUnit: model.PricePerUnit,
	}
}

// FromDomainOrder 将订单领域模型转换为数据库模型（用于插入或更新）
func FromDomainOrder(o *domain.Order) *OrderModel {
	if o == nil {
		return nil
	}
	return &OrderModel{
		ID:              o.ID,
		UserID:          o.UserID,
		CorrelationID:   o.CorrelationID,
		Platform:        o.Platform,
		ServiceID:       o.ServiceID,
		ServiceType:     string(o.ServiceType),
		Target:          o.Target,
		Quantity:        o.Quantity,
		Comments:        strings.Join(o.Comments, ","),
		BasePrice:       o.BasePrice,
		Fee:             o.Fee,
		TotalPrice:      o.TotalPrice,
		ProviderOrderID: o.ProviderOrderID,
		ProviderStatus:  o.ProviderStatus,
		Status:          string(o.Status),
		CreatedAt:       o.CreatedAt,
	}
}

// ToDomainOrder 将数据库模型转换回订单领域模型
func ToDomainOrder(model *OrderModel) *domain.Order {
	if model == nil {
		return nil
	}
	var comments []string
	if model.Comments != "" {
		comments = strings.Split(model.Comments, ",")
	}
	return &domain.Order{
		ID:              model.ID,
		UserID:          model.UserID,
		CorrelationID:   model.CorrelationID,
		Platform:        model.Platform,
		ServiceID:       model.ServiceID,
		ServiceType:     domain.ServiceType(model.ServiceType),
		Target:          model.Target,
		Quantity:        model.Quantity,
		Comments:        comments,
		BasePrice:       model.BasePrice,
		Fee:             model.Fee,
		TotalPrice:      model.TotalPrice,
		ProviderOrderID: model.ProviderOrderID,
		ProviderStatus:  model.ProviderStatus,
		Status:          domain.OrderStatus(model.Status),
		CreatedAt:       model.CreatedAt,
	}
}
