// internal/service/intake/infrastructure/gorm_model.go
package infrastructure

import (
	"time"

	"gorm.io/gorm"

	"boost/internal/service/intake/domain"
)

// PlatformModel 对应数据库中的 platforms 表
type PlatformModel struct {
	gorm.Model
	Name string `gorm:"uniqueIndex;size:64"`
}

func (PlatformModel) TableName() string {
	return "platforms"
}

// ServiceModel 对应数据库中的 services 表
type ServiceModel struct {
	gorm.Model
	Platform    string             `gorm:"index;size:64"`
	Type        domain.ServiceType `gorm:"size:32"`
	DisplayName string             `gorm:"size:128"`
	MinQty      int
	MaxQty      int
	PricingMode domain.PricingMode `gorm:"size:16"`
	Description string             `gorm:"type:text"`
}

func (ServiceModel) TableName() string {
	return "services"
}

// PricingRuleModel 对应数据库中的 pricing_rules 表
type PricingRuleModel struct {
	gorm.Model
	ServiceID    uint               `gorm:"index"`
	Mode         domain.PricingMode `gorm:"size:16"`
	UnitSize     int
	PriceUSD     float64 `gorm:"type:decimal(10,2)"`
	QtyFrom      int
	QtyTo        int
	PricePerUnit float64 `gorm:"type:decimal(10,4)"`
}

func (PricingRuleModel) TableName() string {
	return "pricing_rules"
}

// OrderModel 对应数据库中的 orders 表
type OrderModel struct {
	ID              string `gorm:"primaryKey;size:36"`
	UserID          string `gorm:"index;size:64"`
	CorrelationID   string `gorm:"uniqueIndex;size:64"`
	Platform        string `gorm:"size:64"`
	ServiceID       string `gorm:"size:36"`
	ServiceType     string `gorm:"size:32"`
	Target          string `gorm:"size:255"`
	Quantity        int
	Comments        string  `gorm:"type:text"` // 逗号拼接存储
	BasePrice       float64 `gorm:"type:decimal(10,2)"`
	Fee             float64 `gorm:"type:decimal(10,2)"`
	TotalPrice      float64 `gorm:"type:decimal(10,2)"`
	ProviderOrderID string  `gorm:"size:64"`
	ProviderStatus  string  `gorm:"size:32"`
	Status          string  `gorm:"size:16;index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (OrderModel) TableName() string {
	return "orders"
}
