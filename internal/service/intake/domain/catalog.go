// internal/service/intake/domain/catalog.go
package domain

// ServiceType 区分可购买服务的种类。
// comment 类服务以评论文本列表下单，数量即评论条数。
type ServiceType string

const (
	ServiceTypeFollower ServiceType = "follower"
	ServiceTypeLike     ServiceType = "like"
	ServiceTypeComment  ServiceType = "comment"
	ServiceTypeView     ServiceType = "view"
)

// PricingMode 定义服务的计价方式。
type PricingMode string

const (
	// PricingModeFlat 按固定大小的“包”计价，不足一包按一包计。
	PricingModeFlat PricingMode = "flat"
	// PricingModeTiered 按数量区间的单价计价。
	PricingModeTiered PricingMode = "tiered"
)

// Platform 是顶级分类（如某个社交网络），只读参考数据。
type Platform struct {
	Name string
}

// Service 是平台下的一个具体可购买服务，只读参考数据。
// 不变量: MinQty <= MaxQty。
type Service struct {
	ID          string
	Platform    string
	Type        ServiceType
	DisplayName string
	MinQty      int
	MaxQty      int
	PricingMode PricingMode
	Description string
}

// IsCommentType 返回该服务是否以评论列表下单。
func (s *Service) IsCommentType() bool {
	return s.Type == ServiceTypeComment
}

// QuantityInRange 校验数量是否落在服务允许的区间内。
func (s *Service) QuantityInRange(n int) bool {
	return n >= s.MinQty && n <= s.MaxQty
}

// PricingRule 属于且仅属于一个服务。
// flat 模式使用 UnitSize/PriceUSD；tiered 模式使用 QtyFrom/QtyTo/PricePerUnit。
type PricingRule struct {
	ServiceID    string
	Mode         PricingMode
	UnitSize     int
	PriceUSD     float64
	QtyFrom      int
	QtyTo        int
	PricePerUnit float64
}
