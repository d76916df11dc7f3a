// internal/service/intake/domain/pricing.go
package domain

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

var (
	// ErrNoPricingConfigured 服务没有任何 flat 计价规则。
	ErrNoPricingConfigured = errors.New("pricing not configured for service")
	// ErrNoTierForQuantity 没有任何区间覆盖请求的数量。
	ErrNoTierForQuantity = errors.New("no pricing tier found for this quantity")
	// ErrUnknownPricingMode 服务声明了未知的计价模式。
	ErrUnknownPricingMode = errors.New("unknown pricing mode")
)

// ResolvePrice 根据服务的计价模式和规则计算基础价格。
// 纯函数：相同输入永远得到相同输出，编辑数量时可以安全重算。
func ResolvePrice(svc *Service, rules []PricingRule, quantity int) (float64, error) {
	switch svc.PricingMode {
	case PricingModeFlat:
		return resolveFlat(rules, quantity)
	case PricingModeTiered:
		return resolveTiered(rules, quantity)
	default:
		return 0, errors.Wrapf(ErrUnknownPricingMode, "mode %q", svc.PricingMode)
	}
}

// resolveFlat 选择第一个 unit_size >= quantity 的规则；
// 数量超过所有规则时回退到最大的 unit_size 规则。
// 计费向上取整到整包: ceil(quantity / unit_size) * price_usd。
func resolveFlat(rules []PricingRule, quantity int) (float64, error) {
	flat := make([]PricingRule, 0, len(rules))
	for _, r := range rules {
		if r.Mode == PricingModeFlat {
			flat = append(flat, r)
		}
	}
	if len(flat) == 0 {
		return 0, ErrNoPricingConfigured
	}
	sort.Slice(flat, func(i, j int) bool { return flat[i].UnitSize < flat[j].UnitSize })

	chosen := flat[len(flat)-1]
	for _, r := range flat {
		if quantity <= r.UnitSize {
			chosen = r
			break
		}
	}

	packs := math.Ceil(float64(quantity) / float64(chosen.UnitSize))
	return packs * chosen.PriceUSD, nil
}

// resolveTiered 选择唯一一条 [qty_from, qty_to] 包含 quantity 的规则（两端闭区间）。
// 区间互不重叠且覆盖所有合法数量，由 Catalog 保证。
func resolveTiered(rules []PricingRule, quantity int) (float64, error) {
	for _, r := range rules {
		if r.Mode != PricingModeTiered {
			continue
		}
		if quantity >= r.QtyFrom && quantity <= r.QtyTo {
			return float64(quantity) * r.PricePerUnit, nil
		}
	}
	return 0, ErrNoTierForQuantity
}
