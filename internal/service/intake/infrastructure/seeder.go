// internal/service/intake/infrastructure/seeder.go
package infrastructure

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"boost/internal/pkg/logger"
	"boost/internal/service/intake/domain"
)

// AutoMigrate 建立全部数据表。
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&PlatformModel{},
		&ServiceModel{},
		&PricingRuleModel{},
		&OrderModel{},
	)
}

// Seed 写入初始目录数据：4 个平台，每个平台 4 类服务，flat 计价。
// 已有数据时跳过，保证幂等。
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&PlatformModel{}).Count(&count).Error; err != nil {
		return errors.Wrap(err, "failed to check existing catalog")
	}
	if count > 0 {
		logger.Logger.Info().Msg("Catalog already seeded, skipping.")
		return nil
	}

	platforms := []string{"instagram", "tiktok", "twitter", "youtube"}
	serviceTypes := []struct {
		Type        domain.ServiceType
		DisplayName string
		MinQty      int
		MaxQty      int
		Description string
		PriceUSD    float64
	}{
		{domain.ServiceTypeFollower, "Followers", 10, 10000, "High quality followers", 3},
		{domain.ServiceTypeLike, "Likes", 10, 10000, "Real likes", 2},
		{domain.ServiceTypeComment, "Comments", 1, 500, "Custom user comments", 10},
		{domain.ServiceTypeView, "Views", 100, 100000, "Real views", 1},
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, name := range platforms {
			if err := tx.Create(&PlatformModel{Name: name}).Error; err != nil {
				return errors.Wrapf(err, "failed to seed platform %s", name)
			}
			for _, st := range serviceTypes {
				svc := ServiceModel{
					Platform:    name,
					Type:        st.Type,
					DisplayName: st.DisplayName,
					MinQty:      st.MinQty,
					MaxQty:      st.MaxQty,
					PricingMode: domain.PricingModeFlat,
					Description: capitalizeSeed(name) + " " + st.Description,
				}
				if err := tx.Create(&svc).Error; err != nil {
					return errors.Wrapf(err, "failed to seed service %s/%s", name, st.Type)
				}
				rule := PricingRuleModel{
					ServiceID: svc.ID,
					Mode:      domain.PricingModeFlat,
					UnitSize:  100,
					PriceUSD:  st.PriceUSD,
				}
				if err := tx.Create(&rule).Error; err != nil {
					return errors.Wrapf(err, "failed to seed pricing for %s/%s", name, st.Type)
				}
			}
		}
		logger.Logger.Info().Int("platforms", len(platforms)).Msg("Catalog seeded.")
		return nil
	})
}

func capitalizeSeed(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
