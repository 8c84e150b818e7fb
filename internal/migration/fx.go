package migration

import (
	"strings"

	"github.com/tripshield/tripshield/internal/config"
	documentdomain "github.com/tripshield/tripshield/internal/document/domain"
	memberdomain "github.com/tripshield/tripshield/internal/membership/domain"
	paymentdomain "github.com/tripshield/tripshield/internal/payment/domain"
	quotedomain "github.com/tripshield/tripshield/internal/quote/domain"
	ratingdomain "github.com/tripshield/tripshield/internal/rating/domain"
	"github.com/tripshield/tripshield/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if strings.EqualFold(cfg.DBType, "postgres") {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			if err := AutoMigrate(conn); err != nil {
				return err
			}
		}

		return seed.EnsureRatingDefaults(conn)
	}),
)

// AutoMigrate creates the schema from the models for dialects without
// versioned migrations.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&memberdomain.Membership{},
		&memberdomain.Member{},
		&quotedomain.Quote{},
		&quotedomain.QuoteMemberPrice{},
		&quotedomain.ExchangeRate{},
		&quotedomain.ReferralCode{},
		&paymentdomain.Payment{},
		&paymentdomain.PaymentEvent{},
		&paymentdomain.CheckoutSession{},
		&documentdomain.DocumentJob{},
		&ratingdomain.CountryRate{},
		&ratingdomain.AgeBandRate{},
		&ratingdomain.CoverageRate{},
		&ratingdomain.MedicalRate{},
	)
}
