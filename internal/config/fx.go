package config

import (
	"github.com/tripshield/tripshield/pkg/db"
	"go.uber.org/fx"
)

func dbConfig(cfg Config) db.Config {
	return db.Config{
		Type:            cfg.DBType,
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		Name:            cfg.DBName,
		User:            cfg.DBUser,
		Password:        cfg.DBPassword,
		SSLMode:         cfg.DBSSLMode,
		MaxIdleConn:     cfg.DBMaxIdleConn,
		MaxOpenConn:     cfg.DBMaxOpenConn,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	}
}

var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(dbConfig),
	fx.Provide(NewPricingPolicyHolder),
)
