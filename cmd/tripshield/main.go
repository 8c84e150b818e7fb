package main

import (
	"log"

	"github.com/bwmarrin/snowflake"
	"github.com/tripshield/tripshield/internal/clock"
	"github.com/tripshield/tripshield/internal/config"
	"github.com/tripshield/tripshield/internal/document"
	"github.com/tripshield/tripshield/internal/logger"
	"github.com/tripshield/tripshield/internal/membership"
	"github.com/tripshield/tripshield/internal/metrics"
	"github.com/tripshield/tripshield/internal/migration"
	"github.com/tripshield/tripshield/internal/payment"
	"github.com/tripshield/tripshield/internal/providers"
	"github.com/tripshield/tripshield/internal/quote"
	"github.com/tripshield/tripshield/internal/ratelimit"
	"github.com/tripshield/tripshield/internal/rating"
	"github.com/tripshield/tripshield/internal/scheduler"
	"github.com/tripshield/tripshield/internal/server"
	"github.com/tripshield/tripshield/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		metrics.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Domains
		rating.Module,
		membership.Module,
		quote.Module,
		providers.Module,
		document.Module,
		payment.Module,
		ratelimit.Module,
		scheduler.Module,

		// HTTP surface
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		log.Fatalf("snowflake node: %v", err)
	}
	return node
}
