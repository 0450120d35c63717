package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/transapp/opct/modules"
	"github.com/transapp/opct/modules/core/seed"
	"github.com/transapp/opct/pkg/application"
	"github.com/transapp/opct/pkg/composables"
	"github.com/transapp/opct/pkg/configuration"
	"github.com/transapp/opct/pkg/eventbus"
)

func main() {
	conf := configuration.Use()
	logger := conf.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.ConnectionString())
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	if err := modules.Load(app); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}
	if err := app.Migrations().Run(ctx); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}

	seeder := application.NewSeeder()
	seeder.Register(seed.AdminUser(email, password))
	if err := seeder.Seed(composables.WithPool(ctx, pool), app); err != nil {
		log.Fatalf("failed to seed: %v", err)
	}
	logger.Info("seed completed")
}
