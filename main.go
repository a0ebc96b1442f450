package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"bookings/config"
	"bookings/gateway"
	"bookings/service"
	"bookings/tracing"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Parse()
	if err != nil {
		logrus.WithError(err).Fatal("failed to parse configuration")
	}

	if cfg.JaegerEndpoint != "" {
		tp := tracing.ConfigureTraceProvider(cfg.JaegerEndpoint)
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				log.FromContext(ctx).WithError(err).Error("failed to shutdown trace provider")
			}
		}()
	}

	dbConn, err := sqlx.Open("postgres", cfg.PostgresURL)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to Postgres")
	}
	defer dbConn.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer redisClient.Close()

	paymentsClient := gateway.NewPaymentsClient(cfg.GatewayURL, cfg.GatewayAPIKey)
	notificationsClient := gateway.NewNotificationsClient(cfg.ProviderNotificationsURL)

	err = service.New(
		cfg.HTTPAddr,
		dbConn,
		redisClient,
		paymentsClient,
		notificationsClient,
		cfg.WebhookSecret,
	).Run(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("service stopped with error")
	}
}
