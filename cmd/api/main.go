package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-affiliate-shop.git/internal/affiliate"
	"github.com/ariefcatur/go-affiliate-shop.git/internal/auth"
	"github.com/ariefcatur/go-affiliate-shop.git/internal/catalog"
	"github.com/ariefcatur/go-affiliate-shop.git/internal/config"
	"github.com/ariefcatur/go-affiliate-shop.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-affiliate-shop.git/internal/kafka"
	"github.com/ariefcatur/go-affiliate-shop.git/internal/orders"
	"github.com/ariefcatur/go-affiliate-shop.git/internal/postgres"
	"github.com/ariefcatur/go-affiliate-shop.git/internal/redisx"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer for post-commit order events
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024)
	prod.Start(ctx)

	maker := auth.NewTokenMaker(cfg.JWTSecret, cfg.TokenTTL)
	requireAuth := httpx.RequireAuth(maker)

	router := httpx.NewRouter()

	oh := &httpx.OrdersHandler{
		Store:    &orders.Repo{DB: db},
		Producer: prod,
		Redis:    rdb,
		Service:  cfg.ServiceName,
	}
	oh.Register(router, requireAuth)

	ah := &httpx.AuthHandler{
		Users:      &auth.Repo{DB: db},
		Maker:      maker,
		AdminEmail: cfg.AdminEmail,
		SiteURL:    cfg.SiteURL,
	}
	ah.Register(router, requireAuth)

	ch := &httpx.CatalogHandler{Store: &catalog.Repo{DB: db, Redis: rdb}}
	ch.Register(router, requireAuth, httpx.RequireAdmin)

	fh := &httpx.AffiliateHandler{Store: &affiliate.Repo{DB: db}, SiteURL: cfg.SiteURL}
	fh.Register(router, requireAuth, httpx.RequireAdmin)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // close inbox -> flush & close writer
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
}
