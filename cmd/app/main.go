package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/wichananm65/wholesale-shop/internal/cart"
	"github.com/wichananm65/wholesale-shop/internal/checkout"
	"github.com/wichananm65/wholesale-shop/internal/config"
	"github.com/wichananm65/wholesale-shop/internal/database"
	"github.com/wichananm65/wholesale-shop/internal/events"
	"github.com/wichananm65/wholesale-shop/internal/logging"
	"github.com/wichananm65/wholesale-shop/internal/metrics"
	"github.com/wichananm65/wholesale-shop/internal/order"
	"github.com/wichananm65/wholesale-shop/internal/product"
	"github.com/wichananm65/wholesale-shop/internal/supplier"
	"github.com/wichananm65/wholesale-shop/internal/user"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logging.New(cfg.IsDevelopment())
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := mustOpenDB(ctx, cfg, log)
	defer db.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewDBStatsCollector(db, "shop"))

	app := fiber.New()
	app.Use(recover.New())
	setupCORS(app)
	app.Use(logging.RequestLogger(log))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	secret := []byte(cfg.JWTSecret)

	userService := user.NewService(user.NewPostgresRepository(db))
	userHandler := user.NewHandler(userService, secret)

	supplierService := supplier.NewService(supplier.NewPostgresRepository(db))
	supplierHandler := supplier.NewHandler(supplierService)

	productService := product.NewService(product.NewPostgresRepository(db))
	productHandler := product.NewHandler(productService)

	cartService := cart.NewService(newCartStore(ctx, cfg, db, log), productService, log)
	cartHandler := cart.NewHandler(cartService)

	orderHandler := order.NewHandler(order.NewService(order.NewPostgresRepository(db)))

	publisher := newPublisher(cfg, log)
	defer publisher.Close()

	engine := checkout.NewEngine(checkout.NewPostgresStore(db), log, metrics.NewCheckout(reg))
	checkoutHandler := checkout.NewHandler(engine, cartService, publisher, log)

	userHandler.RegisterPublicRoutes(app)
	supplierHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)

	// dev endpoint: insert the sample catalog (gated by ALLOW_SEED)
	app.Post("/dev/seed", func(c *fiber.Ctx) error {
		if !cfg.AllowSeed {
			return c.Status(fiber.StatusForbidden).SendString("not allowed")
		}
		res, err := product.Seed(c.UserContext(), supplierService, productService)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
		return c.JSON(res)
	})

	app.Use(user.Middleware(secret))

	userHandler.RegisterProtectedRoutes(app)
	cartHandler.RegisterProtectedRoutes(app)
	checkoutHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)
	productHandler.RegisterSellerRoutes(app, user.RequireRole(user.RoleSeller))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Warn("shutdown", zap.Error(err))
		}
	}()

	log.Info("starting server", zap.String("addr", cfg.Addr), zap.String("env", cfg.Env))
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + logging.RequestIDHeader,
	}))
}

func mustOpenDB(ctx context.Context, cfg config.Config, log *zap.Logger) *sql.DB {
	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("migrations", zap.Error(err))
	}
	return db
}

// newCartStore keeps session carts in Redis when REDIS_ADDR is set and in
// users.cart otherwise.
func newCartStore(ctx context.Context, cfg config.Config, db *sql.DB, log *zap.Logger) cart.Store {
	if cfg.RedisAddr == "" {
		return cart.NewPostgresStore(db)
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	log.Info("cart store: redis", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.CartTTL))
	return cart.NewRedisStore(client, cfg.CartTTL)
}

func newPublisher(cfg config.Config, log *zap.Logger) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		log.Info("order events disabled: KAFKA_BROKERS not set")
		return events.NopPublisher{}
	}
	return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
}
