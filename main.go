// Package main bookstore API.
//
// @title           Bookstore API
// @version         1.0
// @description     Book catalog, checkout with stock tracking, rentals and returns.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/jasonlau05/bookstore/app/echoServer"
	authctrl "github.com/jasonlau05/bookstore/app/echoServer/controller/auth"
	bookctrl "github.com/jasonlau05/bookstore/app/echoServer/controller/book"
	orderctrl "github.com/jasonlau05/bookstore/app/echoServer/controller/order"
	"github.com/jasonlau05/bookstore/app/echoServer/httperr"
	"github.com/jasonlau05/bookstore/app/echoServer/validation"
	"github.com/jasonlau05/bookstore/config"
	"github.com/jasonlau05/bookstore/model"
	authrepo "github.com/jasonlau05/bookstore/repository/auth"
	bookrepo "github.com/jasonlau05/bookstore/repository/book"
	"github.com/jasonlau05/bookstore/repository/catalogcache"
	"github.com/jasonlau05/bookstore/repository/events"
	orderrepo "github.com/jasonlau05/bookstore/repository/order"
	authsvc "github.com/jasonlau05/bookstore/service/auth"
	booksvc "github.com/jasonlau05/bookstore/service/book"
	"github.com/jasonlau05/bookstore/service/gate"
	"github.com/jasonlau05/bookstore/service/inventory"
	ordersvc "github.com/jasonlau05/bookstore/service/order"
	"github.com/jasonlau05/bookstore/util/database"
	jwtutil "github.com/jasonlau05/bookstore/util/jwt"
)

func main() {
	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db.Pool); err != nil {
			log.Error("migrate failed", "err", err)
			os.Exit(1)
		}
		log.Info("schema applied")
	}
	if cfg.SeedCatalog {
		n, err := database.Seed(ctx, db.Pool)
		if err != nil {
			log.Error("seed failed", "err", err)
			os.Exit(1)
		}
		log.Info("catalog seeded", "books", n)
	}

	issuer, err := jwtutil.NewIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL)
	if err != nil {
		log.Error("token issuer", "err", err)
		os.Exit(1)
	}

	// repos
	ar := authrepo.New(db.Pool)
	br := bookrepo.New(db.Pool)
	or := orderrepo.New(db.Pool)

	// optional infrastructure
	bookOpts := []booksvc.Option{booksvc.WithLogger(log)}
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Error("redis url", "err", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opt)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, catalog cache disabled", "err", err)
		} else {
			bookOpts = append(bookOpts, booksvc.WithCache(catalogcache.New(rdb, catalogcache.DefaultKey, cfg.CatalogCacheTTL)))
		}
	}

	var pub events.Publisher = events.Discard{Log: log}
	if cfg.AMQPURL != "" {
		conn, ch, err := events.SetupConn(cfg.AMQPURL, log)
		if err != nil {
			log.Warn("rabbitmq unavailable, events disabled", "err", err)
		} else {
			defer conn.Close()
			defer ch.Close()
			pub = events.NewPublisher(ch)
		}
	}

	// services
	as := authsvc.New(ar, issuer)
	if cfg.ManagerUsername != "" {
		id, err := as.EnsureManager(ctx, model.RegisterReq{
			Email:    cfg.ManagerEmail,
			Username: cfg.ManagerUsername,
			Password: cfg.ManagerPassword,
		})
		if err != nil {
			log.Error("manager bootstrap failed", "err", err)
			os.Exit(1)
		}
		log.Info("manager account ready", "username", cfg.ManagerUsername, "id", id)
	}
	bs := booksvc.New(br, bookOpts...)
	osvc := ordersvc.New(db.Pool, or, inventory.NewLedger(br),
		ordersvc.WithPublisher(pub),
		ordersvc.WithCatalog(bs),
		ordersvc.WithLogger(log),
	)

	// echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httperr.Handler(log)
	e.Validator = validation.New()
	echoServer.RegisterMiddlewares(e, log)

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:  &authctrl.Controller{Svc: as, Log: log},
		Book:  &bookctrl.Controller{Svc: bs, Log: log},
		Order: &orderctrl.Controller{Svc: osvc, Log: log},
		Gate:  gate.New(issuer),
		Log:   log,
	})

	go func() {
		log.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "err", err)
	}
	log.Info("server exited")
}
