package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof" // Register pprof handlers
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/jiyoung145900-png/daisy-vip/internal/config"
	"github.com/jiyoung145900-png/daisy-vip/internal/modules/gateway/ws"
	memberHttp "github.com/jiyoung145900-png/daisy-vip/internal/modules/member/adapter/http"
	memberDomain "github.com/jiyoung145900-png/daisy-vip/internal/modules/member/domain"
	memberRepo "github.com/jiyoung145900-png/daisy-vip/internal/modules/member/repository"
	memberUseCase "github.com/jiyoung145900-png/daisy-vip/internal/modules/member/usecase"
	eventHttp "github.com/jiyoung145900-png/daisy-vip/internal/modules/prize_event/adapter/http"
	"github.com/jiyoung145900-png/daisy-vip/internal/modules/prize_event/adapter/push"
	eventDomain "github.com/jiyoung145900-png/daisy-vip/internal/modules/prize_event/domain"
	"github.com/jiyoung145900-png/daisy-vip/internal/modules/prize_event/engine"
	eventDB "github.com/jiyoung145900-png/daisy-vip/internal/modules/prize_event/repository/db"
	eventMemory "github.com/jiyoung145900-png/daisy-vip/internal/modules/prize_event/repository/memory"
	eventRedis "github.com/jiyoung145900-png/daisy-vip/internal/modules/prize_event/repository/redis"
	eventUseCase "github.com/jiyoung145900-png/daisy-vip/internal/modules/prize_event/usecase"
	walletModule "github.com/jiyoung145900-png/daisy-vip/internal/modules/wallet"
	"github.com/jiyoung145900-png/daisy-vip/pkg/logger"
)

func main() {
	// Parse command line flags
	pprofPort := flag.String("pprof-port", "", "Port to run pprof server on (e.g., 6060)")
	background := flag.Bool("d", false, "Run in background mode (disable console logging)")
	flag.Parse()

	// Initialize logger
	// If background is true, disable console logging (enableConsole = false)
	logger.InitWithFile("logs/prize_event/monolith.log", "info", "json", !*background)
	defer logger.Flush()

	// Start pprof server if requested
	if *pprofPort != "" {
		go func() {
			addr := "localhost:" + *pprofPort
			logger.InfoGlobal().Str("addr", addr).Msg("📈 Starting pprof server")
			if err := http.ListenAndServe(addr, nil); err != nil {
				logger.ErrorGlobal().Err(err).Msg("Failed to start pprof server")
			}
		}()
	}

	fmt.Println("🚀 Starting Prize Event Monolith... Logs are being written to logs/prize_event/monolith.log (rotating)")
	logger.InfoGlobal().Msg("💎 Starting Prize Event Monolith...")

	// 1. Load Config
	cfg := config.LoadMonolithConfig()

	// 2. Initialize Infrastructure
	dbConnStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.PrizeEvent.Database.Host, cfg.PrizeEvent.Database.Port,
		cfg.PrizeEvent.Database.User, cfg.PrizeEvent.Database.Password, cfg.PrizeEvent.Database.Name)

	db, err := gorm.Open(postgres.Open(dbConnStr), &gorm.Config{
		Logger: logger.NewGormLogger(),
		// Map driver duplicate-key errors onto gorm.ErrDuplicatedKey so the
		// ledger's unique index reads as "already settled".
		TranslateError: true,
	})
	if err != nil {
		logger.FatalGlobal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.FatalGlobal().Err(err).Msg("Failed to get database instance")
	}

	// Postgres default max_connections is usually 100; leave headroom for
	// other tools.
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		logger.FatalGlobal().Err(err).Msg("Failed to ping database")
	}

	if err := db.AutoMigrate(
		&memberDomain.Member{},
		&eventDomain.OutcomeRecord{},
		&eventDomain.Override{},
		&eventDomain.LedgerEntry{},
	); err != nil {
		logger.FatalGlobal().Err(err).Msg("Failed to migrate database schema")
	}
	logger.InfoGlobal().Msg("✅ Database connected")

	rdb := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", cfg.PrizeEvent.Redis.Host, cfg.PrizeEvent.Redis.Port),
	})
	defer rdb.Close()
	logger.InfoGlobal().Msg("✅ Redis connected")

	// 3. Initialize Modules

	// Member Module
	memberRepository := memberRepo.NewMemberRepository(db)
	memberUC := memberUseCase.NewMemberUseCase(
		memberRepository, cfg.Member.JWT.Secret, cfg.Member.JWT.Duration, cfg.Member.Settings.StartingBalance)
	memberHandler := memberHttp.NewHandler(memberUC)
	logger.InfoGlobal().Msg("✅ Member module initialized")

	// Wallet Module (balances live on the members table)
	walletSvc := walletModule.NewDBService(db)
	logger.InfoGlobal().Msg("✅ Wallet module initialized")

	// Gateway Module (initialize early to get the push channel)
	wsManager := ws.NewManager()
	go wsManager.Run()

	// Prize Event Module
	logger.InfoGlobal().Msg("🎰 Initializing Prize Event...")

	var wagerRepository eventDomain.WagerRepository
	if cfg.PrizeEvent.RepoType == "redis" {
		wagerRepository = eventRedis.NewWagerRepository(rdb)
		logger.InfoGlobal().Msg("  ✅ Wager repository: Redis")
	} else {
		wagerRepository = eventMemory.NewWagerRepository()
		logger.InfoGlobal().Msg("  ✅ Wager repository: Memory")
	}

	overrideRepository := eventDB.NewOverrideRepository(db)
	outcomeRepository := eventDB.NewOutcomeRepository(db)
	ledgerRepository := eventDB.NewLedgerRepository(db)

	catalog := eventDomain.DefaultCatalog
	schedule := engine.Schedule{
		Epoch:        engine.DefaultSchedule().Epoch,
		Duration:     cfg.PrizeEvent.Settings.RoundDuration(),
		BaseRound:    cfg.PrizeEvent.Settings.BaseRound,
		SettleWindow: cfg.PrizeEvent.Settings.SettleWindowSec,
	}

	resolver := engine.NewResolver(overrideRepository, catalog, engine.DefaultSalt)
	eng := engine.New(schedule, resolver, wagerRepository, outcomeRepository, ledgerRepository, walletSvc)
	push.NewBroadcaster(wsManager, eng)
	logger.InfoGlobal().Msg("  ✅ Engine initialized")

	wagerUC := eventUseCase.NewWagerUseCase(wagerRepository, walletSvc, eng, catalog)
	historyUC := eventUseCase.NewHistoryUseCase(outcomeRepository, ledgerRepository, catalog)
	overrideUC := eventUseCase.NewOverrideUseCase(overrideRepository, outcomeRepository, eng, catalog)
	eventHandler := eventHttp.NewHandler(eng, wagerUC, historyUC, overrideUC, walletSvc, memberUC, wsManager, catalog)
	logger.InfoGlobal().Msg("✅ Prize Event ready")

	// 4. Start the engine loop
	engineCtx, stopEngine := context.WithCancel(context.Background())
	engineDone := make(chan struct{})
	go func() {
		defer close(engineDone)
		eng.Run(engineCtx)
	}()

	// 5. Setup HTTP Server
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinMiddleware())

	api := router.Group("/api")
	{
		memberHandler.RegisterRoutes(api.Group("/members"))

		event := api.Group("/event")
		authed := api.Group("/event")
		authed.Use(memberHandler.AuthMiddleware())
		admin := api.Group("/event/admin")
		admin.Use(memberHandler.AuthMiddleware(), adminGate(cfg.PrizeEvent.AdminToken))
		eventHandler.RegisterRoutes(event, authed, admin)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.PrizeEvent.Server.Port,
		Handler: router,
	}

	logger.InfoGlobal().
		Str("http_port", cfg.PrizeEvent.Server.Port).
		Str("ws_url", fmt.Sprintf("ws://localhost:%s/api/event/ws?token=YOUR_TOKEN", cfg.PrizeEvent.Server.Port)).
		Str("api_url", fmt.Sprintf("http://localhost:%s/api/event", cfg.PrizeEvent.Server.Port)).
		Msg("🚀 Prize Event Monolith running")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalGlobal().Err(err).Msg("HTTP server failed")
		}
	}()

	// 6. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.InfoGlobal().Msg("🛑 Shutting down server...")

	// 6.1 Stop the HTTP server first (stop accepting new requests)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.ErrorGlobal().Err(err).Msg("HTTP server forced to shutdown")
	}

	// 6.2 Stop the engine loop; an in-flight settlement finishes on its own
	// goroutine and is idempotent on restart either way.
	stopEngine()
	<-engineDone

	// 6.3 Shutdown Gateway (close all WebSocket connections)
	logger.InfoGlobal().Msg("🔌 Closing all WebSocket connections...")
	wsManager.Shutdown()

	logger.InfoGlobal().Msg("👋 Server exited properly")
}

// adminGate rejects override requests unless the shared admin token matches.
// An empty configured token disables the admin API entirely.
func adminGate(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" || c.GetHeader("X-Admin-Token") != token {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
