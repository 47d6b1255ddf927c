package main

// @title Geosearch Service API
// @version 1.0.0
// @description Оркестратор гео-поиска для restaurant-finder. Принимает поисковые намерения и сырые события платформенной геолокации, держит кеш результатов и серверную модель представления (маркеры, список, подсветка), которую страница применяет к карте.
// @description
// @description Основные возможности:
// @description - Получение позиции устройства с деградацией до IP-геолокации
// @description - Кеш результатов, ограниченный по TTL и размеру
// @description - Debounce и rate limit поисковых намерений, отмена устаревших запросов
// @description - Синхронизация маркеров карты и списка результатов с единственной подсветкой

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/geosearch-service/docs"
	"github.com/geosearch-service/internal/cache"
	"github.com/geosearch-service/internal/config"
	httpDelivery "github.com/geosearch-service/internal/delivery/http"
	"github.com/geosearch-service/internal/delivery/http/handler"
	"github.com/geosearch-service/internal/infrastructure/device"
	"github.com/geosearch-service/internal/infrastructure/geoip"
	"github.com/geosearch-service/internal/infrastructure/places"
	"github.com/geosearch-service/internal/pkg/logger"
	"github.com/geosearch-service/internal/usecase"
	"github.com/geosearch-service/internal/view"
	"github.com/geosearch-service/internal/worker"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Geosearch Service")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("search_endpoint", cfg.Search.EndpointURL),
	)

	// 3. Infrastructure: внешние сервисы и шлюз устройства
	placesClient := places.NewClient(&cfg.Search, log)
	geoipClient := geoip.NewClient(&cfg.GeoIP, log)
	deviceFeed := device.NewFeed(log)

	// 4. Cache
	searchCache := cache.NewSearchCache(cfg.Cache.MaxEntries, cfg.Cache.SearchCacheTTL, log)

	// 5. View: серверная модель представления и синхронизатор
	viewModel := view.NewViewModel()
	viewSync := view.NewResultViewSync(viewModel, viewModel, cfg.View.Locale, log)

	// 6. Use cases: хостящая сторона собирает ровно один оркестратор
	//    и один контроллер - глобального синглтона нет
	statusLog := usecase.NewStatusLog()

	controller := usecase.NewGeolocationController(
		deviceFeed,
		geoipClient,
		cfg.Geolocation,
		statusLog,
		log,
	)

	orchestrator := usecase.NewSearchOrchestrator(
		placesClient,
		searchCache,
		viewSync,
		controller,
		cfg.Search,
		statusLog,
		log,
	)

	// Вход в любое Active-состояние триггерит ровно один поиск
	controller.SetSearchTrigger(func() {
		if err := orchestrator.TriggerSearch(); err != nil {
			log.Debug("Triggered search not executed", zap.Error(err))
		}
	})

	log.Info("Use cases initialized")

	// 7. Workers
	workerManager := worker.NewManager(log)
	workerManager.Register(worker.NewCacheJanitor(searchCache, cfg.Cache.JanitorInterval, log))

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	if err := workerManager.Start(workerCtx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	// 8. HTTP handlers and server
	geosearchHandler := handler.NewGeosearchHandler(orchestrator, controller, viewSync, viewModel, statusLog, log)
	deviceHandler := handler.NewDeviceHandler(deviceFeed, log)

	server := httpDelivery.NewServer(cfg, log, geosearchHandler, deviceHandler)

	// 9. Start geolocation controller: Idle → Requesting
	if err := controller.Start(context.Background()); err != nil {
		log.Fatal("Failed to start geolocation controller", zap.Error(err))
	}

	// 10. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 11. Graceful shutdown: teardown = destroy() семантика
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	controller.Stop()
	orchestrator.Destroy()
	cancelWorkers()

	if err := workerManager.Stop(); err != nil {
		log.Error("Worker shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
