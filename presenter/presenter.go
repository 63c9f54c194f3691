package presenter

import (
	"github.com/fazamuttaqien/cards/config"
	cardcache "github.com/fazamuttaqien/cards/internal/cache"
	cardhandler "github.com/fazamuttaqien/cards/internal/handler/card"
	"github.com/fazamuttaqien/cards/internal/repository"
	cardrepo "github.com/fazamuttaqien/cards/internal/repository/card"
	cardsrv "github.com/fazamuttaqien/cards/internal/service/card"
	"github.com/fazamuttaqien/cards/pkg/telemetry"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Presenter struct {
	CardPresenter *cardhandler.CardHandler
}

func NewPresenter(
	db *gorm.DB,
	redisClient *redis.Client,
	publisher repository.CardEventPublisher,
	tel *telemetry.OpenTelemetry,
	cfg *config.Config,
) Presenter {
	// Repository
	cardRepositoryMeter := tel.MeterProvider.Meter("card-repository-meter")
	cardRepositoryTracer := tel.TracerProvider.Tracer("card-repository-tracer")
	cardRepository := cardrepo.NewCardRepository(
		db,
		cardRepositoryMeter,
		cardRepositoryTracer,
		tel.Log,
	)

	cardCacheMeter := tel.MeterProvider.Meter("card-cache-meter")
	cardCacheTracer := tel.TracerProvider.Tracer("card-cache-tracer")
	cardCache := cardcache.NewCardCache(
		redisClient,
		cfg.CARD_CACHE_TTL,
		cardCacheMeter,
		cardCacheTracer,
		tel.Log,
	)

	// Service
	cardServiceMeter := tel.MeterProvider.Meter("card-service-meter")
	cardServiceTracer := tel.TracerProvider.Tracer("card-service-trace")
	cardService := cardsrv.NewCardService(
		cardRepository,
		cardCache,
		publisher,
		cardServiceMeter,
		cardServiceTracer,
		tel.Log,
	)

	// Handler
	cardHandlerMeter := tel.MeterProvider.Meter("card-handler-meter")
	cardHandlerTracer := tel.TracerProvider.Tracer("card-handler-trace")
	cardHandler := cardhandler.NewCardHandler(
		cardService,
		cfg.SERVICE_TIMEOUT,
		cardHandlerMeter,
		cardHandlerTracer,
		tel.Log,
	)

	return Presenter{
		CardPresenter: cardHandler,
	}
}
