//go:build wireinject
// +build wireinject

package injector

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/wire"
	"github.com/sipstack/vend-core/internal/app/deliveries"
	"github.com/sipstack/vend-core/internal/app/middlewares"
	"github.com/sipstack/vend-core/internal/app/services"
	"github.com/sipstack/vend-core/internal/infrastructures"
)

// Application represents the main application container for vend-core
type Application struct {
	HealthHandler       *deliveries.HealthHandler
	VoucherHandler      *deliveries.VoucherHandler
	ConsumptionHandler  *deliveries.ConsumptionHandler
	PaymentHandler      *deliveries.PaymentHandler
	MachineHandler      *deliveries.MachineHandler
	AuthHandler         *deliveries.AuthHandler
	RateLimitMiddleware *middlewares.RateLimitMiddleware
}

// RegisterRoutes registers all application routes using a Fiber router
func (app *Application) RegisterRoutes(router fiber.Router) {
	router.Use(app.RateLimitMiddleware.LimitByIP(middlewares.PublicAPILimit))

	app.HealthHandler.RegisterRoutes(router)
	app.VoucherHandler.RegisterRoutes(router)
	app.ConsumptionHandler.RegisterRoutes(router)
	app.PaymentHandler.RegisterRoutes(router)
	app.MachineHandler.RegisterRoutes(router)
	app.AuthHandler.RegisterRoutes(router)
}

// Infrastructure providers
var infrastructureSet = wire.NewSet(
	infrastructures.NewDatabase,
	infrastructures.NewRedisClient,
	infrastructures.NewValidator,
	infrastructures.NewGatewayClient,
	wire.Value("vend"),
	wire.Bind(new(middlewares.RateLimiter), new(*middlewares.RedisRateLimiter)),
	middlewares.NewRedisRateLimiter,
)

// Service providers
var serviceSet = wire.NewSet(
	services.NewChecksumService,
	services.NewMachineService,
	services.NewVoucherService,
	services.NewConsumptionService,
	services.NewPaymentService,
	services.NewTokenService,
)

// Middleware providers
var middlewareSet = wire.NewSet(
	middlewares.NewAuthMiddleware,
	middlewares.NewMachineKeyMiddleware,
	middlewares.NewRateLimitMiddleware,
)

// Handler providers
var handlerSet = wire.NewSet(
	deliveries.NewHealthHandler,
	deliveries.NewVoucherHandler,
	deliveries.NewConsumptionHandler,
	deliveries.NewPaymentHandler,
	deliveries.NewMachineHandler,
	deliveries.NewAuthHandler,
	wire.Struct(new(Application), "*"),
)

// InitializeApplication initializes the application with all its dependencies
func InitializeApplication() (*Application, error) {
	wire.Build(
		infrastructureSet,
		serviceSet,
		middlewareSet,
		handlerSet,
	)
	return &Application{}, nil
}
