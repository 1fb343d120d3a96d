package server

import (
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	billingpersistence "github.com/plotline-hq/plotline/modules/billing/infrastructure/persistence"
	billingcontrollers "github.com/plotline-hq/plotline/modules/billing/presentation/controllers"
	billingservices "github.com/plotline-hq/plotline/modules/billing/services"
	corepersistence "github.com/plotline-hq/plotline/modules/core/infrastructure/persistence"
	corecontrollers "github.com/plotline-hq/plotline/modules/core/presentation/controllers"
	coreservices "github.com/plotline-hq/plotline/modules/core/services"
	estatepersistence "github.com/plotline-hq/plotline/modules/estate/infrastructure/persistence"
	estatecontrollers "github.com/plotline-hq/plotline/modules/estate/presentation/controllers"
	estateservices "github.com/plotline-hq/plotline/modules/estate/services"

	"github.com/plotline-hq/plotline/pkg/configuration"
	"github.com/plotline-hq/plotline/pkg/constants"
	"github.com/plotline-hq/plotline/pkg/eventbus"
	"github.com/plotline-hq/plotline/pkg/metrics"
	"github.com/plotline-hq/plotline/pkg/middleware"
	"github.com/plotline-hq/plotline/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Pool          *pgxpool.Pool
}

// Default wires the production server: SQL repositories, services, the full
// middleware chain and every controller.
func Default(options *DefaultOptions) *server.HTTPServer {
	bus := eventbus.NewEventPublisher(options.Logger)
	clock := clockwork.NewRealClock()

	tenantRepo := corepersistence.NewTenantRepository()
	sequenceRepo := corepersistence.NewSequenceRepository()
	auditRepo := corepersistence.NewAuditRepository()
	personRepo := estatepersistence.NewPersonRepository()
	plotRepo := estatepersistence.NewPlotRepository()
	allocationRepo := estatepersistence.NewAllocationRepository()
	paymentRepo := billingpersistence.NewPaymentRepository()

	tenantService := coreservices.NewTenantService(tenantRepo, bus)
	resolver := coreservices.NewResolver(tenantRepo)
	uidService := coreservices.NewUIDService(sequenceRepo)
	personService := estateservices.NewPersonService(personRepo, uidService)
	plotService := estateservices.NewPlotService(plotRepo, uidService)
	allocationService := estateservices.NewAllocationService(allocationRepo, plotRepo, personRepo)
	billingService := billingservices.NewBillingService(tenantRepo, paymentRepo, bus)

	// Order matters: logging first so everything downstream has a logger
	// and a span; tenant resolution before the rate limiter so the limiter
	// can key by tenant and apply the grace-period throttle.
	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(options.Logger, middleware.LoggerOptions{}),
		middleware.Provide(constants.PoolKey, options.Pool),
		middleware.Cors(options.Configuration.Origin),
		middleware.RequestParams(),
		middleware.Authenticate(),
		middleware.RequireTenant(resolver, auditRepo),
		middleware.RateLimit(clock),
		middleware.RequireSubscription(clock),
		middleware.WithTransaction(),
	}

	controllers := []server.Controller{
		corecontrollers.NewHealthController(),
		corecontrollers.NewAuthController(tenantService, personRepo),
		billingcontrollers.NewWebhookController(billingService, "/billing"),
		estatecontrollers.NewPlotsController(plotService),
		estatecontrollers.NewPersonsController(personService),
		estatecontrollers.NewAllocationsController(allocationService),
	}
	if options.Configuration.Prometheus.Enabled {
		controllers = append(controllers, metrics.NewPrometheusController(options.Configuration.Prometheus.Path))
	}

	return server.NewHTTPServer(
		controllers,
		middlewares,
		corecontrollers.NotFound(),
		corecontrollers.MethodNotAllowed(),
	)
}
