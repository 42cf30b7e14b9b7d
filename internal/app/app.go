package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/strizshop/storefront/config"
	"github.com/strizshop/storefront/internal/adapter/catalog"
	"github.com/strizshop/storefront/internal/adapter/httphandler"
	"github.com/strizshop/storefront/internal/adapter/kafka"
	"github.com/strizshop/storefront/internal/adapter/storage"
	"github.com/strizshop/storefront/internal/core/port"
	"github.com/strizshop/storefront/internal/core/service"
	"github.com/strizshop/storefront/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
)

const defaultFavoritesKey = "local"

// eventsStack bundles the cart events pipeline. It is wired only when
// seed brokers are configured, keeping the storefront runnable without
// a broker.
type eventsStack struct {
	serde     schema.Serde
	producer  kafka.CartEventsProducer
	processor kafka.BestSellersProcessor
	view      kafka.BestSellersView
}

type coreService struct {
	carts     port.CartOperator
	favorites port.FavoritesKeeper
}

type App struct {
	ctx        context.Context
	cfg        config.Config
	db         storage.SQLDB
	catalog    port.CatalogSource
	events     *eventsStack
	service    coreService
	httpServer httphandler.HTTPServer
	wg         sync.WaitGroup
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initStorage()
	app.initCatalog()
	app.initEventsStack()
	app.initCoreService()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initStorage() {
	const op = "App.initStorage"

	db, err := storage.NewSQLDB(app.ctx, app.cfg.SQLDB)
	if err != nil {
		app.fallDown(op, err)
	}
	app.db = db
}

func (app *App) initCatalog() {
	const op = "App.initCatalog"

	switch app.cfg.Catalog.Provider {
	case config.CatalogProviderOpenFood:
		app.catalog = catalog.NewOpenFoodClient(app.cfg.Catalog.OpenFoodURL)
	case config.CatalogProviderFakeStore, "":
		app.catalog = catalog.NewFakeStoreClient(app.cfg.Catalog.FakeStoreURL)
	default:
		app.fallDown(op, fmt.Errorf(
			"unknown catalog provider %q", app.cfg.Catalog.Provider,
		))
	}
}

func (app *App) initEventsStack() {
	const op = "App.initEventsStack"

	if !app.cfg.EventsEnabled() {
		slog.Info("seed brokers are not configured, cart events are disabled")
		return
	}

	ctx := app.ctx
	seedBrokers := app.cfg.Broker.SeedBrokers
	cartEventsTopic := app.cfg.Broker.Topics.CartEvents
	groupTable := app.cfg.Broker.Topics.BestSellersGroupTable

	srClient, err := sr.NewClient(
		sr.URLs(app.cfg.Broker.SchemaRegistryURLs...),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	schemaCreater := schema.NewSchemaCreater(srClient)

	cartEventSS := cartEventsTopic + "-value"
	cartEventSerde, err := schema.NewSerdeCartEventV1(
		ctx,
		schema.SubjectOpt(cartEventSS),
		schema.SchemaIdentifierOpt(schemaCreater),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	producer, err := kafka.NewCartEventsProducer(
		kafka.ProducerClientOpt(ctx, seedBrokers, cartEventsTopic),
		kafka.ProducerEncoderOpt(cartEventSerde),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	processor, err := kafka.NewBestSellersProcessor(
		seedBrokers, cartEventsTopic, groupTable, cartEventSerde,
	)
	if err != nil {
		app.fallDown(op, err)
	}

	view, err := kafka.NewBestSellersView(seedBrokers, groupTable)
	if err != nil {
		app.fallDown(op, err)
	}

	app.events = &eventsStack{
		serde:     cartEventSerde,
		producer:  producer,
		processor: processor,
		view:      view,
	}
}

func (app *App) initCoreService() {
	cartsRepo := storage.NewCartsRepository(app.db)
	favoritesRepo := storage.NewFavoritesRepository(app.db)

	var events port.CartEventsProducer
	if app.events != nil {
		events = app.events.producer
	}

	app.service.carts = service.NewCartLedgers(cartsRepo, events)
	app.service.favorites = service.NewFavoritesRegistry(
		defaultFavoritesKey, favoritesRepo,
	)
}

func (app *App) initInboundAdapters() {
	addr := app.cfg.HTTPServerAddr
	mux := http.NewServeMux()

	var best port.BestSellersProvider
	if app.events != nil {
		best = app.events.view
	}

	httphandler.RegisterCart(mux, app.service.carts)
	httphandler.RegisterFavorites(mux, app.service.favorites)
	httphandler.RegisterProducts(mux, app.catalog, best)

	handler := httphandler.AllowJSON(mux)
	app.httpServer = httphandler.NewHTTPServer(addr, handler)
}

func (app *App) Run(stopFn context.CancelFunc) {
	if app.events != nil {
		app.wg.Add(1)
		go app.events.processor.Run(app.ctx, &app.wg)
		go app.events.view.Run(app.ctx)
	}

	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)

	if app.events != nil {
		app.events.producer.Close()
		app.events.processor.Close()
		app.wg.Wait()
	}

	app.db.Close()

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
