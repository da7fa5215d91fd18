package main

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/vyrodovalexey/avembed/internal/adapter"
	"github.com/vyrodovalexey/avembed/internal/bridge"
	"github.com/vyrodovalexey/avembed/internal/config"
	"github.com/vyrodovalexey/avembed/internal/encoding"
	"github.com/vyrodovalexey/avembed/internal/observability"
	"github.com/vyrodovalexey/avembed/internal/router"
	httpserver "github.com/vyrodovalexey/avembed/internal/server/http"
)

// application holds all application components.
type application struct {
	server        *httpserver.Server
	loop          *bridge.Loop
	table         *router.Table
	metrics       *observability.Metrics
	metricsServer *http.Server
	config        *config.EngineConfig
}

// item is the demo resource served by the sample routes.
type item struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// itemStore is a plain map with no locking. Every handler runs on the
// bridge loop, so access is already serialized.
type itemStore struct {
	items map[string]item
}

// initApplication initializes all application components.
func initApplication(cfg *config.EngineConfig, logger observability.Logger) *application {
	metrics := observability.NewMetrics("avembed")
	metrics.SetBuildInfo(version, gitCommit, buildTime)

	loop := bridge.NewLoop(cfg.Bridge.Capacity, logger)

	table := router.NewTable(logger)
	store := &itemStore{items: make(map[string]item)}
	if err := registerRoutes(table, store); err != nil {
		logger.Fatal("failed to register routes", observability.Error(err))
	}

	server := httpserver.NewServer(&cfg.Server, table, loop, logger, metrics)

	return &application{
		server:  server,
		loop:    loop,
		table:   table,
		metrics: metrics,
		config:  cfg,
	}
}

// registerRoutes installs the demo item API.
func registerRoutes(table *router.Table, store *itemStore) error {
	codec := encoding.NewJSONCodec(nil)

	routes := []struct {
		template string
		handlers map[string]router.Handler
	}{
		{
			template: "/items",
			handlers: map[string]router.Handler{
				"GET": adapter.TypedResponse("/items", codec, store.list),
			},
		},
		{
			template: "/items/{id}",
			handlers: map[string]router.Handler{
				"GET":    adapter.TypedResponse("/items/{id}", codec, store.get),
				"PUT":    adapter.Typed("/items/{id}", codec, store.put),
				"DELETE": adapter.TypedResponse("/items/{id}", codec, store.remove),
			},
		},
		{
			template: "/echo",
			handlers: map[string]router.Handler{
				"POST": adapter.Raw(echo),
			},
		},
	}

	for _, r := range routes {
		if err := table.AddRoute(r.template, r.handlers); err != nil {
			return err
		}
	}
	return nil
}

func (s *itemStore) list(_ context.Context, _ *router.Params, _ string) ([]item, error) {
	items := make([]item, 0, len(s.items))
	for _, it := range s.items {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *itemStore) get(_ context.Context, params *router.Params, _ string) (item, error) {
	it, ok := s.items[params.PathValue("id")]
	if !ok {
		return item{}, fmt.Errorf("item %s not found", params.PathValue("id"))
	}
	return it, nil
}

func (s *itemStore) put(_ context.Context, params *router.Params, req item) (item, error) {
	req.ID = params.PathValue("id")
	s.items[req.ID] = req
	return req, nil
}

func (s *itemStore) remove(_ context.Context, params *router.Params, _ string) (item, error) {
	id := params.PathValue("id")
	it, ok := s.items[id]
	if !ok {
		return item{}, fmt.Errorf("item %s not found", id)
	}
	delete(s.items, id)
	return it, nil
}

func echo(_ context.Context, _ *router.Params, body string) (string, error) {
	return body, nil
}

// startMetricsServerIfEnabled starts the metrics listener.
func startMetricsServerIfEnabled(app *application, logger observability.Logger) {
	if !app.config.Metrics.Enabled {
		return
	}

	mux := http.NewServeMux()
	mux.Handle(app.config.Metrics.Path, app.metrics.Handler())

	app.metricsServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.config.Metrics.Port),
		Handler: mux,
	}

	go func() {
		logger.Info("starting metrics server",
			observability.Int("port", app.config.Metrics.Port),
			observability.String("path", app.config.Metrics.Path),
		)
		if err := app.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", observability.Error(err))
		}
	}()
}
