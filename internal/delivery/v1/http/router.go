package http

import (
	_ "github.com/DRSN-tech/dropship-sync/docs" // Импорт сгенерированных файлов
	"github.com/DRSN-tech/dropship-sync/internal/usecase"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(ingestUC usecase.IngestUC, normalizeUC usecase.NormalizeUC, publishUC usecase.PublishUC,
	updateUC usecase.MarketUpdateUC, ordersUC usecase.CollectOrdersUC, historyUC usecase.SyncHistoryUC) {
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"), // ссылка на JSON
	))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		v1.Route("/sync", func(s chi.Router) {
			registerSyncRoutes(s, NewSyncHandler(ingestUC, normalizeUC, publishUC, updateUC, ordersUC, r.logger))
			registerHistoryRoutes(s, NewHistoryHandler(historyUC, r.logger))
		})
	})
}

func registerSyncRoutes(router chi.Router, h *SyncHandler) {
	router.Post("/ingest", h.ingest)
	router.Post("/categories", h.categories)
	router.Post("/normalize", h.normalize)
	router.Post("/publish", h.publish)
	router.Post("/market-updates", h.marketUpdate)
	router.Post("/orders", h.collectOrders)
}

func registerHistoryRoutes(router chi.Router, h *HistoryHandler) {
	router.Route("/history", func(hr chi.Router) {
		hr.Get("/", h.list)
		hr.Get("/{id}", h.get)
	})
}
