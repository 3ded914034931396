package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Portfolio-Dashboard-Backend/internal/api/middleware"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/service"
)

// Services are the dependencies of the HTTP API.
type Services struct {
	System    *service.SystemService
	Portfolio *service.PortfolioService
	Scrap     *service.ScrapService
	Market    *service.MarketService
	News      *service.NewsService
	Report    *service.ReportService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svcs Services, cfg *config.Config, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(log))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// Writes touch the user's Notion data; guard them when a key is configured.
	guard := func(next http.Handler) http.Handler { return next }
	if cfg.Server.RequireAPIKey {
		guard = custommiddleware.APIKeyMiddleware
	}

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svcs.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
			r.Get("/status", systemHandler.Status)
			r.With(guard).Delete("/cache", systemHandler.FlushCache)
		})

		r.Route("/market", func(r chi.Router) {
			marketHandler := handlers.NewMarketHandler(svcs.Market)
			r.Get("/indices", marketHandler.Indices)
			r.Get("/crypto", marketHandler.Crypto)
			r.Get("/fx", marketHandler.Fx)
			r.Get("/quote/{ticker}", marketHandler.Quote)
			r.Get("/history/{ticker}", marketHandler.History)
		})

		r.Route("/portfolio", func(r chi.Router) {
			portfolioHandler := handlers.NewPortfolioHandler(svcs.Portfolio)
			r.Get("/", portfolioHandler.Dashboard)
			r.Get("/history", portfolioHandler.History)
		})

		r.Route("/holding", func(r chi.Router) {
			holdingHandler := handlers.NewHoldingHandler(svcs.Portfolio)
			r.Get("/", holdingHandler.Holdings)
			r.With(guard).Post("/", holdingHandler.CreateHolding)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Use(guard)
				r.Put("/", holdingHandler.UpdateHolding)
				r.Delete("/", holdingHandler.DeleteHolding)
			})
		})

		r.Route("/scrap", func(r chi.Router) {
			scrapHandler := handlers.NewScrapHandler(svcs.Scrap)
			r.Get("/", scrapHandler.Scraps)
			r.With(guard).Post("/", scrapHandler.CreateScrap)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Use(guard)
				r.Delete("/", scrapHandler.DeleteScrap)
			})
		})

		r.Route("/news", func(r chi.Router) {
			newsHandler := handlers.NewNewsHandler(svcs.News)
			r.Get("/market", newsHandler.Market)
			r.Get("/crypto", newsHandler.Crypto)
			r.Get("/asset/{ticker}", newsHandler.Asset)
			r.Get("/research", newsHandler.Research)
		})

		r.Route("/report", func(r chi.Router) {
			reportHandler := handlers.NewReportHandler(svcs.Report)
			r.Post("/", reportHandler.Generate)
			r.With(guard).Post("/save", reportHandler.Save)
			r.Get("/history", reportHandler.History)
			r.Get("/attempts", reportHandler.Attempts)
		})
	})

	return r
}
