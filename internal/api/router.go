package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/rugby-stats/internal/api/handlers"
	"github.com/ramonehamilton/rugby-stats/internal/api/response"
)

func (s *Server) setupRoutes() {
	// Health check endpoint (no versioning)
	s.router.Get("/health", s.healthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		statsHandler := handlers.NewStatsHandler(s.backend)
		r.Route("/stats", func(r chi.Router) {
			r.Get("/", statsHandler.ListStats)
			r.Get("/rankings", statsHandler.GetRankings)
			r.Get("/{id}", statsHandler.GetStat)
		})

		playerHandler := handlers.NewPlayerHandler(s.backend)
		r.Route("/players", func(r chi.Router) {
			r.Get("/", playerHandler.ListPlayers)
			r.Get("/name/{name}/summary", playerHandler.GetSummaryByName)
			r.Get("/{id}", playerHandler.GetPlayer)
			r.Put("/{id}", playerHandler.UpdatePlayer)
			r.Get("/{id}/summary", playerHandler.GetSummary)
			r.Get("/{id}/anomalies", playerHandler.GetAnomalies)
			r.Get("/{id}/position-comparison", playerHandler.GetPositionComparison)
			r.Delete("/{id}", playerHandler.DeletePlayer)
		})

		matchHandler := handlers.NewMatchHandler(s.backend, s.importer)
		r.Route("/matches", func(r chi.Router) {
			r.Get("/", matchHandler.ListMatches)
			r.Get("/teams", matchHandler.ListTeams)
			r.Get("/{id}", matchHandler.GetMatch)
			r.Post("/import", matchHandler.ImportSheets)
			r.Delete("/{id}", matchHandler.DeleteMatch)
		})

		scoringHandler := handlers.NewScoringHandler(s.backend, s.limiter)
		r.Route("/scoring", func(r chi.Router) {
			r.Get("/configurations", scoringHandler.ListConfigurations)
			r.Post("/configurations", scoringHandler.CreateConfiguration)
			r.Get("/configurations/active", scoringHandler.GetActiveConfiguration)
			r.Get("/configurations/{id}", scoringHandler.GetConfiguration)
			r.Post("/configurations/{id}/activate", scoringHandler.ActivateConfiguration)
			r.Post("/seed-defaults", scoringHandler.SeedDefaults)
			r.Put("/weights/{id}", scoringHandler.UpdateWeight)
			r.Post("/recalculate", scoringHandler.Recalculate)
		})

		exportHandler := handlers.NewExportHandler(s.backend)
		r.Route("/exports", func(r chi.Router) {
			r.Get("/rankings.{format}", exportHandler.ExportRankings)
			r.Get("/players/{id}/comparison.{format}", exportHandler.ExportComparison)
			r.Get("/players/{id}/anomalies.{format}", exportHandler.ExportAnomalies)
			r.Get("/players/{id}/evolution.{format}", exportHandler.ExportEvolution)
		})

		systemHandler := handlers.NewSystemHandler(s.metrics)
		r.Route("/system", func(r chi.Router) {
			r.Get("/version", systemHandler.GetVersion)
			r.Get("/metrics", systemHandler.GetMetrics)
		})
	})
}

func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "rugby-stats-api",
	})
}
