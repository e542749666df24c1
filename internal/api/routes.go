package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates a new router with all routes configured
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Get("/health", h.Health)
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)

		// Protected routes (bearer token required)
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(h.authn))

			r.Get("/me", h.Me)
			r.Put("/me/avatar", h.UploadAvatar)

			r.Get("/stats", h.ListStats)
			r.Post("/stats", h.CreateStat)
			r.Post("/stats/level-up-all", h.LevelUpAll)
			r.Get("/stats/{id}", h.GetStat)
			r.Delete("/stats/{id}", h.DeleteStat)
			r.Post("/stats/{id}/level-up", h.LevelUpStat)
			r.Put("/stats/{id}/progression", h.SetProgression)

			r.Get("/tasks", h.ListTasks)
			r.Post("/tasks", h.CreateTask)
			r.Get("/tasks/{id}", h.GetTask)
			r.Post("/tasks/{id}/complete", h.CompleteTask)
			r.Post("/tasks/{id}/skip", h.SkipTask)

			r.Get("/adhoc-tasks", h.ListAdhocTasks)
			r.Post("/adhoc-tasks", h.CreateAdhocTask)

			r.Get("/focuses", h.ListFocuses)
			r.Put("/focuses", h.SetFocus)

			r.Get("/journals", h.ListJournals)
			r.Post("/journals", h.CreateJournal)
			r.Get("/journals/{id}", h.GetJournal)
			r.Post("/journals/{id}/finalize", h.FinalizeJournal)

			r.Get("/quests", h.ListQuests)
			r.Post("/quests", h.CreateQuest)
			r.Get("/quests/{id}", h.GetQuest)
			r.Post("/quests/{id}/complete", h.CompleteQuest)

			r.Get("/experiments", h.ListExperiments)
			r.Post("/experiments", h.CreateExperiment)

			r.Get("/family", h.ListFamilyMembers)
			r.Post("/family", h.CreateFamilyMember)
			r.Get("/family/{id}", h.GetFamilyMember)

			r.Get("/xp-grants", h.ListXPGrants)
			r.Post("/xp-grants", h.ManualGrant)

			r.Get("/ai/task-suggestions", h.SuggestTasks)
			r.Get("/summary/weekly", h.WeeklySummary)
		})
	})

	return r
}
