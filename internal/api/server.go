package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rgoulart/respectpill/internal/service"
)

type Server struct {
	mx              *chi.Mux
	userService     service.UserServiceI
	trackersService service.TrackersServiceI
	habitsService   service.HabitsServiceI
	goalsService    service.GoalsServiceI
	jwtService      JWTServiceI
}

type ServicesList struct {
	UserService     service.UserServiceI
	TrackersService service.TrackersServiceI
	HabitsService   service.HabitsServiceI
	GoalsService    service.GoalsServiceI
	JwtService      JWTServiceI
}

func New(servicesOptions *ServicesList) *Server {
	s := &Server{
		mx:              chi.NewMux(),
		userService:     servicesOptions.UserService,
		trackersService: servicesOptions.TrackersService,
		habitsService:   servicesOptions.HabitsService,
		goalsService:    servicesOptions.GoalsService,
		jwtService:      servicesOptions.JwtService,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Run(addr string) error {
	return http.ListenAndServe(addr, s.mx)
}

func (s *Server) registerRoutes() {
	s.mx.Use(s.RequestIDMiddleware, s.SettingUpLoggerMiddleware)
	s.mx.Route("/api/v1", func(r chi.Router) {
		r.Post("/register", s.Register)
		r.Post("/login", s.Login)
		r.Group(func(r chi.Router) {
			r.Use(s.AuthMiddleware, s.LoggerExtensionMiddleware)
			r.Delete("/account", s.DeleteAccount)
			r.Route("/trackers", func(r chi.Router) {
				r.Get("/", s.GetTrackers)
				r.Post("/", s.CreateTracker)
				r.Put("/value", s.SaveTrackerValue)
				r.Get("/streak", s.GetStreak)
				r.Get("/export", s.ExportTrackers)
				r.Put("/{id}", s.UpdateTracker)
				r.Delete("/{id}", s.DeleteTracker)
			})
			r.Route("/weekly", func(r chi.Router) {
				r.Get("/", s.GetWeeklyValue)
				r.Put("/", s.SaveWeeklyValue)
			})
			r.Route("/habits", func(r chi.Router) {
				r.Get("/", s.GetHabits)
				r.Post("/", s.CreateHabit)
				r.Delete("/{id}", s.DeleteHabit)
				r.Get("/{id}/streak", s.GetHabitStreak)
			})
			r.Route("/goals", func(r chi.Router) {
				r.Get("/", s.GetGoals)
				r.Post("/", s.CreateGoal)
				r.Put("/{id}", s.UpdateGoal)
				r.Delete("/{id}", s.DeleteGoal)
				r.Post("/{id}/checklist/{itemId}/toggle", s.ToggleChecklistItem)
			})
		})
	})
}

// Handler exposes the configured mux, used by tests.
func (s *Server) Handler() http.Handler {
	return s.mx
}
