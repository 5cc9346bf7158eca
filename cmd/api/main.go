// @title Respect Pill API
// @description API for the "Respect Pill" self-improvement tracker
// @BasePath /api/v1
// @schemes http
package main

import (
	"log"

	"github.com/rgoulart/respectpill/internal/api"
	"github.com/rgoulart/respectpill/internal/repository"
	"github.com/rgoulart/respectpill/internal/service"
	"github.com/rgoulart/respectpill/pkg/cleanup"
	"github.com/rgoulart/respectpill/pkg/config"
	jwtservice "github.com/rgoulart/respectpill/pkg/jwt_service"
)

func init() {
	service.InitValidator()
}

func main() {
	defer cleanup.CleanUp()
	cfg := config.New()
	dbCfg := repository.PGCfg{
		Address:  cfg.GetString("POSTGRES_DB_ADDRESS"),
		Username: cfg.GetString("POSTGRES_USER"),
		Password: cfg.GetString("POSTGRES_PASSWORD"),
		DB:       cfg.GetString("POSTGRES_DB"),
	}
	trackersRepo := repository.NewTrackersRepo(&dbCfg)
	goalsService := service.NewGoalsService(repository.NewGoalsRepo(&dbCfg), trackersRepo)
	serv := api.New(&api.ServicesList{
		UserService:     service.NewUserService(repository.NewUsersRepo(&dbCfg)),
		TrackersService: service.NewTrackersService(trackersRepo, goalsService),
		HabitsService:   service.NewHabitsService(repository.NewHabitsRepo(&dbCfg), trackersRepo),
		GoalsService:    goalsService,
		JwtService:      jwtservice.New(cfg.GetString("JWT_SECRET")),
	})
	err := serv.Run(cfg.GetStringOr("API_ADDRESS", ":8080"))
	if err != nil {
		log.Println("Server error: " + err.Error())
	}
}
