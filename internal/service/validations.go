package service

import (
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/rgoulart/respectpill/pkg/entity"
)

// Package for custom validations
var (
	validate *validator.Validate
	once     sync.Once
)

var trackerTypes = map[entity.TrackerType]struct{}{
	entity.TypeWorkout:         {},
	entity.TypeSleep:           {},
	entity.TypeReading:         {},
	entity.TypeSexuality:       {},
	entity.TypePosture:         {},
	entity.TypeHabits:          {},
	entity.TypeDiet:            {},
	entity.TypeMeditation:      {},
	entity.TypeJournal:         {},
	entity.TypeAffective:       {},
	entity.TypeCareer:          {},
	entity.TypeCommunity:       {},
	entity.TypeWater:           {},
	entity.TypeBodyPhoto:       {},
	entity.TypeBodyMeasurement: {},
	entity.TypeHabitLog:        {},
	entity.TypeWeeklyMetric:    {},
}

func InitValidator() {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterValidation("alphanum_underscore", func(fl validator.FieldLevel) bool {
			value := fl.Field().String()
			for i, char := range value {
				// Cannot be started with a digit or underscore
				if i == 0 && (unicode.IsDigit(char) || char == '_') {
					return false
				}
				// Digits, letters or underscore
				if !unicode.IsLetter(char) && !unicode.IsDigit(char) && char != '_' {
					return false
				}
			}
			return true
		})
		validate.RegisterValidation("tracker_type", func(fl validator.FieldLevel) bool {
			_, ok := trackerTypes[entity.TrackerType(fl.Field().String())]
			return ok
		})
	})
}

func validateStruct(s any) error {
	return validate.Struct(s)
}
