package models

import (
	"fmt"
	"strings"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type Goal string

const (
	GoalLoseWeight Goal = "lose_weight"
	GoalGainMuscle Goal = "gain_muscle"
	GoalMaintain   Goal = "maintain"
	GoalEndurance  Goal = "endurance"
)

// Words returns the goal as prose, e.g. "lose weight".
func (g Goal) Words() string {
	return strings.Replace(string(g), "_", " ", 1)
}

type ActivityLevel string

const (
	ActivitySedentary ActivityLevel = "sedentary"
	ActivityActive    ActivityLevel = "active"
	ActivityAthlete   ActivityLevel = "athlete"
)

type WorkoutPreference string

const (
	WorkoutHome WorkoutPreference = "home"
	WorkoutGym  WorkoutPreference = "gym"
)

type Language string

const (
	LanguageEnglish Language = "en"
	LanguageArabic  Language = "ar"
)

// Name returns the English name of the language used in prompts.
// Anything other than Arabic is treated as English.
func (l Language) Name() string {
	if l == LanguageArabic {
		return "Arabic"
	}
	return "English"
}

type Budget string

const (
	BudgetCheap     Budget = "cheap"
	BudgetModerate  Budget = "moderate"
	BudgetExpensive Budget = "expensive"
)

type CheatDay string

const (
	CheatDayNone CheatDay = "none"
	CheatDayFri  CheatDay = "fri"
	CheatDaySat  CheatDay = "sat"
	CheatDaySun  CheatDay = "sun"
)

// Profile is the user snapshot that parameterizes every generation call.
// It is shared by reference and never mutated once loaded.
// JSON names match the record written by the onboarding client.
type Profile struct {
	Name                string            `json:"name" yaml:"name"`
	Age                 int               `json:"age" yaml:"age"`
	Weight              float64           `json:"weight" yaml:"weight"` // kg
	Height              float64           `json:"height" yaml:"height"` // cm
	Gender              Gender            `json:"gender" yaml:"gender"`
	Goal                Goal              `json:"goal" yaml:"goal"`
	ActivityLevel       ActivityLevel     `json:"activityLevel" yaml:"activity_level"`
	WorkoutPreference   WorkoutPreference `json:"workoutPreference" yaml:"workout_preference"`
	DietaryRestrictions string            `json:"dietaryRestrictions" yaml:"dietary_restrictions"`
	Language            Language          `json:"language" yaml:"language"`
	Budget              Budget            `json:"budget" yaml:"budget"`
	TargetWeight        float64           `json:"targetWeight" yaml:"target_weight"`
	TargetTimeline      int               `json:"targetTimeline" yaml:"target_timeline"` // weeks
	CheatDay            CheatDay          `json:"cheatDay" yaml:"cheat_day"`
}

// Validate checks enum fields and basic numeric sanity.
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("profile: name is required")
	}
	if p.Age <= 0 {
		return fmt.Errorf("profile: age must be positive, got %d", p.Age)
	}
	if p.Weight <= 0 {
		return fmt.Errorf("profile: weight must be positive, got %v", p.Weight)
	}
	if p.Height < 0 || p.TargetWeight < 0 || p.TargetTimeline < 0 {
		return fmt.Errorf("profile: height, target weight and timeline cannot be negative")
	}

	checks := []struct {
		field string
		value string
		allow []string
	}{
		{"gender", string(p.Gender), []string{"male", "female", "other"}},
		{"goal", string(p.Goal), []string{"lose_weight", "gain_muscle", "maintain", "endurance"}},
		{"activityLevel", string(p.ActivityLevel), []string{"sedentary", "active", "athlete"}},
		{"workoutPreference", string(p.WorkoutPreference), []string{"home", "gym"}},
		{"language", string(p.Language), []string{"en", "ar"}},
		{"budget", string(p.Budget), []string{"cheap", "moderate", "expensive"}},
		{"cheatDay", string(p.CheatDay), []string{"none", "fri", "sat", "sun"}},
	}
	for _, c := range checks {
		if !contains(c.allow, c.value) {
			return fmt.Errorf("profile: invalid %s %q (want one of %s)", c.field, c.value, strings.Join(c.allow, ", "))
		}
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
