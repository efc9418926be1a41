package models

import "fmt"

// Period selects the span a generated plan covers.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// ParseDietPeriod accepts daily or weekly; empty defaults to daily.
func ParseDietPeriod(s string) (Period, error) {
	switch Period(s) {
	case "", PeriodDaily:
		return PeriodDaily, nil
	case PeriodWeekly:
		return PeriodWeekly, nil
	}
	return "", fmt.Errorf("invalid diet period %q (want daily or weekly)", s)
}

// ParseWorkoutPeriod accepts daily, weekly or monthly; empty defaults to daily.
func ParseWorkoutPeriod(s string) (Period, error) {
	switch Period(s) {
	case "", PeriodDaily:
		return PeriodDaily, nil
	case PeriodWeekly, PeriodMonthly:
		return Period(s), nil
	}
	return "", fmt.Errorf("invalid workout period %q (want daily, weekly or monthly)", s)
}

type Macros struct {
	Protein string `json:"p"`
	Carbs   string `json:"c"`
	Fat     string `json:"f"`
}

type DietMeal struct {
	Name         string   `json:"name"`
	Calories     float64  `json:"calories"`
	CostEstimate string   `json:"costEstimate"` // "$" to "$$$"
	Macros       Macros   `json:"macros"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
}

type DietPlan struct {
	Day        string     `json:"day,omitempty"`
	IsCheatDay bool       `json:"isCheatDay,omitempty"`
	Breakfast  DietMeal   `json:"breakfast"`
	Lunch      DietMeal   `json:"lunch"`
	Dinner     DietMeal   `json:"dinner"`
	Snacks     []DietMeal `json:"snacks"`
}

// Meals lists every meal of the plan in serving order.
func (p DietPlan) Meals() []DietMeal {
	meals := []DietMeal{p.Breakfast, p.Lunch, p.Dinner}
	return append(meals, p.Snacks...)
}

// TotalCalories sums calories across all meals.
func (p DietPlan) TotalCalories() float64 {
	var total float64
	for _, m := range p.Meals() {
		total += m.Calories
	}
	return total
}

type Exercise struct {
	Name     string `json:"name"`
	Sets     string `json:"sets"`
	Reps     string `json:"reps"`
	Notes    string `json:"notes"`
	Benefits string `json:"benefits"` // "What I will gain"
}

type ScheduleDay struct {
	Day   string `json:"day"`
	Focus string `json:"focus"`
}

type WorkoutRoutine struct {
	Period    Period        `json:"period"`
	WarmUp    []string      `json:"warmUp"`
	Exercises []Exercise    `json:"exercises"`
	CoolDown  []string      `json:"coolDown"`
	Schedule  []ScheduleDay `json:"schedule,omitempty"` // weekly/monthly views
}
