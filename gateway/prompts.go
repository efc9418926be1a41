package gateway

import (
	"fmt"
	"strconv"

	"github.com/Desarso/fitcoach/models"
)

const (
	FallbackTip      = "Consistency is key!"
	FallbackRecovery = "Rest and hydrate."
	FallbackAnalysis = "Could not analyze video."

	videoPromptPrefix = "Instructional fitness video, perfect form: "
	analysisPrompt    = "Analyze the form in this workout video. Identify the exercise and provide 3 precise corrections to improve safety and efficiency."
	defaultPlaceTitle = "Result"
)

// Place query presets.
var placePresets = map[string]string{
	"gym":  "Find the best rated gyms near me",
	"food": "Find healthy restaurants with high protein options near me",
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func respondIn(p *models.Profile) string {
	if p.Language == models.LanguageArabic {
		return "Respond in Arabic."
	}
	return "Respond in English."
}

// SystemFraming is the coach persona sent with every chat call.
func SystemFraming(p *models.Profile) string {
	return fmt.Sprintf(
		"You are an elite fitness coach. Language: %s. User: %dy, %skg, Goal: %s. Preference: %s. Be encouraging, precise, and data-driven.",
		p.Language.Name(), p.Age, num(p.Weight), p.Goal, p.WorkoutPreference,
	)
}

func quickTipPrompt(p *models.Profile) string {
	return fmt.Sprintf("Give me a 1-sentence personalized fitness tip for a %d year old who wants to %s. %s",
		p.Age, p.Goal.Words(), respondIn(p))
}

func recoveryPrompt(p *models.Profile) string {
	return fmt.Sprintf(`User missed their diet/workout yesterday. Create a 1-day recovery plan to get back on track.
User: %s, Goal: %s. Language: %s.
Keep it brief and motivating.`, p.Name, p.Goal.Words(), p.Language.Name())
}

func dietPrompt(p *models.Profile, period models.Period) string {
	restrictions := p.DietaryRestrictions
	if restrictions == "" {
		restrictions = "None"
	}
	return fmt.Sprintf(`Create a %s diet plan (%s budget) for %dy %s, %skg.
Target: %skg in %d weeks.
Cheat Day: %s.
Goal: %s. Restrictions: %s.
Language: %s.
Return valid JSON. For weekly, return an array of 7 daily plans. For daily, return one object.
Include cost estimate ($ to $$$) per meal.`,
		period, p.Budget, p.Age, p.Gender, num(p.Weight),
		num(p.TargetWeight), p.TargetTimeline,
		p.CheatDay,
		p.Goal.Words(), restrictions,
		p.Language.Name())
}

func workoutPrompt(p *models.Profile, period models.Period) string {
	return fmt.Sprintf(`Create a %s workout routine for %s.
User Stats: %dy, %skg, Goal: %s.
Language: %s.
For each exercise, explain briefly "What I will gain" (benefits).
If weekly/monthly, provide a schedule summary.
Return valid JSON.`,
		period, p.WorkoutPreference,
		p.Age, num(p.Weight), p.Goal.Words(),
		p.Language.Name())
}

func mealImagePrompt(meal string) string {
	return fmt.Sprintf("A delicious, professional food photography shot of %s, healthy, studio lighting, high resolution.", meal)
}
