package user

import "strings"

// Gender used by the BMR equation
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// ActivityLevel selects the TDEE multiplier
type ActivityLevel string

const (
	ActivitySedentary        ActivityLevel = "Sedentary"
	ActivityLightlyActive    ActivityLevel = "Lightly Active"
	ActivityModeratelyActive ActivityLevel = "Moderately Active"
	ActivityVeryActive       ActivityLevel = "Very Active"
	ActivityExtraActive      ActivityLevel = "Extra Active"
)

var activityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary:        1.2,
	ActivityLightlyActive:    1.375,
	ActivityModeratelyActive: 1.55,
	ActivityVeryActive:       1.725,
	ActivityExtraActive:      1.9,
}

// ActivityLevels lists the levels from least to most active
var ActivityLevels = []ActivityLevel{
	ActivitySedentary,
	ActivityLightlyActive,
	ActivityModeratelyActive,
	ActivityVeryActive,
	ActivityExtraActive,
}

// Body metric bounds
const (
	MinWeightKg = 20.0
	MaxWeightKg = 200.0
	MinHeightCm = 100.0
	MaxHeightCm = 220.0
	MinAge      = 10
	MaxAge      = 100
)

// ParseGender parses Male or Female case-insensitively
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male":
		return GenderMale, nil
	case "female":
		return GenderFemale, nil
	default:
		return "", ErrUnknownGender
	}
}

// ParseActivityLevel parses an activity level case-insensitively
func ParseActivityLevel(s string) (ActivityLevel, error) {
	for _, level := range ActivityLevels {
		if strings.EqualFold(strings.TrimSpace(s), string(level)) {
			return level, nil
		}
	}
	return "", ErrUnknownActivity
}

// Multiplier returns the TDEE multiplier; unknown levels count as sedentary
func (a ActivityLevel) Multiplier() float64 {
	if m, ok := activityMultipliers[a]; ok {
		return m
	}
	return 1.2
}

// BodyMetrics are the profile figures that drive calorie targets
type BodyMetrics struct {
	WeightKg float64
	HeightCm float64
	Age      int
	Gender   Gender
	Activity ActivityLevel
}

// Validate checks the registration bounds
func (b BodyMetrics) Validate() error {
	if b.WeightKg < MinWeightKg || b.WeightKg > MaxWeightKg {
		return ErrWeightOutOfRange
	}
	if b.HeightCm < MinHeightCm || b.HeightCm > MaxHeightCm {
		return ErrHeightOutOfRange
	}
	if b.Age < MinAge || b.Age > MaxAge {
		return ErrAgeOutOfRange
	}
	if b.Gender != GenderMale && b.Gender != GenderFemale {
		return ErrUnknownGender
	}
	if _, ok := activityMultipliers[b.Activity]; !ok {
		return ErrUnknownActivity
	}
	return nil
}

// BMR uses the Mifflin-St Jeor equation
func (b BodyMetrics) BMR() float64 {
	base := 10*b.WeightKg + 6.25*b.HeightCm - 5*float64(b.Age)
	if b.Gender == GenderMale {
		return base + 5
	}
	return base - 161
}

// TDEE is BMR scaled by the activity multiplier
func (b BodyMetrics) TDEE() float64 {
	return b.BMR() * b.Activity.Multiplier()
}
