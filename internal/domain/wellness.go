package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// DietPlanKind is the closed set of diet plans the service can describe.
type DietPlanKind int

const (
	DietVegetarian DietPlanKind = iota
	DietVegan
	DietKeto
	DietHighProtein
)

var dietPlanNames = [...]string{"vegetarian", "vegan", "keto", "high_protein"}

func (k DietPlanKind) String() string {
	if k < 0 || int(k) >= len(dietPlanNames) {
		return dietPlanNames[DietVegetarian]
	}
	return dietPlanNames[k]
}

// ParseDietPlan maps a plan name to its kind. Unknown names fall back to vegetarian.
func ParseDietPlan(name string) DietPlanKind {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, v := range dietPlanNames {
		if v == n {
			return DietPlanKind(i)
		}
	}
	return DietVegetarian
}

// RiskLevel is the closed set of cardiovascular risk levels.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskModerate
	RiskHigh
)

var riskLevelNames = [...]string{"low", "moderate", "high"}

func (r RiskLevel) String() string {
	if r < 0 || int(r) >= len(riskLevelNames) {
		return riskLevelNames[RiskModerate]
	}
	return riskLevelNames[r]
}

// ParseRiskLevel maps a risk label to its level. Unknown labels fall back to moderate.
func ParseRiskLevel(name string) RiskLevel {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, v := range riskLevelNames {
		if v == n {
			return RiskLevel(i)
		}
	}
	return RiskModerate
}

// Wellness prediction targets.
const (
	TargetDietRecommendation = "diet_recommendation"
	TargetDietPlan           = "diet_plan"
	TargetHeartRisk          = "heart_risk"
)

// WellnessInput is the elder health record sent by a guardian.
// Numeric fields are pointers so absent values can be echoed back as null.
type WellnessInput struct {
	Age                   *float64 `json:"age"`
	Gender                string   `json:"gender"`
	BMI                   *float64 `json:"bmi"`
	SystolicBP            *float64 `json:"systolic_bp"`
	DiastolicBP           *float64 `json:"diastolic_bp"`
	Cholesterol           *float64 `json:"cholesterol"`
	Triglycerides         *float64 `json:"triglycerides"`
	FamilyHistoryT2D      *float64 `json:"family_history_t2d"`
	FamilyHistoryCVD      *float64 `json:"family_history_cvd"`
	SleepHours            *float64 `json:"sleep_hours"`
	SleepQuality          string   `json:"sleep_quality"`
	StressLevel           *float64 `json:"stress_level"`
	PhysicalActivityLevel string   `json:"physical_activity_level"`
	DietPreference        Optional `json:"diet_preference"`
	FoodAllergies         string   `json:"food_allergies"`
}

// Optional is a string field that records whether the key was sent at all.
// A JSON null counts as sent with an empty value.
type Optional struct {
	Set   bool
	Value string
}

// UnmarshalJSON marks the field as set and decodes a string or null.
func (o *Optional) UnmarshalJSON(data []byte) error {
	o.Set = true
	o.Value = ""
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// Predictions holds the decoded model outputs.
type Predictions struct {
	DietRecommendation string `json:"diet_recommendation"`
	DietPlan           string `json:"diet_plan"`
	HeartRisk          string `json:"heart_risk"`
}

// DietPlan is a detailed meal plan.
type DietPlan struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Breakfast   []string `json:"breakfast"`
	Lunch       []string `json:"lunch"`
	Dinner      []string `json:"dinner"`
	Snacks      []string `json:"snacks"`
}

// Exercise is one recommended activity.
type Exercise struct {
	Name        string `json:"name"`
	Duration    string `json:"duration"`
	Frequency   string `json:"frequency"`
	Description string `json:"description"`
}

// HeartRiskDetails is the advice attached to a risk level.
type HeartRiskDetails struct {
	RiskDescription string     `json:"risk_description"`
	Exercises       []Exercise `json:"exercises"`
	DietaryTips     []string   `json:"dietary_tips"`
	LifestyleTips   []string   `json:"lifestyle_tips"`
	Warnings        []string   `json:"warnings"`
}

// InputSummary echoes the key inputs back to the caller.
type InputSummary struct {
	Age              *float64 `json:"age"`
	BMI              *float64 `json:"bmi"`
	BloodPressure    string   `json:"blood_pressure"`
	Cholesterol      *float64 `json:"cholesterol"`
	PhysicalActivity string   `json:"physical_activity"`
}

// WellnessResult is the full response of POST /predict on the wellness service.
type WellnessResult struct {
	Success          bool             `json:"success"`
	Predictions      Predictions      `json:"predictions"`
	DetailedDietPlan DietPlan         `json:"detailed_diet_plan"`
	HeartRiskDetails HeartRiskDetails `json:"heart_risk_details"`
	InputSummary     InputSummary     `json:"input_summary"`
}
