package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/servconnect/mlservices/internal/domain"
)

// WellnessService predicts diet and heart-risk guidance for an elder.
type WellnessService struct {
	model  domain.WellnessModel
	logger *zap.Logger
}

// NewWellnessService creates a wellness service. A nil model makes every
// prediction fail with ErrModelNotLoaded.
func NewWellnessService(model domain.WellnessModel, logger *zap.Logger) *WellnessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WellnessService{model: model, logger: logger}
}

// Ready reports whether the models are loaded.
func (s *WellnessService) Ready() bool {
	return s.model != nil
}

// Predict runs all three models and assembles the detailed recommendations.
func (s *WellnessService) Predict(ctx context.Context, in domain.WellnessInput) (*domain.WellnessResult, error) {
	if !s.Ready() {
		return nil, domain.ErrModelNotLoaded
	}

	features := FeatureRow(s.model, in)

	var preds domain.Predictions
	for _, target := range []struct {
		name string
		dst  *string
	}{
		{domain.TargetDietRecommendation, &preds.DietRecommendation},
		{domain.TargetDietPlan, &preds.DietPlan},
		{domain.TargetHeartRisk, &preds.HeartRisk},
	} {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		label, err := s.model.Predict(target.name, features)
		if err != nil {
			return nil, fmt.Errorf("predicting %s: %w", target.name, err)
		}
		*target.dst = label
	}

	plan := preds.DietPlan
	// An absent preference means vegetarian; null or "" defers to the model.
	preference := "vegetarian"
	if in.DietPreference.Set {
		preference = in.DietPreference.Value
	}
	if preference != "" {
		plan = preference
	}

	s.logger.Debug("wellness prediction",
		zap.String("diet_plan", preds.DietPlan),
		zap.String("heart_risk", preds.HeartRisk),
		zap.String("final_plan", plan))

	return &domain.WellnessResult{
		Success:          true,
		Predictions:      preds,
		DetailedDietPlan: DetailedDietPlan(domain.ParseDietPlan(plan), in.FoodAllergies),
		HeartRiskDetails: HeartRiskRecommendations(domain.ParseRiskLevel(preds.HeartRisk), in.BMI, in.SystolicBP, in.Cholesterol),
		InputSummary: domain.InputSummary{
			Age:              in.Age,
			BMI:              in.BMI,
			BloodPressure:    formatReading(in.SystolicBP) + "/" + formatReading(in.DiastolicBP),
			Cholesterol:      in.Cholesterol,
			PhysicalActivity: in.PhysicalActivityLevel,
		},
	}, nil
}

// FeatureRow builds the model input in the model's feature order.
// Categorical columns are label encoded; missing numerics are 0.
func FeatureRow(model domain.WellnessModel, in domain.WellnessInput) []float64 {
	categorical := map[string]string{
		"gender":                  in.Gender,
		"sleep_quality":           in.SleepQuality,
		"physical_activity_level": in.PhysicalActivityLevel,
	}
	numeric := map[string]*float64{
		"age":                in.Age,
		"bmi":                in.BMI,
		"systolic_bp":        in.SystolicBP,
		"diastolic_bp":       in.DiastolicBP,
		"cholesterol":        in.Cholesterol,
		"triglycerides":      in.Triglycerides,
		"family_history_t2d": in.FamilyHistoryT2D,
		"family_history_cvd": in.FamilyHistoryCVD,
		"sleep_hours":        in.SleepHours,
		"stress_level":       in.StressLevel,
	}

	names := model.FeatureNames()
	row := make([]float64, len(names))
	for i, name := range names {
		if v, ok := categorical[name]; ok {
			row[i] = model.Encode(name, v)
			continue
		}
		if v := numeric[name]; v != nil {
			row[i] = *v
		}
	}
	return row
}

// DetailedDietPlan returns a copy of the plan with allergen-containing items removed.
// allergies is a comma separated list matched case-insensitively as substrings.
func DetailedDietPlan(kind domain.DietPlanKind, allergies string) domain.DietPlan {
	if kind < 0 || int(kind) >= len(dietPlans) {
		kind = domain.DietVegetarian
	}
	base := dietPlans[kind]

	var allergens []string
	for _, a := range strings.Split(allergies, ",") {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			allergens = append(allergens, a)
		}
	}

	return domain.DietPlan{
		Title:       base.Title,
		Description: base.Description,
		Breakfast:   withoutAllergens(base.Breakfast, allergens),
		Lunch:       withoutAllergens(base.Lunch, allergens),
		Dinner:      withoutAllergens(base.Dinner, allergens),
		Snacks:      withoutAllergens(base.Snacks, allergens),
	}
}

func withoutAllergens(items, allergens []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		lower := strings.ToLower(item)
		safe := true
		for _, a := range allergens {
			if strings.Contains(lower, a) {
				safe = false
				break
			}
		}
		if safe {
			out = append(out, item)
		}
	}
	return out
}

// HeartRiskRecommendations returns the advice for level plus metric-specific warnings.
func HeartRiskRecommendations(level domain.RiskLevel, bmi, systolic, cholesterol *float64) domain.HeartRiskDetails {
	if level < 0 || int(level) >= len(riskAdvice) {
		level = domain.RiskModerate
	}
	base := riskAdvice[level]

	warnings := []string{}
	if bmi != nil && *bmi > obesityBMI {
		warnings = append(warnings, warnObesity)
	}
	if systolic != nil && *systolic > elevatedSystolic {
		warnings = append(warnings, warnBloodPressure)
	}
	if cholesterol != nil && *cholesterol > highCholesterol {
		warnings = append(warnings, warnCholesterol)
	}

	return domain.HeartRiskDetails{
		RiskDescription: base.RiskDescription,
		Exercises:       append([]domain.Exercise(nil), base.Exercises...),
		DietaryTips:     append([]string(nil), base.DietaryTips...),
		LifestyleTips:   append([]string(nil), base.LifestyleTips...),
		Warnings:        warnings,
	}
}

func formatReading(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
