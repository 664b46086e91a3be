package usecase

import "github.com/servconnect/mlservices/internal/domain"

// dietPlans is indexed by domain.DietPlanKind.
var dietPlans = [...]domain.DietPlan{
	domain.DietVegetarian: {
		Title:       "Vegetarian Diet Plan",
		Description: "A plant-based diet rich in nutrients, fiber, and antioxidants.",
		Breakfast: []string{
			"Oatmeal with fresh fruits and nuts",
			"Whole grain toast with avocado",
			"Vegetable upma with coconut chutney",
			"Idli/Dosa with sambar",
			"Poha with vegetables and peanuts",
		},
		Lunch: []string{
			"Brown rice with dal and mixed vegetables",
			"Roti with paneer curry and salad",
			"Quinoa bowl with chickpeas and vegetables",
			"Vegetable biryani with raita",
			"Khichdi with vegetables and ghee",
		},
		Dinner: []string{
			"Vegetable soup with whole grain bread",
			"Roti with mixed vegetable curry",
			"Moong dal khichdi with vegetables",
			"Vegetable stir-fry with tofu",
			"Light dal with rice and salad",
		},
		Snacks: []string{
			"Fresh fruits", "Roasted nuts", "Sprouts salad",
			"Vegetable sandwich", "Buttermilk/Lassi",
		},
	},
	domain.DietVegan: {
		Title:       "Vegan Diet Plan",
		Description: "A completely plant-based diet without any animal products.",
		Breakfast: []string{
			"Smoothie bowl with plant milk and fruits",
			"Overnight oats with almond milk",
			"Vegetable poha",
			"Fruit salad with nuts and seeds",
			"Whole grain toast with nut butter",
		},
		Lunch: []string{
			"Buddha bowl with quinoa and vegetables",
			"Lentil soup with whole grain bread",
			"Vegetable curry with brown rice",
			"Chickpea salad wrap",
			"Mixed bean stew with rice",
		},
		Dinner: []string{
			"Vegetable stir-fry with tofu",
			"Dal with roti and salad",
			"Vegetable soup with bread",
			"Grilled vegetables with hummus",
			"Light khichdi with vegetables",
		},
		Snacks: []string{
			"Fresh fruits", "Trail mix", "Hummus with vegetables",
			"Roasted chickpeas", "Coconut water",
		},
	},
	domain.DietKeto: {
		Title:       "Keto-Friendly Diet Plan",
		Description: "A low-carb, high-fat diet suitable for blood sugar management.",
		Breakfast: []string{
			"Scrambled eggs with vegetables",
			"Paneer bhurji with low-carb vegetables",
			"Avocado smoothie with coconut milk",
			"Cheese omelette with spinach",
			"Greek yogurt with nuts (small portion)",
		},
		Lunch: []string{
			"Grilled paneer with cauliflower rice",
			"Palak paneer with low-carb roti",
			"Egg curry with vegetables",
			"Cauliflower fried rice",
			"Zucchini noodles with paneer",
		},
		Dinner: []string{
			"Paneer tikka with salad",
			"Vegetable soup with cheese",
			"Stuffed bell peppers",
			"Cauliflower mash with curry",
			"Egg bhurji with vegetables",
		},
		Snacks: []string{
			"Cheese cubes", "Nuts (almonds, walnuts)",
			"Cucumber with cream cheese", "Boiled eggs", "Avocado",
		},
	},
	domain.DietHighProtein: {
		Title:       "High Protein Diet Plan",
		Description: "A protein-rich diet for muscle maintenance and energy.",
		Breakfast: []string{
			"Egg white omelette with vegetables",
			"Paneer paratha with curd",
			"Protein smoothie with milk and nuts",
			"Sprouts chaat with lemon",
			"Moong dal chilla",
		},
		Lunch: []string{
			"Dal with brown rice and vegetables",
			"Paneer curry with roti",
			"Rajma/Chole with rice",
			"Soya chunks curry with rice",
			"Egg curry with roti",
		},
		Dinner: []string{
			"Grilled paneer with vegetables",
			"Dal soup with whole grain bread",
			"Tofu stir-fry with vegetables",
			"Egg bhurji with roti",
			"Lentil soup with salad",
		},
		Snacks: []string{
			"Roasted chana", "Paneer cubes", "Boiled eggs",
			"Protein shake", "Sprouts salad",
		},
	},
}

// riskAdvice is indexed by domain.RiskLevel. Warnings are added per request.
var riskAdvice = [...]domain.HeartRiskDetails{
	domain.RiskLow: {
		RiskDescription: "Your cardiovascular risk is LOW. Keep up the good work!",
		Exercises: []domain.Exercise{
			{Name: "Brisk Walking", Duration: "30-45 minutes", Frequency: "5 days/week", Description: "Maintain your heart health with regular walks in the morning or evening."},
			{Name: "Light Yoga", Duration: "20-30 minutes", Frequency: "3-4 days/week", Description: "Gentle yoga poses help maintain flexibility and reduce stress."},
			{Name: "Swimming", Duration: "30 minutes", Frequency: "2-3 days/week", Description: "Low-impact exercise excellent for overall cardiovascular health."},
			{Name: "Cycling", Duration: "20-30 minutes", Frequency: "3 days/week", Description: "Stationary or outdoor cycling for heart health maintenance."},
			{Name: "Stretching", Duration: "10-15 minutes", Frequency: "Daily", Description: "Daily stretching keeps muscles flexible and joints healthy."},
		},
		DietaryTips: []string{
			"Continue eating a balanced diet rich in fruits and vegetables",
			"Maintain adequate water intake (8-10 glasses daily)",
			"Include omega-3 rich foods like walnuts and flaxseeds",
			"Limit processed foods and added sugars",
			"Keep salt intake moderate",
		},
		LifestyleTips: []string{
			"Maintain regular sleep schedule (7-8 hours)",
			"Continue stress management practices",
			"Regular health check-ups every 6 months",
			"Stay socially active and engaged",
		},
	},
	domain.RiskModerate: {
		RiskDescription: "Your cardiovascular risk is MODERATE. Some lifestyle modifications are recommended.",
		Exercises: []domain.Exercise{
			{Name: "Walking", Duration: "30 minutes", Frequency: "Daily", Description: "Start with moderate pace walking, gradually increase intensity."},
			{Name: "Chair Exercises", Duration: "15-20 minutes", Frequency: "Daily", Description: "Seated exercises for strength and flexibility without strain."},
			{Name: "Tai Chi", Duration: "20-30 minutes", Frequency: "3-4 days/week", Description: "Gentle movements that improve balance and reduce stress."},
			{Name: "Light Resistance Training", Duration: "15-20 minutes", Frequency: "2-3 days/week", Description: "Using light weights or resistance bands for muscle strength."},
			{Name: "Deep Breathing Exercises", Duration: "10 minutes", Frequency: "Twice daily", Description: "Pranayama or deep breathing to manage blood pressure."},
		},
		DietaryTips: []string{
			"Reduce sodium intake to less than 2000mg daily",
			"Increase fiber intake through whole grains and vegetables",
			"Choose lean proteins and plant-based options",
			"Limit saturated fats and avoid trans fats",
			"Include heart-healthy foods like oats, nuts, and olive oil",
			"Reduce sugar and refined carbohydrate intake",
		},
		LifestyleTips: []string{
			"Monitor blood pressure regularly",
			"Aim for 7-8 hours of quality sleep",
			"Practice stress reduction techniques daily",
			"Avoid smoking and limit alcohol",
			"Schedule regular check-ups every 3-4 months",
		},
	},
	domain.RiskHigh: {
		RiskDescription: "Your cardiovascular risk is HIGH. Please consult a healthcare provider and follow these recommendations carefully.",
		Exercises: []domain.Exercise{
			{Name: "Gentle Walking", Duration: "15-20 minutes", Frequency: "Daily", Description: "Start slow, walk on flat surfaces. Stop if you feel dizzy or short of breath."},
			{Name: "Seated Exercises", Duration: "10-15 minutes", Frequency: "Daily", Description: "Chair-based exercises to maintain mobility without overexertion."},
			{Name: "Breathing Exercises", Duration: "10-15 minutes", Frequency: "3 times daily", Description: "Deep breathing and relaxation techniques to manage stress and blood pressure."},
			{Name: "Gentle Stretching", Duration: "10 minutes", Frequency: "Daily", Description: "Light stretches while seated or standing with support."},
			{Name: "Supervised Exercise", Duration: "As advised", Frequency: "As advised", Description: "Consider cardiac rehabilitation program under medical supervision."},
		},
		DietaryTips: []string{
			"STRICTLY limit sodium to less than 1500mg daily",
			"Follow a DASH or Mediterranean diet pattern",
			"Avoid all processed and packaged foods",
			"Eliminate fried foods and saturated fats",
			"Increase potassium-rich foods (bananas, spinach, sweet potatoes)",
			"Eat small, frequent meals instead of large ones",
			"Include garlic, turmeric, and ginger in cooking",
			"Drink plenty of water, avoid sugary beverages",
		},
		LifestyleTips: []string{
			"Monitor blood pressure twice daily",
			"Take all prescribed medications on time",
			"Immediate medical attention for chest pain or shortness of breath",
			"Complete bed rest if advised by doctor",
			"Regular follow-ups with cardiologist",
			"Keep emergency contacts readily available",
			"Avoid strenuous activities and heavy lifting",
		},
	},
}

// Warning thresholds and texts.
const (
	obesityBMI        = 30.0
	elevatedSystolic  = 140.0
	highCholesterol   = 240.0
	warnObesity       = "Your BMI indicates obesity. Weight management is crucial for heart health."
	warnBloodPressure = "Your blood pressure is elevated. Monitor regularly and consult your doctor."
	warnCholesterol   = "Your cholesterol level is high. Dietary changes and medication may be needed."
)
