package structs

import "mealtracker-go-worker/models"

type HomeUiState struct {
	MealList []models.Meal `json:"meal_list"`
}

type FavouritesUiState struct {
	MealList []models.Meal `json:"meal_list"`
}

type TrackingUiState struct {
	MealList      []models.TrackedMealEntry `json:"meal_list"`
	TotalCalories int                       `json:"total_calories"`
}

type MealDetailsUiState struct {
	MealDetails MealDetails `json:"meal_details"`
	IsFavourite bool        `json:"is_favourite"`
	IsTracked   bool        `json:"is_tracked"`
}
