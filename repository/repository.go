package repository

import (
	"context"
	"errors"

	"mealtracker-go-worker/models"
)

// ErrMealNotFound 表示 tracked meal 指到不存在的 meal（外鍵違反）
var ErrMealNotFound = errors.New("tracked meal references a missing meal")

// MealsRepository 包住持久層，Watch 系列回傳持續更新的串流：
// 訂閱後先收到目前的完整結果，之後每次寫入 commit 都會重新發出
type MealsRepository interface {
	WatchMealsOrderedByDate(done <-chan struct{}) <-chan []models.Meal
	WatchMealsOrderedByName(done <-chan struct{}) <-chan []models.Meal
	WatchMeal(id int64, done <-chan struct{}) <-chan *models.Meal
	WatchFavouriteMeals(done <-chan struct{}) <-chan []models.Meal
	WatchTrackedMeals(done <-chan struct{}) <-chan []models.TrackedMealEntry

	MealsOrderedByDate() ([]models.Meal, error)
	MealsOrderedByName() ([]models.Meal, error)
	MealByID(id int64) (*models.Meal, error)
	FavouriteMeals() ([]models.Meal, error)
	TrackedMeals() ([]models.TrackedMealEntry, error)

	UpsertMeal(ctx context.Context, meal *models.Meal) error
	DeleteMeal(ctx context.Context, meal *models.Meal) error
	InsertTrackedMeal(ctx context.Context, mealID int64, dateConsumed int64) error
	DeleteTrackedMeal(ctx context.Context, trackID int64, mealID int64, dateConsumed int64) error
}
