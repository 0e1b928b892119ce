package repository

import (
	"context"

	"mealtracker-go-worker/database"
	"mealtracker-go-worker/models"
	"mealtracker-go-worker/services/stream"
	"mealtracker-go-worker/services/trackLog"

	"github.com/jinzhu/gorm"
)

type GormMealsRepository struct {
	handle *database.Handle
	bus    *stream.Bus
}

func NewGormMealsRepository(handle *database.Handle) *GormMealsRepository {
	return &GormMealsRepository{
		handle: handle,
		bus:    stream.NewBus(),
	}
}

func (r *GormMealsRepository) MealsOrderedByDate() ([]models.Meal, error) {
	var meals []models.Meal
	if err := r.handle.DB.Order("date_added asc, id asc").Find(&meals).Error; err != nil {
		return nil, err
	}
	return meals, nil
}

func (r *GormMealsRepository) MealsOrderedByName() ([]models.Meal, error) {
	var meals []models.Meal
	if err := r.handle.DB.Order("name asc, id asc").Find(&meals).Error; err != nil {
		return nil, err
	}
	return meals, nil
}

func (r *GormMealsRepository) MealByID(id int64) (*models.Meal, error) {
	var meal models.Meal
	if err := r.handle.DB.Where("id = ?", id).First(&meal).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return &meal, nil
}

func (r *GormMealsRepository) FavouriteMeals() ([]models.Meal, error) {
	var meals []models.Meal
	if err := r.handle.DB.Where("is_favourite = ?", true).Order("name asc, id asc").Find(&meals).Error; err != nil {
		return nil, err
	}
	return meals, nil
}

func (r *GormMealsRepository) TrackedMeals() ([]models.TrackedMealEntry, error) {
	rows, err := r.handle.DB.Raw(`
		SELECT meals.id, meals.name, meals.image, meals.description, meals.calories,
		       meals.date_added, meals.is_favourite, meals.is_tracked,
		       tracked_meals.id AS track_id, tracked_meals.date_consumed
		FROM meals
		INNER JOIN tracked_meals ON meals.id = tracked_meals.meal_id
		ORDER BY tracked_meals.date_consumed DESC`).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.TrackedMealEntry{}
	for rows.Next() {
		var entry models.TrackedMealEntry
		if err := rows.Scan(
			&entry.Meal.ID,
			&entry.Meal.Name,
			&entry.Meal.Image,
			&entry.Meal.Description,
			&entry.Meal.Calories,
			&entry.Meal.DateAdded,
			&entry.Meal.IsFavourite,
			&entry.Meal.IsTracked,
			&entry.TrackID,
			&entry.DateConsumed,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// UpsertMeal id 為 0 時新增並回填產生的 id，否則整列取代
func (r *GormMealsRepository) UpsertMeal(ctx context.Context, meal *models.Meal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := r.handle.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if meal.ID == 0 {
		if err := tx.Create(meal).Error; err != nil {
			tx.Rollback()
			return err
		}
	} else {
		res := tx.Save(meal)
		if res.Error != nil {
			tx.Rollback()
			return res.Error
		}
		if res.RowsAffected == 0 {
			// 帶了 id 但資料庫沒有這列，照 upsert 語意新增
			if err := tx.Create(meal).Error; err != nil {
				tx.Rollback()
				return err
			}
		}
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}
	r.bus.Publish()
	return nil
}

// DeleteMeal 連同 tracked_meals 一併刪除（cascade）
func (r *GormMealsRepository) DeleteMeal(ctx context.Context, meal *models.Meal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := r.handle.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := tx.Where("meal_id = ?", meal.ID).Delete(&models.TrackedMeal{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Where("id = ?", meal.ID).Delete(&models.Meal{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}
	r.bus.Publish()
	return nil
}

func (r *GormMealsRepository) InsertTrackedMeal(ctx context.Context, mealID int64, dateConsumed int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := r.handle.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	var count int
	if err := tx.Model(&models.Meal{}).Where("id = ?", mealID).Count(&count).Error; err != nil {
		tx.Rollback()
		return err
	}
	if count == 0 {
		tx.Rollback()
		return ErrMealNotFound
	}
	tracked := models.TrackedMeal{MealID: mealID, DateConsumed: dateConsumed}
	if err := tx.Create(&tracked).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}
	r.bus.Publish()
	return nil
}

// DeleteTrackedMeal trackID 為 0 時退回用 meal_id + date_consumed 比對（舊版呼叫端）
func (r *GormMealsRepository) DeleteTrackedMeal(ctx context.Context, trackID int64, mealID int64, dateConsumed int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	query := r.handle.DB
	if trackID != 0 {
		query = query.Where("id = ?", trackID)
	} else {
		query = query.Where("meal_id = ? AND date_consumed = ?", mealID, dateConsumed)
	}
	if err := query.Delete(&models.TrackedMeal{}).Error; err != nil {
		return err
	}
	r.bus.Publish()
	return nil
}

func (r *GormMealsRepository) WatchMealsOrderedByDate(done <-chan struct{}) <-chan []models.Meal {
	out := make(chan []models.Meal, 1)
	go r.watchLoop(done, out, r.MealsOrderedByDate)
	return out
}

func (r *GormMealsRepository) WatchMealsOrderedByName(done <-chan struct{}) <-chan []models.Meal {
	out := make(chan []models.Meal, 1)
	go r.watchLoop(done, out, r.MealsOrderedByName)
	return out
}

func (r *GormMealsRepository) WatchFavouriteMeals(done <-chan struct{}) <-chan []models.Meal {
	out := make(chan []models.Meal, 1)
	go r.watchLoop(done, out, r.FavouriteMeals)
	return out
}

func (r *GormMealsRepository) WatchMeal(id int64, done <-chan struct{}) <-chan *models.Meal {
	out := make(chan *models.Meal, 1)
	sig := r.bus.Subscribe()
	go func() {
		defer close(out)
		defer r.bus.Unsubscribe(sig)
		for {
			meal, err := r.MealByID(id)
			if err != nil {
				trackLog.Error("[repository] watch meal query fail: "+err.Error(), false)
			} else {
				select {
				case out <- meal:
				case <-done:
					return
				}
			}
			select {
			case <-sig:
			case <-done:
				return
			}
		}
	}()
	return out
}

func (r *GormMealsRepository) WatchTrackedMeals(done <-chan struct{}) <-chan []models.TrackedMealEntry {
	out := make(chan []models.TrackedMealEntry, 1)
	sig := r.bus.Subscribe()
	go func() {
		defer close(out)
		defer r.bus.Unsubscribe(sig)
		for {
			entries, err := r.TrackedMeals()
			if err != nil {
				trackLog.Error("[repository] watch tracked meals query fail: "+err.Error(), false)
			} else {
				select {
				case out <- entries:
				case <-done:
					return
				}
			}
			select {
			case <-sig:
			case <-done:
				return
			}
		}
	}()
	return out
}

// watchLoop 先發一次目前結果，之後每次資料異動重新查詢再發
func (r *GormMealsRepository) watchLoop(done <-chan struct{}, out chan []models.Meal, query func() ([]models.Meal, error)) {
	sig := r.bus.Subscribe()
	defer close(out)
	defer r.bus.Unsubscribe(sig)
	for {
		meals, err := query()
		if err != nil {
			trackLog.Error("[repository] watch query fail: "+err.Error(), false)
		} else {
			select {
			case out <- meals:
			case <-done:
				return
			}
		}
		select {
		case <-sig:
		case <-done:
			return
		}
	}
}
