package seed

import (
	"time"

	"mealtracker-go-worker/database"
	"mealtracker-go-worker/models"
	"mealtracker-go-worker/services/trackLog"

	gormbulk "github.com/t-tiger/gorm-bulk-insert/v2"
)

type SeedService struct {
	Handle *database.Handle
}

// Run 資料庫是空的時候塞入幾筆範例 meal，已經有資料就跳過
func (s *SeedService) Run() (bool, error) {
	var count int
	if err := s.Handle.DB.Model(&models.Meal{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	now := time.Now().UnixNano() / int64(time.Millisecond)
	var records []interface{}
	for _, meal := range starterMeals(now) {
		records = append(records, meal)
	}
	if err := gormbulk.BulkInsert(s.Handle.DB, records, 500); err != nil {
		return false, err
	}
	trackLog.Info("[seed] 範例資料建立完成", false)
	return true, nil
}

func starterMeals(now int64) []models.Meal {
	return []models.Meal{
		{Name: "Apple", Image: "", Description: "A red fruit", Calories: 95, DateAdded: now},
		{Name: "Banana", Image: "", Description: "A yellow fruit", Calories: 105, DateAdded: now},
		{Name: "Oatmeal", Image: "", Description: "Rolled oats with milk", Calories: 150, DateAdded: now},
		{Name: "Chicken salad", Image: "", Description: "Grilled chicken with greens", Calories: 350, DateAdded: now},
	}
}
