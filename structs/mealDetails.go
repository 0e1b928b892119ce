package structs

// MealDetails 是編輯中的草稿，尚未寫入資料庫
type MealDetails struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	Description string `json:"description"`
	Calories    int    `json:"calories"`
	DateAdded   int64  `json:"date_added"`
}

type MealUiState struct {
	MealDetails  MealDetails `json:"meal_details"`
	IsEntryValid bool        `json:"is_entry_valid"`
}
