package models

// TrackedMealEntry 是 meals JOIN tracked_meals 的查詢結果，不是資料表
type TrackedMealEntry struct {
	Meal         Meal  `json:"meal"`
	TrackID      int64 `json:"track_id"`
	DateConsumed int64 `json:"date_consumed"`
}
