package models

type TrackedMeal struct {
	ID           int64 `gorm:"column:id;primary_key" json:"id"`
	MealID       int64 `gorm:"column:meal_id" json:"meal_id"`
	DateConsumed int64 `gorm:"column:date_consumed" json:"date_consumed"`
}

// TableName sets the insert table name for this struct type
func (t *TrackedMeal) TableName() string {
	return "tracked_meals"
}
