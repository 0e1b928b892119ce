package models

type Meal struct {
	ID          int64  `gorm:"column:id;primary_key" json:"id"`
	Name        string `gorm:"column:name" json:"name"`
	Image       string `gorm:"column:image" json:"image"`
	Description string `gorm:"column:description" json:"description"`
	Calories    int    `gorm:"column:calories" json:"calories"`
	DateAdded   int64  `gorm:"column:date_added" json:"date_added"`
	IsFavourite bool   `gorm:"column:is_favourite" json:"is_favourite"`
	// is_tracked 是舊版設計，實際追蹤紀錄以 tracked_meals 為準
	IsTracked bool `gorm:"column:is_tracked" json:"is_tracked"`
}

// TableName sets the insert table name for this struct type
func (m *Meal) TableName() string {
	return "meals"
}
