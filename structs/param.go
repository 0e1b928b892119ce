package structs

type ReminderQueueParam struct {
	TaskID    uint   `json:"task_id" form:"task_id"`
	IsDie     bool   `json:"is_die" form:"is_die"`
	QueueType string `json:"queue_type" form:"queue_type"`
}

type SearchParam struct {
	Query string `json:"query" form:"query"`
}

type DateParam struct {
	Date int64 `json:"date" form:"date"`
}

type TrackParam struct {
	MealID int64 `json:"meal_id" form:"meal_id"`
}
