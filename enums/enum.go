package enums

const (
	OrderByDate = "date"
	OrderByName = "name"

	QueueReminder     = "reminder"
	QueueNotification = "notification"

	JobDailyReminder = "daily-reminder"

	NotificationChannelID          = "MealTrackerReminder"
	NotificationChannelName        = "MealReminderChannel"
	NotificationChannelDescription = "Channel for daily meal reminders"
	NotificationImportanceHigh     = 4
	NotificationPriorityHigh       = 1

	// 每日提醒固定用同一個 slot，重複發送會取代前一則通知
	NotificationSlotReminder = 1

	ReminderTitle = "Meal Tracker"
	ReminderBody  = "Have you logged your meals today?"

	LogNameInit     = "mealtracker.go.job.init"
	LogNameSeed     = "mealtracker.go.job.seed"
	LogNameReminder = "mealtracker.go.job.reminder"
	LogNameReceived = "mealtracker.go.job.received"
)
