package reminder

import (
	"mealtracker-go-worker/enums"
	"mealtracker-go-worker/services/notification"
)

// ReminderService 每日提醒：不讀寫任何資料，
// 成功與否只看通知有沒有送出去
type ReminderService struct {
	notifier *notification.Service
}

func NewReminderService(notifier *notification.Service) *ReminderService {
	return &ReminderService{notifier: notifier}
}

// Run 固定的 channel 跟 slot，重複觸發會取代前一則通知而不是疊加
func (r *ReminderService) Run() error {
	if err := r.notifier.EnsureChannel(); err != nil {
		return err
	}
	return r.notifier.Post(notification.Message{
		ChannelID:   enums.NotificationChannelID,
		SlotID:      enums.NotificationSlotReminder,
		Title:       enums.ReminderTitle,
		Body:        enums.ReminderBody,
		Priority:    enums.NotificationPriorityHigh,
		AutoDismiss: true,
	})
}
