package notification

import (
	"encoding/json"
	"net/http"
	"sync"

	"mealtracker-go-worker/enums"
	"mealtracker-go-worker/services"
	"mealtracker-go-worker/services/rabbitmq"
	"mealtracker-go-worker/services/trackLog"
)

type Channel struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Importance  int    `json:"importance"`
}

type Message struct {
	ChannelID   string `json:"channel_id"`
	SlotID      int    `json:"slot_id"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	Priority    int    `json:"priority"`
	AutoDismiss bool   `json:"auto_dismiss"`
}

type envelope struct {
	Kind         string   `json:"kind"`
	Channel      *Channel `json:"channel,omitempty"`
	Notification *Message `json:"notification,omitempty"`
}

// Service 是通知設施的出口：有設定 rabbitmq 就丟 queue，
// 不然退回打 notification.api_url，兩個都沒有就只留 log
type Service struct {
	conn   *rabbitmq.Connection
	apiURL string

	mu         sync.Mutex
	registered bool
}

func NewService(conn *rabbitmq.Connection, apiURL string) *Service {
	return &Service{conn: conn, apiURL: apiURL}
}

// EnsureChannel 註冊成功過一次之後就不再重送，
// 失敗的話不會記住結果，下一次呼叫會重試
func (s *Service) EnsureChannel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registered {
		return nil
	}
	err := s.send(envelope{
		Kind: "channel",
		Channel: &Channel{
			ID:          enums.NotificationChannelID,
			Name:        enums.NotificationChannelName,
			Description: enums.NotificationChannelDescription,
			Importance:  enums.NotificationImportanceHigh,
		},
	})
	if err != nil {
		return err
	}
	s.registered = true
	return nil
}

// Post 固定 slot 發送，同一個 slot 重複發送由通知設施取代前一則
func (s *Service) Post(message Message) error {
	return s.send(envelope{Kind: "notification", Notification: &message})
}

func (s *Service) send(payload envelope) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if s.conn != nil {
		return s.conn.Publish(enums.QueueNotification, body)
	}
	if s.apiURL != "" {
		_, err := services.HttpRequest(http.MethodPost, s.apiURL, nil, payload)
		return err
	}
	trackLog.Info("[notification] 未設定通知出口: "+string(body), false)
	return nil
}
