package tracking

import (
	"context"
	"sync"
	"time"

	"mealtracker-go-worker/models"
	"mealtracker-go-worker/repository"
	"mealtracker-go-worker/services"
	"mealtracker-go-worker/structs"
)

var subscribeTimeout = 5 * time.Second

// TrackingService 管兩條衍生狀態：
// 1. TrackingUiState：當天的追蹤紀錄加上總卡路里
// 2. 所有 meal 經過搜尋字串過濾的清單（加入追蹤的選單用）
// 日期、搜尋字串、資料庫任一邊變動都會重算
type TrackingService struct {
	repo repository.MealsRepository

	mu           sync.Mutex
	searchQuery  string
	selectedDate int64
	state        structs.TrackingUiState
	allMeals     []models.Meal
	stateSubs    map[chan structs.TrackingUiState]struct{}
	mealsSubs    map[chan []models.Meal]struct{}
	queryChanged chan struct{}
	dateChanged  chan struct{}
	stop         chan struct{}
	stopTimer    *time.Timer
	running      bool
}

func NewTrackingService(repo repository.MealsRepository) *TrackingService {
	return &TrackingService{
		repo:         repo,
		selectedDate: nowMillis(),
		state:        structs.TrackingUiState{MealList: []models.TrackedMealEntry{}},
		allMeals:     []models.Meal{},
		stateSubs:    make(map[chan structs.TrackingUiState]struct{}),
		mealsSubs:    make(map[chan []models.Meal]struct{}),
		queryChanged: make(chan struct{}, 1),
		dateChanged:  make(chan struct{}, 1),
	}
}

func (s *TrackingService) Subscribe() (<-chan structs.TrackingUiState, func()) {
	ch := make(chan structs.TrackingUiState, 1)
	s.mu.Lock()
	s.cancelStopLocked()
	s.stateSubs[ch] = struct{}{}
	ch <- s.state
	s.startLocked()
	s.mu.Unlock()
	return ch, func() { s.unsubscribeState(ch) }
}

// SubscribeAllMeals 加入追蹤的選單清單
func (s *TrackingService) SubscribeAllMeals() (<-chan []models.Meal, func()) {
	ch := make(chan []models.Meal, 1)
	s.mu.Lock()
	s.cancelStopLocked()
	s.mealsSubs[ch] = struct{}{}
	ch <- s.allMeals
	s.startLocked()
	s.mu.Unlock()
	return ch, func() { s.unsubscribeMeals(ch) }
}

func (s *TrackingService) cancelStopLocked() {
	if s.stopTimer != nil {
		s.stopTimer.Stop()
		s.stopTimer = nil
	}
}

func (s *TrackingService) startLocked() {
	if !s.running {
		s.stop = make(chan struct{})
		s.running = true
		go s.combine(s.stop)
	}
}

func (s *TrackingService) unsubscribeState(ch chan structs.TrackingUiState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stateSubs[ch]; !ok {
		return
	}
	delete(s.stateSubs, ch)
	s.armStopLocked()
}

func (s *TrackingService) unsubscribeMeals(ch chan []models.Meal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.mealsSubs[ch]; !ok {
		return
	}
	delete(s.mealsSubs, ch)
	s.armStopLocked()
}

func (s *TrackingService) armStopLocked() {
	if len(s.stateSubs) == 0 && len(s.mealsSubs) == 0 && s.stopTimer == nil {
		s.stopTimer = time.AfterFunc(subscribeTimeout, s.stopIfIdle)
	}
}

func (s *TrackingService) stopIfIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimer = nil
	if len(s.stateSubs) == 0 && len(s.mealsSubs) == 0 && s.running {
		close(s.stop)
		s.running = false
	}
}

func (s *TrackingService) OnSearchQueryChange(query string) {
	s.mu.Lock()
	s.searchQuery = query
	s.mu.Unlock()
	select {
	case s.queryChanged <- struct{}{}:
	default:
	}
}

func (s *TrackingService) OnDateChange(date int64) {
	s.mu.Lock()
	s.selectedDate = date
	s.mu.Unlock()
	select {
	case s.dateChanged <- struct{}{}:
	default:
	}
}

func (s *TrackingService) SelectedDate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedDate
}

func (s *TrackingService) SearchQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchQuery
}

func (s *TrackingService) State() structs.TrackingUiState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// TrackNewMeal 把 meal 記到目前選擇的日期
func (s *TrackingService) TrackNewMeal(ctx context.Context, meal models.Meal) error {
	return s.repo.InsertTrackedMeal(ctx, meal.ID, s.SelectedDate())
}

func (s *TrackingService) RemoveTrackedMeal(ctx context.Context, entry models.TrackedMealEntry) error {
	return s.repo.DeleteTrackedMeal(ctx, entry.TrackID, entry.Meal.ID, entry.DateConsumed)
}

func (s *TrackingService) combine(stop chan struct{}) {
	trackedCh := s.repo.WatchTrackedMeals(stop)
	mealsCh := s.repo.WatchMealsOrderedByName(stop)
	var entries []models.TrackedMealEntry
	var meals []models.Meal
	for {
		select {
		case e, ok := <-trackedCh:
			if !ok {
				return
			}
			entries = e
		case m, ok := <-mealsCh:
			if !ok {
				return
			}
			meals = m
		case <-s.queryChanged:
		case <-s.dateChanged:
		case <-stop:
			return
		}
		if entries == nil {
			entries = []models.TrackedMealEntry{}
		}
		if meals == nil {
			meals = []models.Meal{}
		}
		filtered := filterByDay(entries, s.SelectedDate())
		s.publish(
			structs.TrackingUiState{MealList: filtered, TotalCalories: totalCalories(filtered)},
			services.FilterMealsByName(meals, s.SearchQuery()),
		)
	}
}

func (s *TrackingService) publish(state structs.TrackingUiState, meals []models.Meal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.allMeals = meals
	for ch := range s.stateSubs {
		select {
		case <-ch:
		default:
		}
		ch <- state
	}
	for ch := range s.mealsSubs {
		select {
		case <-ch:
		default:
		}
		ch <- meals
	}
}

// filterByDay 只留下 date_consumed 跟選擇日期同一天（本地時區）的紀錄
func filterByDay(entries []models.TrackedMealEntry, date int64) []models.TrackedMealEntry {
	filtered := []models.TrackedMealEntry{}
	for _, entry := range entries {
		if sameDay(entry.DateConsumed, date) {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

func totalCalories(entries []models.TrackedMealEntry) int {
	total := 0
	for _, entry := range entries {
		total += entry.Meal.Calories
	}
	return total
}

func sameDay(timestamp1, timestamp2 int64) bool {
	t1 := millisToTime(timestamp1).In(time.Local)
	t2 := millisToTime(timestamp2).In(time.Local)
	y1, m1, d1 := t1.Date()
	y2, m2, d2 := t2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func millisToTime(millis int64) time.Time {
	return time.Unix(millis/1000, (millis%1000)*int64(time.Millisecond))
}

func nowMillis() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}
