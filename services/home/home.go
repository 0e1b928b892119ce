package home

import (
	"sync"
	"time"

	"mealtracker-go-worker/models"
	"mealtracker-go-worker/repository"
	"mealtracker-go-worker/services"
	"mealtracker-go-worker/structs"
)

// 最後一個訂閱者離開後，combine 迴圈再維持 5 秒才停止，
// 期間內有新訂閱者進來就取消倒數
var subscribeTimeout = 5 * time.Second

// HomeService 把 meal 清單串流跟搜尋字串合成 HomeUiState，
// 任一邊有變動就重新計算再廣播給所有訂閱者
type HomeService struct {
	repo repository.MealsRepository

	mu           sync.Mutex
	searchQuery  string
	state        structs.HomeUiState
	subs         map[chan structs.HomeUiState]struct{}
	queryChanged chan struct{}
	stop         chan struct{}
	stopTimer    *time.Timer
	running      bool
}

func NewHomeService(repo repository.MealsRepository) *HomeService {
	return &HomeService{
		repo:         repo,
		state:        structs.HomeUiState{MealList: []models.Meal{}},
		subs:         make(map[chan structs.HomeUiState]struct{}),
		queryChanged: make(chan struct{}, 1),
	}
}

// Subscribe 回傳狀態串流跟取消訂閱的函式，
// 訂閱當下先收到目前的狀態
func (s *HomeService) Subscribe() (<-chan structs.HomeUiState, func()) {
	ch := make(chan structs.HomeUiState, 1)
	s.mu.Lock()
	if s.stopTimer != nil {
		s.stopTimer.Stop()
		s.stopTimer = nil
	}
	s.subs[ch] = struct{}{}
	ch <- s.state
	if !s.running {
		s.stop = make(chan struct{})
		s.running = true
		go s.combine(s.stop)
	}
	s.mu.Unlock()
	return ch, func() { s.unsubscribe(ch) }
}

func (s *HomeService) unsubscribe(ch chan structs.HomeUiState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subs[ch]; !ok {
		return
	}
	delete(s.subs, ch)
	if len(s.subs) == 0 && s.stopTimer == nil {
		s.stopTimer = time.AfterFunc(subscribeTimeout, s.stopIfIdle)
	}
}

func (s *HomeService) stopIfIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimer = nil
	if len(s.subs) == 0 && s.running {
		close(s.stop)
		s.running = false
	}
}

func (s *HomeService) OnSearchQueryChange(query string) {
	s.mu.Lock()
	s.searchQuery = query
	s.mu.Unlock()
	select {
	case s.queryChanged <- struct{}{}:
	default:
	}
}

func (s *HomeService) SearchQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchQuery
}

func (s *HomeService) State() structs.HomeUiState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *HomeService) combine(stop chan struct{}) {
	mealsCh := s.repo.WatchMealsOrderedByName(stop)
	var meals []models.Meal
	for {
		select {
		case m, ok := <-mealsCh:
			if !ok {
				return
			}
			meals = m
		case <-s.queryChanged:
		case <-stop:
			return
		}
		if meals == nil {
			meals = []models.Meal{}
		}
		// 每次重算都拿最新的清單配最新的搜尋字串
		s.publish(structs.HomeUiState{MealList: services.FilterMealsByName(meals, s.SearchQuery())})
	}
}

func (s *HomeService) publish(state structs.HomeUiState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	for ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- state
	}
}
