package favourites

import (
	"sync"
	"time"

	"mealtracker-go-worker/models"
	"mealtracker-go-worker/repository"
	"mealtracker-go-worker/services"
	"mealtracker-go-worker/structs"
)

var subscribeTimeout = 5 * time.Second

// FavouritesService 跟 home 同一個 combine 模式，
// 但來源換成 is_favourite 的清單
type FavouritesService struct {
	repo repository.MealsRepository

	mu           sync.Mutex
	searchQuery  string
	state        structs.FavouritesUiState
	subs         map[chan structs.FavouritesUiState]struct{}
	queryChanged chan struct{}
	stop         chan struct{}
	stopTimer    *time.Timer
	running      bool
}

func NewFavouritesService(repo repository.MealsRepository) *FavouritesService {
	return &FavouritesService{
		repo:         repo,
		state:        structs.FavouritesUiState{MealList: []models.Meal{}},
		subs:         make(map[chan structs.FavouritesUiState]struct{}),
		queryChanged: make(chan struct{}, 1),
	}
}

func (s *FavouritesService) Subscribe() (<-chan structs.FavouritesUiState, func()) {
	ch := make(chan structs.FavouritesUiState, 1)
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

func (s *FavouritesService) unsubscribe(ch chan structs.FavouritesUiState) {
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

func (s *FavouritesService) stopIfIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimer = nil
	if len(s.subs) == 0 && s.running {
		close(s.stop)
		s.running = false
	}
}

func (s *FavouritesService) OnSearchQueryChange(query string) {
	s.mu.Lock()
	s.searchQuery = query
	s.mu.Unlock()
	select {
	case s.queryChanged <- struct{}{}:
	default:
	}
}

func (s *FavouritesService) SearchQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchQuery
}

func (s *FavouritesService) State() structs.FavouritesUiState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *FavouritesService) combine(stop chan struct{}) {
	mealsCh := s.repo.WatchFavouriteMeals(stop)
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
		s.publish(structs.FavouritesUiState{MealList: services.FilterMealsByName(meals, s.SearchQuery())})
	}
}

func (s *FavouritesService) publish(state structs.FavouritesUiState) {
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
