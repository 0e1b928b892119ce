package meal

import (
	"context"
	"errors"
	"sync"
	"time"

	"mealtracker-go-worker/models"
	"mealtracker-go-worker/repository"
	"mealtracker-go-worker/structs"
)

var subscribeTimeout = 5 * time.Second

var ErrMealMissing = errors.New("meal does not exist")

// MealDetailsService 對應單一 meal 的明細畫面
type MealDetailsService struct {
	repo   repository.MealsRepository
	mealID int64

	mu        sync.Mutex
	state     structs.MealDetailsUiState
	subs      map[chan structs.MealDetailsUiState]struct{}
	stop      chan struct{}
	stopTimer *time.Timer
	running   bool
}

// NewMealDetailsService 沒帶 meal id 是導航層的 bug，直接 panic 不要吞掉
func NewMealDetailsService(repo repository.MealsRepository, mealID int64) *MealDetailsService {
	if mealID <= 0 {
		panic("meal id is required for the details screen")
	}
	return &MealDetailsService{
		repo:   repo,
		mealID: mealID,
		subs:   make(map[chan structs.MealDetailsUiState]struct{}),
	}
}

func (s *MealDetailsService) Subscribe() (<-chan structs.MealDetailsUiState, func()) {
	ch := make(chan structs.MealDetailsUiState, 1)
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
		go s.watch(s.stop)
	}
	s.mu.Unlock()
	return ch, func() { s.unsubscribe(ch) }
}

func (s *MealDetailsService) unsubscribe(ch chan structs.MealDetailsUiState) {
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

func (s *MealDetailsService) stopIfIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimer = nil
	if len(s.subs) == 0 && s.running {
		close(s.stop)
		s.running = false
	}
}

func (s *MealDetailsService) watch(stop chan struct{}) {
	mealCh := s.repo.WatchMeal(s.mealID, stop)
	for {
		select {
		case m, ok := <-mealCh:
			if !ok {
				return
			}
			if m == nil {
				// meal 被刪掉了，保留最後一次的狀態
				continue
			}
			s.publish(structs.MealDetailsUiState{
				MealDetails: ToMealDetails(*m),
				IsFavourite: m.IsFavourite,
				IsTracked:   m.IsTracked,
			})
		case <-stop:
			return
		}
	}
}

func (s *MealDetailsService) publish(state structs.MealDetailsUiState) {
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

func (s *MealDetailsService) State() structs.MealDetailsUiState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ToggleFavourite 讀目前的 meal、翻轉旗標後 upsert 回去
func (s *MealDetailsService) ToggleFavourite(ctx context.Context) (*models.Meal, error) {
	current, err := s.repo.MealByID(s.mealID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrMealMissing
	}
	current.IsFavourite = !current.IsFavourite
	if err := s.repo.UpsertMeal(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

// ToggleTracked 舊版的 is_tracked 旗標，追蹤紀錄本身以 tracked_meals 為準
func (s *MealDetailsService) ToggleTracked(ctx context.Context) (*models.Meal, error) {
	current, err := s.repo.MealByID(s.mealID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrMealMissing
	}
	current.IsTracked = !current.IsTracked
	if err := s.repo.UpsertMeal(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *MealDetailsService) DeleteMeal(ctx context.Context) error {
	return s.repo.DeleteMeal(ctx, &models.Meal{ID: s.mealID})
}

func ToMealDetails(meal models.Meal) structs.MealDetails {
	return structs.MealDetails{
		ID:          meal.ID,
		Name:        meal.Name,
		Image:       meal.Image,
		Description: meal.Description,
		Calories:    meal.Calories,
		DateAdded:   meal.DateAdded,
	}
}

func ToMeal(details structs.MealDetails, isFavourite, isTracked bool) models.Meal {
	dateAdded := details.DateAdded
	if dateAdded == 0 {
		dateAdded = time.Now().UnixNano() / int64(time.Millisecond)
	}
	return models.Meal{
		ID:          details.ID,
		Name:        details.Name,
		Image:       details.Image,
		Description: details.Description,
		Calories:    details.Calories,
		DateAdded:   dateAdded,
		IsFavourite: isFavourite,
		IsTracked:   isTracked,
	}
}
