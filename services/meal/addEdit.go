package meal

import (
	"context"
	"sync"

	"mealtracker-go-worker/models"
	"mealtracker-go-worker/repository"
	"mealtracker-go-worker/services/validate"
	"mealtracker-go-worker/structs"
)

// AddMealService 新增 meal 的表單草稿，
// 每次欄位變動重算一次 IsEntryValid
type AddMealService struct {
	repo repository.MealsRepository

	mu      sync.Mutex
	uiState structs.MealUiState
}

func NewAddMealService(repo repository.MealsRepository) *AddMealService {
	return &AddMealService{repo: repo}
}

func (s *AddMealService) UpdateUiState(details structs.MealDetails) {
	s.mu.Lock()
	s.uiState = structs.MealUiState{
		MealDetails:  details,
		IsEntryValid: validate.MealDetailsValid(details),
	}
	s.mu.Unlock()
}

func (s *AddMealService) MealUiState() structs.MealUiState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uiState
}

// SaveMeal 存檔前再驗一次，不合法就什麼都不做
// （呼叫端本來就該在不合法時把儲存鈕關掉）
func (s *AddMealService) SaveMeal(ctx context.Context) (*models.Meal, error) {
	s.mu.Lock()
	details := s.uiState.MealDetails
	s.mu.Unlock()
	if !validate.MealDetailsValid(details) {
		return nil, nil
	}
	persisted := ToMeal(details, false, false)
	if err := s.repo.UpsertMeal(ctx, &persisted); err != nil {
		return nil, err
	}
	return &persisted, nil
}

// EditMealService 編輯既有的 meal：初始化時把資料庫的欄位帶進草稿，
// 草稿直接視為合法（本來就存得進去的資料）
type EditMealService struct {
	repo   repository.MealsRepository
	mealID int64

	mu          sync.Mutex
	uiState     structs.MealUiState
	isFavourite bool
	isTracked   bool
}

// NewEditMealService 沒帶 meal id 是導航層的 bug，直接 panic；
// id 有帶但查不到資料則回傳錯誤
func NewEditMealService(repo repository.MealsRepository, mealID int64) (*EditMealService, error) {
	if mealID <= 0 {
		panic("meal id is required for the edit screen")
	}
	current, err := repo.MealByID(mealID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrMealMissing
	}
	return &EditMealService{
		repo:   repo,
		mealID: mealID,
		uiState: structs.MealUiState{
			MealDetails:  ToMealDetails(*current),
			IsEntryValid: true,
		},
		isFavourite: current.IsFavourite,
		isTracked:   current.IsTracked,
	}, nil
}

func (s *EditMealService) UpdateUiState(details structs.MealDetails) {
	details.ID = s.mealID
	s.mu.Lock()
	s.uiState = structs.MealUiState{
		MealDetails:  details,
		IsEntryValid: validate.MealDetailsValid(details),
	}
	s.mu.Unlock()
}

func (s *EditMealService) MealUiState() structs.MealUiState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uiState
}

func (s *EditMealService) SaveMeal(ctx context.Context) (*models.Meal, error) {
	s.mu.Lock()
	details := s.uiState.MealDetails
	isFavourite := s.isFavourite
	isTracked := s.isTracked
	s.mu.Unlock()
	if !validate.MealDetailsValid(details) {
		return nil, nil
	}
	persisted := ToMeal(details, isFavourite, isTracked)
	if err := s.repo.UpsertMeal(ctx, &persisted); err != nil {
		return nil, err
	}
	return &persisted, nil
}
