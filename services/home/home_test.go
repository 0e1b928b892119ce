package home

import (
	"context"
	"sync"
	"testing"
	"time"

	"mealtracker-go-worker/models"
	"mealtracker-go-worker/structs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo 只餵 WatchMealsOrderedByName，其他方法用不到。
// 記下每次訂閱收到的 done channel，讓測試能確認迴圈有切斷
type fakeRepo struct {
	mealsCh chan []models.Meal

	mu    sync.Mutex
	dones []<-chan struct{}
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{mealsCh: make(chan []models.Meal, 1)}
}

func (f *fakeRepo) lastDone() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dones[len(f.dones)-1]
}

func (f *fakeRepo) watchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.dones)
}

func (f *fakeRepo) WatchMealsOrderedByDate(done <-chan struct{}) <-chan []models.Meal {
	return make(chan []models.Meal)
}
func (f *fakeRepo) WatchMealsOrderedByName(done <-chan struct{}) <-chan []models.Meal {
	f.mu.Lock()
	f.dones = append(f.dones, done)
	f.mu.Unlock()
	return f.mealsCh
}
func (f *fakeRepo) WatchMeal(id int64, done <-chan struct{}) <-chan *models.Meal {
	return make(chan *models.Meal)
}
func (f *fakeRepo) WatchFavouriteMeals(done <-chan struct{}) <-chan []models.Meal {
	return make(chan []models.Meal)
}
func (f *fakeRepo) WatchTrackedMeals(done <-chan struct{}) <-chan []models.TrackedMealEntry {
	return make(chan []models.TrackedMealEntry)
}
func (f *fakeRepo) MealsOrderedByDate() ([]models.Meal, error) { return nil, nil }
func (f *fakeRepo) MealsOrderedByName() ([]models.Meal, error) { return nil, nil }
func (f *fakeRepo) MealByID(id int64) (*models.Meal, error) { return nil, nil }
func (f *fakeRepo) FavouriteMeals() ([]models.Meal, error) { return nil, nil }
func (f *fakeRepo) TrackedMeals() ([]models.TrackedMealEntry, error) { return nil, nil }
func (f *fakeRepo) UpsertMeal(ctx context.Context, meal *models.Meal) error { return nil }
func (f *fakeRepo) DeleteMeal(ctx context.Context, meal *models.Meal) error { return nil }
func (f *fakeRepo) InsertTrackedMeal(ctx context.Context, mealID int64, dateConsumed int64) error {
	return nil
}
func (f *fakeRepo) DeleteTrackedMeal(ctx context.Context, trackID int64, mealID int64, dateConsumed int64) error {
	return nil
}

func receiveState(t *testing.T, ch <-chan structs.HomeUiState) structs.HomeUiState {
	t.Helper()
	select {
	case state := <-ch:
		return state
	case <-time.After(2 * time.Second):
		t.Fatal("等不到 HomeUiState")
		return structs.HomeUiState{}
	}
}

func TestSubscribeReceivesInitialState(t *testing.T) {
	service := NewHomeService(newFakeRepo())
	ch, unsubscribe := service.Subscribe()
	defer unsubscribe()

	state := receiveState(t, ch)
	assert.Empty(t, state.MealList)
}

func TestStateFollowsRepository(t *testing.T) {
	repo := newFakeRepo()
	service := NewHomeService(repo)
	ch, unsubscribe := service.Subscribe()
	defer unsubscribe()

	receiveState(t, ch) // 初始狀態

	repo.mealsCh <- []models.Meal{
		{ID: 1, Name: "Apple"},
		{ID: 2, Name: "Banana"},
	}
	state := receiveState(t, ch)
	require.Len(t, state.MealList, 2)
	assert.Equal(t, "Apple", state.MealList[0].Name)
}

func TestSearchQueryFiltersState(t *testing.T) {
	repo := newFakeRepo()
	service := NewHomeService(repo)
	ch, unsubscribe := service.Subscribe()
	defer unsubscribe()

	receiveState(t, ch)
	repo.mealsCh <- []models.Meal{
		{ID: 1, Name: "Apple"},
		{ID: 2, Name: "Banana"},
	}
	receiveState(t, ch)

	service.OnSearchQueryChange("ban")
	state := receiveState(t, ch)
	require.Len(t, state.MealList, 1)
	assert.Equal(t, "Banana", state.MealList[0].Name)

	// 清掉搜尋字串回到完整清單
	service.OnSearchQueryChange("")
	state = receiveState(t, ch)
	assert.Len(t, state.MealList, 2)
}

func TestResubscribeGetsLatestState(t *testing.T) {
	repo := newFakeRepo()
	service := NewHomeService(repo)

	ch, unsubscribe := service.Subscribe()
	receiveState(t, ch)
	repo.mealsCh <- []models.Meal{{ID: 1, Name: "Apple"}}
	receiveState(t, ch)
	unsubscribe()

	// 寬限期內重新訂閱，直接拿到最後一次的狀態
	ch2, unsubscribe2 := service.Subscribe()
	defer unsubscribe2()
	state := receiveState(t, ch2)
	assert.Len(t, state.MealList, 1)
}

func TestCombineLoopStopsAndRestartsAfterGraceWindow(t *testing.T) {
	old := subscribeTimeout
	subscribeTimeout = 20 * time.Millisecond
	defer func() { subscribeTimeout = old }()

	repo := newFakeRepo()
	service := NewHomeService(repo)

	ch, unsubscribe := service.Subscribe()
	receiveState(t, ch)
	repo.mealsCh <- []models.Meal{{ID: 1, Name: "Apple"}}
	receiveState(t, ch)
	unsubscribe()

	// 寬限期過後 combine 迴圈要跟資料來源切斷
	select {
	case <-repo.lastDone():
	case <-time.After(2 * time.Second):
		t.Fatal("寬限期過後沒有取消訂閱資料來源")
	}

	// 重新訂閱會重新啟動一條 combine 迴圈，接上新的串流
	ch2, unsubscribe2 := service.Subscribe()
	defer unsubscribe2()
	state := receiveState(t, ch2)
	assert.Len(t, state.MealList, 1, "先收到最後一次的狀態")

	repo.mealsCh <- []models.Meal{
		{ID: 1, Name: "Apple"},
		{ID: 2, Name: "Banana"},
	}
	state = receiveState(t, ch2)
	require.Len(t, state.MealList, 2)
	assert.Equal(t, 2, repo.watchCount(), "重啟後是一次新的訂閱")
}

func TestUnsubscribeTwiceIsNoop(t *testing.T) {
	service := NewHomeService(newFakeRepo())
	ch, unsubscribe := service.Subscribe()
	receiveState(t, ch)
	unsubscribe()
	unsubscribe()
}
