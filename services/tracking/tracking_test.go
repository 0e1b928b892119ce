package tracking

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

type insertCall struct {
	mealID       int64
	dateConsumed int64
}

type deleteCall struct {
	trackID      int64
	mealID       int64
	dateConsumed int64
}

type fakeRepo struct {
	trackedCh chan []models.TrackedMealEntry
	mealsCh   chan []models.Meal

	mu      sync.Mutex
	inserts []insertCall
	deletes []deleteCall
	dones   []<-chan struct{}
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		trackedCh: make(chan []models.TrackedMealEntry, 1),
		mealsCh:   make(chan []models.Meal, 1),
	}
}

func (f *fakeRepo) WatchMealsOrderedByDate(done <-chan struct{}) <-chan []models.Meal {
	return make(chan []models.Meal)
}
func (f *fakeRepo) WatchMealsOrderedByName(done <-chan struct{}) <-chan []models.Meal {
	return f.mealsCh
}
func (f *fakeRepo) WatchMeal(id int64, done <-chan struct{}) <-chan *models.Meal {
	return make(chan *models.Meal)
}
func (f *fakeRepo) WatchFavouriteMeals(done <-chan struct{}) <-chan []models.Meal {
	return make(chan []models.Meal)
}
func (f *fakeRepo) WatchTrackedMeals(done <-chan struct{}) <-chan []models.TrackedMealEntry {
	f.mu.Lock()
	f.dones = append(f.dones, done)
	f.mu.Unlock()
	return f.trackedCh
}

func (f *fakeRepo) lastDone() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dones[len(f.dones)-1]
}
func (f *fakeRepo) MealsOrderedByDate() ([]models.Meal, error) { return nil, nil }
func (f *fakeRepo) MealsOrderedByName() ([]models.Meal, error) { return nil, nil }
func (f *fakeRepo) MealByID(id int64) (*models.Meal, error) { return nil, nil }
func (f *fakeRepo) FavouriteMeals() ([]models.Meal, error) { return nil, nil }
func (f *fakeRepo) TrackedMeals() ([]models.TrackedMealEntry, error) { return nil, nil }
func (f *fakeRepo) UpsertMeal(ctx context.Context, meal *models.Meal) error { return nil }
func (f *fakeRepo) DeleteMeal(ctx context.Context, meal *models.Meal) error { return nil }

func (f *fakeRepo) InsertTrackedMeal(ctx context.Context, mealID int64, dateConsumed int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts = append(f.inserts, insertCall{mealID: mealID, dateConsumed: dateConsumed})
	return nil
}

func (f *fakeRepo) DeleteTrackedMeal(ctx context.Context, trackID int64, mealID int64, dateConsumed int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, deleteCall{trackID: trackID, mealID: mealID, dateConsumed: dateConsumed})
	return nil
}

func receiveState(t *testing.T, ch <-chan structs.TrackingUiState) structs.TrackingUiState {
	t.Helper()
	select {
	case state := <-ch:
		return state
	case <-time.After(2 * time.Second):
		t.Fatal("等不到 TrackingUiState")
		return structs.TrackingUiState{}
	}
}

func receiveMeals(t *testing.T, ch <-chan []models.Meal) []models.Meal {
	t.Helper()
	select {
	case meals := <-ch:
		return meals
	case <-time.After(2 * time.Second):
		t.Fatal("等不到 meal 清單")
		return nil
	}
}

func TestStateFiltersBySelectedDay(t *testing.T) {
	repo := newFakeRepo()
	service := NewTrackingService(repo)
	ch, unsubscribe := service.Subscribe()
	defer unsubscribe()

	receiveState(t, ch) // 初始狀態

	today := service.SelectedDate()
	yesterday := today - 24*60*60*1000
	repo.trackedCh <- []models.TrackedMealEntry{
		{TrackID: 1, DateConsumed: today, Meal: models.Meal{ID: 1, Name: "Apple", Calories: 95}},
		{TrackID: 2, DateConsumed: today, Meal: models.Meal{ID: 2, Name: "Banana", Calories: 105}},
		{TrackID: 3, DateConsumed: yesterday, Meal: models.Meal{ID: 3, Name: "Oatmeal", Calories: 150}},
	}

	state := receiveState(t, ch)
	require.Len(t, state.MealList, 2, "只留下選擇日期當天的紀錄")
	assert.Equal(t, 200, state.TotalCalories)
}

func TestDateChangeRecomputesState(t *testing.T) {
	repo := newFakeRepo()
	service := NewTrackingService(repo)
	ch, unsubscribe := service.Subscribe()
	defer unsubscribe()

	receiveState(t, ch)

	today := service.SelectedDate()
	yesterday := today - 24*60*60*1000
	repo.trackedCh <- []models.TrackedMealEntry{
		{TrackID: 1, DateConsumed: today, Meal: models.Meal{ID: 1, Name: "Apple", Calories: 95}},
		{TrackID: 2, DateConsumed: yesterday, Meal: models.Meal{ID: 2, Name: "Oatmeal", Calories: 150}},
	}
	receiveState(t, ch)

	service.OnDateChange(yesterday)
	state := receiveState(t, ch)
	require.Len(t, state.MealList, 1)
	assert.Equal(t, "Oatmeal", state.MealList[0].Meal.Name)
	assert.Equal(t, 150, state.TotalCalories)
}

func TestAllMealsStreamFollowsSearchQuery(t *testing.T) {
	repo := newFakeRepo()
	service := NewTrackingService(repo)
	ch, unsubscribe := service.SubscribeAllMeals()
	defer unsubscribe()

	receiveMeals(t, ch) // 初始清單

	repo.mealsCh <- []models.Meal{
		{ID: 1, Name: "Apple"},
		{ID: 2, Name: "Banana"},
	}
	meals := receiveMeals(t, ch)
	require.Len(t, meals, 2)

	service.OnSearchQueryChange("ban")
	meals = receiveMeals(t, ch)
	require.Len(t, meals, 1)
	assert.Equal(t, "Banana", meals[0].Name)
}

func TestCombineLoopStopsAndRestartsAfterGraceWindow(t *testing.T) {
	old := subscribeTimeout
	subscribeTimeout = 20 * time.Millisecond
	defer func() { subscribeTimeout = old }()

	repo := newFakeRepo()
	service := NewTrackingService(repo)

	ch, unsubscribe := service.Subscribe()
	receiveState(t, ch)
	unsubscribe()

	// 兩種訂閱者都離開且寬限期過後，combine 迴圈要跟資料來源切斷
	select {
	case <-repo.lastDone():
	case <-time.After(2 * time.Second):
		t.Fatal("寬限期過後沒有取消訂閱資料來源")
	}

	ch2, unsubscribe2 := service.Subscribe()
	defer unsubscribe2()
	receiveState(t, ch2)

	today := service.SelectedDate()
	repo.trackedCh <- []models.TrackedMealEntry{
		{TrackID: 1, DateConsumed: today, Meal: models.Meal{ID: 1, Name: "Apple", Calories: 95}},
	}
	state := receiveState(t, ch2)
	require.Len(t, state.MealList, 1)
	assert.Equal(t, 95, state.TotalCalories)
}

func TestTrackNewMealUsesSelectedDate(t *testing.T) {
	repo := newFakeRepo()
	service := NewTrackingService(repo)
	service.OnDateChange(1234)

	meal := models.Meal{ID: 7, Name: "Apple"}
	require.NoError(t, service.TrackNewMeal(context.Background(), meal))

	repo.mu.Lock()
	defer repo.mu.Unlock()
	require.Len(t, repo.inserts, 1)
	assert.Equal(t, int64(7), repo.inserts[0].mealID)
	assert.Equal(t, int64(1234), repo.inserts[0].dateConsumed)
}

func TestRemoveTrackedMealPassesTrackID(t *testing.T) {
	repo := newFakeRepo()
	service := NewTrackingService(repo)

	entry := models.TrackedMealEntry{TrackID: 3, DateConsumed: 1000, Meal: models.Meal{ID: 7}}
	require.NoError(t, service.RemoveTrackedMeal(context.Background(), entry))

	repo.mu.Lock()
	defer repo.mu.Unlock()
	require.Len(t, repo.deletes, 1)
	assert.Equal(t, int64(3), repo.deletes[0].trackID)
	assert.Equal(t, int64(7), repo.deletes[0].mealID)
}

func TestSameDayUsesLocalCalendarDate(t *testing.T) {
	base := time.Date(2023, time.March, 10, 23, 50, 0, 0, time.Local)
	lateNight := base.UnixNano() / int64(time.Millisecond)
	nextMorning := base.Add(20 * time.Minute).UnixNano() / int64(time.Millisecond)

	assert.False(t, sameDay(lateNight, nextMorning), "跨午夜就是不同天")
	assert.True(t, sameDay(lateNight, lateNight-time.Hour.Milliseconds()))
}
