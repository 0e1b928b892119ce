package favourites

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

// fakeRepo 只餵 WatchFavouriteMeals
type fakeRepo struct {
	favouritesCh chan []models.Meal

	mu    sync.Mutex
	dones []<-chan struct{}
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{favouritesCh: make(chan []models.Meal, 1)}
}

func (f *fakeRepo) lastDone() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dones[len(f.dones)-1]
}

func (f *fakeRepo) WatchMealsOrderedByDate(done <-chan struct{}) <-chan []models.Meal {
	return make(chan []models.Meal)
}
func (f *fakeRepo) WatchMealsOrderedByName(done <-chan struct{}) <-chan []models.Meal {
	return make(chan []models.Meal)
}
func (f *fakeRepo) WatchMeal(id int64, done <-chan struct{}) <-chan *models.Meal {
	return make(chan *models.Meal)
}
func (f *fakeRepo) WatchFavouriteMeals(done <-chan struct{}) <-chan []models.Meal {
	f.mu.Lock()
	f.dones = append(f.dones, done)
	f.mu.Unlock()
	return f.favouritesCh
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

func receiveState(t *testing.T, ch <-chan structs.FavouritesUiState) structs.FavouritesUiState {
	t.Helper()
	select {
	case state := <-ch:
		return state
	case <-time.After(2 * time.Second):
		t.Fatal("等不到 FavouritesUiState")
		return structs.FavouritesUiState{}
	}
}

func TestStateFollowsFavouritesStream(t *testing.T) {
	repo := newFakeRepo()
	service := NewFavouritesService(repo)
	ch, unsubscribe := service.Subscribe()
	defer unsubscribe()

	state := receiveState(t, ch)
	assert.Empty(t, state.MealList)

	repo.favouritesCh <- []models.Meal{{ID: 1, Name: "Oatmeal", IsFavourite: true}}
	state = receiveState(t, ch)
	require.Len(t, state.MealList, 1)
	assert.Equal(t, "Oatmeal", state.MealList[0].Name)
}

func TestCombineLoopStopsAndRestartsAfterGraceWindow(t *testing.T) {
	old := subscribeTimeout
	subscribeTimeout = 20 * time.Millisecond
	defer func() { subscribeTimeout = old }()

	repo := newFakeRepo()
	service := NewFavouritesService(repo)

	ch, unsubscribe := service.Subscribe()
	receiveState(t, ch)
	unsubscribe()

	select {
	case <-repo.lastDone():
	case <-time.After(2 * time.Second):
		t.Fatal("寬限期過後沒有取消訂閱資料來源")
	}

	ch2, unsubscribe2 := service.Subscribe()
	defer unsubscribe2()
	receiveState(t, ch2)

	repo.favouritesCh <- []models.Meal{{ID: 1, Name: "Oatmeal", IsFavourite: true}}
	state := receiveState(t, ch2)
	require.Len(t, state.MealList, 1)
}

func TestSearchQueryFiltersFavourites(t *testing.T) {
	repo := newFakeRepo()
	service := NewFavouritesService(repo)
	ch, unsubscribe := service.Subscribe()
	defer unsubscribe()

	receiveState(t, ch)
	repo.favouritesCh <- []models.Meal{
		{ID: 1, Name: "Apple", IsFavourite: true},
		{ID: 2, Name: "Banana", IsFavourite: true},
	}
	receiveState(t, ch)

	service.OnSearchQueryChange("app")
	state := receiveState(t, ch)
	require.Len(t, state.MealList, 1)
	assert.Equal(t, "Apple", state.MealList[0].Name)
}
