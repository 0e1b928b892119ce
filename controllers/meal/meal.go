package meal

import (
	"net/http"
	"strconv"

	"mealtracker-go-worker/enums"
	"mealtracker-go-worker/repository"
	mealService "mealtracker-go-worker/services/meal"
	"mealtracker-go-worker/structs"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	Repo repository.MealsRepository
}

func NewController(repo repository.MealsRepository) *Controller {
	return &Controller{Repo: repo}
}

// List 一次性的快照查詢，?order=name|date，?favourite=1 只看最愛
func (ctl *Controller) List(c *gin.Context) {
	if c.Query("favourite") == "1" {
		meals, err := ctl.Repo.FavouriteMeals()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, meals)
		return
	}

	var meals interface{}
	var err error
	switch c.DefaultQuery("order", enums.OrderByName) {
	case enums.OrderByDate:
		meals, err = ctl.Repo.MealsOrderedByDate()
	default:
		meals, err = ctl.Repo.MealsOrderedByName()
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, meals)
}

func (ctl *Controller) Tracked(c *gin.Context) {
	entries, err := ctl.Repo.TrackedMeals()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (ctl *Controller) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	found, err := ctl.Repo.MealByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	if found == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "meal not found"})
		return
	}
	c.JSON(http.StatusOK, found)
}

// Create 走新增表單的流程：草稿不合法回 422，不會寫進資料庫
func (ctl *Controller) Create(c *gin.Context) {
	var details structs.MealDetails
	if err := c.ShouldBindJSON(&details); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	service := mealService.NewAddMealService(ctl.Repo)
	service.UpdateUiState(details)
	if !service.MealUiState().IsEntryValid {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": "meal details are not valid"})
		return
	}
	persisted, err := service.SaveMeal(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, persisted)
}

// Update 走編輯表單的流程：先把既有資料帶進草稿再套用變更
func (ctl *Controller) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	service, err := mealService.NewEditMealService(ctl.Repo, id)
	if err != nil {
		if err == mealService.ErrMealMissing {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "meal not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	var details structs.MealDetails
	if err := c.ShouldBindJSON(&details); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	service.UpdateUiState(details)
	if !service.MealUiState().IsEntryValid {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": "meal details are not valid"})
		return
	}
	persisted, err := service.SaveMeal(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, persisted)
}

func (ctl *Controller) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	service := mealService.NewMealDetailsService(ctl.Repo, id)
	if err := service.DeleteMeal(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (ctl *Controller) ToggleFavourite(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	service := mealService.NewMealDetailsService(ctl.Repo, id)
	updated, err := service.ToggleFavourite(c.Request.Context())
	if err != nil {
		if err == mealService.ErrMealMissing {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "meal not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (ctl *Controller) ToggleTracked(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	service := mealService.NewMealDetailsService(ctl.Repo, id)
	updated, err := service.ToggleTracked(c.Request.Context())
	if err != nil {
		if err == mealService.ErrMealMissing {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "meal not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid meal id"})
		return 0, false
	}
	return id, true
}
