package screen

import (
	"io"
	"net/http"
	"strconv"

	"mealtracker-go-worker/models"
	"mealtracker-go-worker/repository"
	"mealtracker-go-worker/services/favourites"
	"mealtracker-go-worker/services/home"
	mealService "mealtracker-go-worker/services/meal"
	"mealtracker-go-worker/services/tracking"
	"mealtracker-go-worker/structs"

	"github.com/gin-gonic/gin"
)

// Controller 把各畫面的狀態串流用 SSE 吐給 UI，
// intent 則是一般的 JSON endpoint
type Controller struct {
	Home       *home.HomeService
	Favourites *favourites.FavouritesService
	Tracking   *tracking.TrackingService
	Repo       repository.MealsRepository
}

func (ctl *Controller) HomeStream(c *gin.Context) {
	ch, unsubscribe := ctl.Home.Subscribe()
	defer unsubscribe()
	streamHeaders(c)
	c.Stream(func(w io.Writer) bool {
		select {
		case state, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("state", state)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (ctl *Controller) HomeSearch(c *gin.Context) {
	var param structs.SearchParam
	if err := c.ShouldBindJSON(&param); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	ctl.Home.OnSearchQueryChange(param.Query)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (ctl *Controller) FavouritesStream(c *gin.Context) {
	ch, unsubscribe := ctl.Favourites.Subscribe()
	defer unsubscribe()
	streamHeaders(c)
	c.Stream(func(w io.Writer) bool {
		select {
		case state, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("state", state)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (ctl *Controller) FavouritesSearch(c *gin.Context) {
	var param structs.SearchParam
	if err := c.ShouldBindJSON(&param); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	ctl.Favourites.OnSearchQueryChange(param.Query)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (ctl *Controller) TrackingStream(c *gin.Context) {
	ch, unsubscribe := ctl.Tracking.Subscribe()
	defer unsubscribe()
	streamHeaders(c)
	c.Stream(func(w io.Writer) bool {
		select {
		case state, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("state", state)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// TrackingMealsStream 加入追蹤的選單：所有 meal 過搜尋字串
func (ctl *Controller) TrackingMealsStream(c *gin.Context) {
	ch, unsubscribe := ctl.Tracking.SubscribeAllMeals()
	defer unsubscribe()
	streamHeaders(c)
	c.Stream(func(w io.Writer) bool {
		select {
		case meals, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("meals", meals)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (ctl *Controller) TrackingSearch(c *gin.Context) {
	var param structs.SearchParam
	if err := c.ShouldBindJSON(&param); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	ctl.Tracking.OnSearchQueryChange(param.Query)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (ctl *Controller) TrackingDate(c *gin.Context) {
	var param structs.DateParam
	if err := c.ShouldBindJSON(&param); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	ctl.Tracking.OnDateChange(param.Date)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Track 把 meal 記到目前選擇的日期
func (ctl *Controller) Track(c *gin.Context) {
	var param structs.TrackParam
	if err := c.ShouldBindJSON(&param); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	found, err := ctl.Repo.MealByID(param.MealID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	if found == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "meal not found"})
		return
	}
	if err := ctl.Tracking.TrackNewMeal(c.Request.Context(), *found); err != nil {
		if err == repository.ErrMealNotFound {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (ctl *Controller) Untrack(c *gin.Context) {
	trackID, err := strconv.ParseInt(c.Param("trackId"), 10, 64)
	if err != nil || trackID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid track id"})
		return
	}
	entry := models.TrackedMealEntry{TrackID: trackID}
	if err := ctl.Tracking.RemoveTrackedMeal(c.Request.Context(), entry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MealDetailsStream 單一 meal 的明細狀態
func (ctl *Controller) MealDetailsStream(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid meal id"})
		return
	}
	service := mealService.NewMealDetailsService(ctl.Repo, id)
	ch, unsubscribe := service.Subscribe()
	defer unsubscribe()
	streamHeaders(c)
	c.Stream(func(w io.Writer) bool {
		select {
		case state, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("state", state)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func streamHeaders(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
}
