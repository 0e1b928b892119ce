package router

import (
	"mealtracker-go-worker/controllers/check"
	"mealtracker-go-worker/controllers/meal"
	"mealtracker-go-worker/controllers/readProbe"
	"mealtracker-go-worker/controllers/screen"

	"github.com/gin-gonic/gin"
)

type Dependencies struct {
	Check  *check.Controller
	Meal   *meal.Controller
	Screen *screen.Controller
}

func Router(deps Dependencies) *gin.Engine {
	route := gin.Default()

	route.GET("/read-probe", readProbe.Probe)
	route.GET("/check-live", deps.Check.CheckAlive)

	api := route.Group("/api/v1")
	{
		api.GET("/meals", deps.Meal.List)
		api.POST("/meals", deps.Meal.Create)
		api.GET("/meals/:id", deps.Meal.Get)
		api.PUT("/meals/:id", deps.Meal.Update)
		api.DELETE("/meals/:id", deps.Meal.Delete)
		api.POST("/meals/:id/favourite", deps.Meal.ToggleFavourite)
		api.POST("/meals/:id/tracked", deps.Meal.ToggleTracked)
		api.GET("/tracked-meals", deps.Meal.Tracked)

		api.GET("/screens/home/stream", deps.Screen.HomeStream)
		api.POST("/screens/home/search", deps.Screen.HomeSearch)
		api.GET("/screens/favourites/stream", deps.Screen.FavouritesStream)
		api.POST("/screens/favourites/search", deps.Screen.FavouritesSearch)
		api.GET("/screens/tracking/stream", deps.Screen.TrackingStream)
		api.GET("/screens/tracking/meals/stream", deps.Screen.TrackingMealsStream)
		api.POST("/screens/tracking/search", deps.Screen.TrackingSearch)
		api.POST("/screens/tracking/date", deps.Screen.TrackingDate)
		api.POST("/screens/tracking/track", deps.Screen.Track)
		api.DELETE("/screens/tracking/track/:trackId", deps.Screen.Untrack)
		api.GET("/screens/meals/:id/stream", deps.Screen.MealDetailsStream)
	}

	return route
}
