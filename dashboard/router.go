package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Server serves the ride dashboard API.
type Server struct {
	cfg   Config
	store *RideStore
}

// NewRouter wires the API routes over store.
func NewRouter(cfg Config, store *RideStore) *gin.Engine {
	s := &Server{cfg: cfg, store: store}

	r := gin.New()
	r.MaxMultipartMemory = cfg.maxUploadBytes()
	r.Use(Logger(), gin.Recovery(), cors())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "ride dashboard is running",
			"rides":   len(store.List()),
		})
	})

	api := r.Group("/api")
	{
		rides := api.Group("/rides")
		{
			rides.GET("", s.listRides)
			rides.POST("", s.uploadRide)
			rides.GET("/:id", s.getRide)
			rides.DELETE("/:id", s.deleteRide)
			rides.GET("/:id/climbs", s.getClimbs)
			rides.GET("/:id/sprints", s.getSprints)
			rides.GET("/:id/profile", s.getProfile)
			rides.GET("/:id/map", s.getMap)
			rides.GET("/:id/notes", s.getNotes)
		}
	}
	return r
}
