// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taxipark/internal/http/handlers"
	"taxipark/internal/http/middleware"
	"taxipark/internal/modules/history"
	"taxipark/internal/sim"
)

type RouterDeps struct {
	Sim     *sim.Simulator
	History *history.Store
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery())

	park := handlers.NewParkHandler(deps.Sim)
	r.POST("/api/orders", park.SubmitOrder)
	r.GET("/api/fleet", park.Fleet)
	r.GET("/api/clients", park.Clients)
	r.GET("/api/stats", park.Stats)
	r.GET("/api/events", park.Events)

	hist := handlers.NewHistoryHandler(deps.History)
	r.GET("/api/history", hist.Recent)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
