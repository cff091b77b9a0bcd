package echo

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appbatch "github.com/mohammadpnp/resumebatch/internal/application/batch"
)

// NewServer builds the echo instance for the batch engine's HTTP
// control surface, mirroring the teacher's NewHTTPServer: request
// logging and recover middleware, then one route group per resource.
func NewServer(controller *appbatch.Controller) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())

	h := &BatchHandler{Controller: controller}

	e.GET("/healthz", healthz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	batches := e.Group("/batches")
	batches.POST("", h.CreateBatch)
	batches.GET("/:id", h.GetBatch)
	batches.DELETE("/:id", h.TeardownBatch)
	batches.POST("/:id/control", h.ControlBatch)
	batches.GET("/:id/items", h.ListItems)

	return e
}

func healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, apiResponse{Data: map[string]string{"status": "ok"}})
}
