package bootstrap

import (
	"github.com/labstack/echo/v4"

	httpecho "github.com/mohammadpnp/resumebatch/internal/interfaces/http/echo"
)

// NewHTTPServer builds the batch engine's echo server around an
// already-wired Engine's Controller, mirroring the teacher's
// NewHTTPServer(db *gorm.DB) *echo.Echo.
func NewHTTPServer(e *Engine) *echo.Echo {
	return httpecho.NewServer(e.Controller)
}
