package httpmw

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// CORS restricts cross-origin access to the configured origin allowlist.
// An empty allowlist means no cross-origin access at all (config.Load
// already refuses to start with an empty allowlist in production).
func CORS(allowedOrigins []string) echo.MiddlewareFunc {
	cfg := middleware.CORSConfig{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{echo.GET, echo.POST, echo.PUT, echo.PATCH, echo.DELETE},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}
	if len(allowedOrigins) == 0 {
		// echo treats an empty AllowOrigins as "*", so refuse every origin explicitly.
		cfg.AllowOriginFunc = func(origin string) (bool, error) { return false, nil }
	}
	return middleware.CORSWithConfig(cfg)
}
