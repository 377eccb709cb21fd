package apperrors

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// EchoHandler centralizes error -> HTTP envelope mapping so handlers never
// write error JSON themselves: the client never sees internal detail, and
// the server log always records full context.
func EchoHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		errCode := CodeInternal
		message := "internal server error"
		reqID := c.Response().Header().Get(echo.HeaderXRequestID)

		switch e := err.(type) {
		case *AppError:
			code = e.HTTPStatus
			errCode = e.Code
			message = e.Message
			if code >= 500 {
				logger.Error("application error",
					zap.String("request_id", reqID),
					zap.String("error_code", errCode),
					zap.Error(e.Err))
			} else {
				logger.Info("client error",
					zap.String("request_id", reqID),
					zap.String("error_code", errCode),
					zap.String("message", message))
			}
		case *echo.HTTPError:
			code = e.Code
			if msg, ok := e.Message.(string); ok {
				message = msg
			}
			errCode = mapHTTPStatus(code)
			logger.Warn("http error",
				zap.String("request_id", reqID),
				zap.Int("status", code))
		default:
			logger.Error("unknown error",
				zap.String("request_id", reqID),
				zap.Error(err))
		}

		_ = c.JSON(code, map[string]any{
			"error": map[string]any{
				"code":    errCode,
				"message": message,
			},
		})
	}
}

func mapHTTPStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeValidation
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	case http.StatusBadGateway:
		return CodeExternalUnavailable
	case http.StatusGatewayTimeout:
		return CodeTimeout
	default:
		return CodeInternal
	}
}
