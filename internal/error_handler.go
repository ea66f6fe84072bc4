package internal

import (
	"errors"
	"net/http"

	"botfolio/internal/xe"
	"github.com/go-orz/orz"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// WithErrorHandler 统一错误响应，业务错误码见 internal/xe
func WithErrorHandler(logger *zap.Logger) func(next echo.HandlerFunc) echo.HandlerFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			var he *echo.HTTPError
			if errors.As(err, &he) {
				return c.JSON(he.Code, orz.Map{
					"code":    he.Code,
					"message": err.Error(),
				})
			}

			var oe *orz.Error
			if errors.As(err, &oe) {
				return c.JSON(httpStatusFor(err), orz.Map{
					"code":    oe.Code,
					"message": err.Error(),
				})
			}

			logger.Error("unhandled api error",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err))

			return c.JSON(http.StatusInternalServerError, orz.Map{
				"code":    http.StatusInternalServerError,
				"message": err.Error(),
			})
		}
	}
}

// httpStatusFor 业务错误默认返回400，认证和归属类错误单独映射
func httpStatusFor(err error) int {
	switch {
	case errors.Is(err, xe.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, xe.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, xe.ErrTradeNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}
