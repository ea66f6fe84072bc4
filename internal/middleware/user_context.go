package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// UserIDHeader 上游认证网关注入的用户标识
const UserIDHeader = "X-User-Id"

// UserContext 用户侧接口的身份中间件。
// 用户认证由上游网关完成，这里只读取注入的用户ID。
func UserContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := c.Request().Header.Get(UserIDHeader)
			if userID == "" {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"error": "未授权：缺少用户标识",
				})
			}

			c.Set("bot_user_id", userID)
			return next(c)
		}
	}
}

// BotUserID 从Context取出用户ID
func BotUserID(c echo.Context) string {
	userID, _ := c.Get("bot_user_id").(string)
	return userID
}
