package echoServer

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"librarymgmt/app/echoServer/jwtx"
	userrepo "librarymgmt/repository/user"
	jwtutil "librarymgmt/util/jwt"
	"librarymgmt/util/response"
)

func RegisterMiddlewares(e *echo.Echo) {

	e.Use(middleware.Recover())

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))

	e.Use(Slog())
}

func Slog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			lat := time.Since(start).Milliseconds()

			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			slog.Info("http",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", c.Response().Status,
				"latency_ms", lat,
				"req_id", rid,
				"ip", c.RealIP(),
			)
			return err
		}
	}
}

// Auth verifies the bearer token, loads the caller and enforces the
// single-session rule: a JWT that no longer matches the profile's stored
// current token was superseded by a newer login and is rejected.
func Auth(ur userrepo.Repo, secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := jwtutil.FromAuthHeader(c.Request().Header.Get("Authorization"))
			if err != nil {
				return c.JSON(http.StatusUnauthorized,
					response.New(401, "Token not found", nil))
			}
			id, err := jwtutil.ParseSubject(raw, secret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized,
					response.New(401, "Invalid token", nil))
			}

			a, err := ur.ByID(c.Request().Context(), id)
			if err != nil {
				rid := c.Response().Header().Get(echo.HeaderXRequestID)
				slog.Error("auth lookup failed", "err", err, "req_id", rid)
				return c.JSON(http.StatusInternalServerError,
					response.New(500, "Something went wrong, Please try again!!!", nil))
			}
			if a == nil {
				return c.JSON(http.StatusUnauthorized,
					response.New(401, "Invalid token", nil))
			}
			if a.Profile == nil {
				return c.JSON(http.StatusOK,
					response.New(200, "User Profile not exist, Please contact Administrator!!!", nil))
			}
			if a.Profile.CurrentToken != raw {
				return c.JSON(http.StatusUnauthorized,
					response.New(401, "Token did not match with that of user's!!!", nil))
			}
			if !a.IsActive {
				return c.JSON(http.StatusOK,
					response.New(400, "Your account is not activated yet, Please activate account or contact your administrator!!!", nil))
			}

			jwtx.SetAccount(c, a)
			return next(c)
		}
	}
}
