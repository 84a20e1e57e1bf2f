package middleware

// identity.go defines helper functions shared across middleware files. It
// renders the authenticated user stored by JWTAuth as a string key for the
// rate limiter. When no user is authenticated, "anon" is returned.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// userID renders the user_id set by JWTAuth. JSON numbers decode as
// float64, so every numeric form is accepted.
func userID(c echo.Context) string {
    switch v := c.Get("user_id").(type) {
    case string:
        if v != "" {
            return v
        }
    case float64:
        return strconv.FormatUint(uint64(v), 10)
    case uint64:
        return strconv.FormatUint(v, 10)
    case int64:
        return strconv.FormatInt(v, 10)
    case int:
        return strconv.Itoa(v)
    }
    return "anon"
}
