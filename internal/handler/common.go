package handler // handler defines http handlers

import (
    "errors"   // errors provides sentinel values used in getUserID
    "net/http" // HTTP status codes
    "strconv"  // strconv converts strings to numeric types
    "time"     // date parsing

    "github.com/labstack/echo/v4" // echo defines request context types
    "go.uber.org/zap"             // structured logging of unexpected failures

    "github.com/iliyamo/hotel-room-reservation/internal/service"
)

// dateLayout is the wire format of stay dates.
const dateLayout = "2006-01-02"

// busyRetryAfter is sent with 503 responses when a room lock could not be
// taken; the lock lifetime bounds how long a holder can keep it.
const busyRetryAfter = "2"

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64: // numeric JWT claims decode as float64
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, false
    }
    return id, true
}

// parseDate parses a YYYY-MM-DD stay date as UTC midnight.
func parseDate(s string) (time.Time, error) {
    return time.ParseInLocation(dateLayout, s, time.UTC)
}

// writeError translates service error kinds into HTTP responses.  Anything
// that is not a service.Error is logged and reported as 500 without
// details.
func writeError(c echo.Context, logger *zap.Logger, err error) error {
    var se *service.Error
    if errors.As(err, &se) {
        switch {
        case errors.Is(err, service.ErrValidation):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": se.Msg})
        case errors.Is(err, service.ErrNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": se.Msg})
        case errors.Is(err, service.ErrForbidden):
            return c.JSON(http.StatusForbidden, echo.Map{"error": se.Msg})
        case errors.Is(err, service.ErrConflict):
            return c.JSON(http.StatusConflict, echo.Map{"error": se.Msg})
        case errors.Is(err, service.ErrBusy):
            c.Response().Header().Set("Retry-After", busyRetryAfter)
            return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": se.Msg})
        }
    }
    logger.Error("request failed",
        zap.String("method", c.Request().Method),
        zap.String("path", c.Path()),
        zap.Error(err),
    )
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// ErrorHandler renders errors that escape handlers (routing misses,
// middleware rejections, *echo.HTTPError) in the same {"error": ...}
// shape the handlers use.
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
    return func(err error, c echo.Context) {
        if c.Response().Committed {
            return
        }
        code := http.StatusInternalServerError
        msg := "internal error"
        var he *echo.HTTPError
        if errors.As(err, &he) {
            code = he.Code
            if s, ok := he.Message.(string); ok {
                msg = s
            } else {
                msg = http.StatusText(code)
            }
        } else {
            logger.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
        }
        var werr error
        if c.Request().Method == http.MethodHead {
            werr = c.NoContent(code)
        } else {
            werr = c.JSON(code, echo.Map{"error": msg})
        }
        if werr != nil {
            logger.Warn("write error response", zap.Error(werr))
        }
    }
}
