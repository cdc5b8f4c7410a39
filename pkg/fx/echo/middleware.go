package echo

import (
	"errors"
	"fmt"
	"net/http"

	logging "github.com/ipfs/go-log/v2"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/jaye773/summarizer-core/internal/queue"
)

// ErrorLogger is a middleware that logs errors to the provided logger.
func ErrorLogger(log logging.EventLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err != nil {
				// do not log HTTP errors, since they have been "handled" already
				var HTTPError *echo.HTTPError
				if !errors.As(err, &HTTPError) {
					log.Error(err)
				}
			}
			return err
		}
	}
}

// RequestLogger logs every request through the given zap-backed logger,
// mirroring the teacher's structured access-log middleware.
func RequestLogger(logger *logging.ZapEventLogger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogURI:       true,
		LogStatus:    true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.Int("status", v.Status),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.String("remote_ip", v.RemoteIP),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			switch {
			case v.Status >= http.StatusInternalServerError:
				logger.WithOptions(zap.Fields(fields...)).Error("server error")
			case v.Status >= http.StatusBadRequest:
				logger.WithOptions(zap.Fields(fields...)).Warn("client error")
			default:
				logger.WithOptions(zap.Fields(fields...)).Info("request completed")
			}
			return nil
		},
	})
}

// ErrorResponse is the JSON body written by HandleError.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HandleError is a centralized echo.HTTPErrorHandler mapping the core's
// sentinel error types to HTTP status codes, generalized from the teacher's
// types.Error-keyed CustomHTTPErrorHandler.
func HandleError(err error, c echo.Context) {
	if err == nil || c.Response().Committed {
		return
	}

	code, message := extractErrorInfo(err)
	if jsonErr := c.JSON(code, ErrorResponse{Error: message}); jsonErr != nil {
		c.Logger().Errorf("failed to send error response: %v", jsonErr)
	}
}

func extractErrorInfo(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var rejected *queue.RejectedError
	if errors.As(err, &rejected) {
		switch rejected.Reason {
		case queue.ReasonRateLimited:
			return http.StatusTooManyRequests, rejected.Error()
		case queue.ReasonQueueFull:
			return http.StatusServiceUnavailable, rejected.Error()
		default:
			return http.StatusBadRequest, rejected.Error()
		}
	}

	return http.StatusInternalServerError, err.Error()
}
