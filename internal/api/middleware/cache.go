package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/magicstays/villa-api/internal/api/metrics"
	"github.com/magicstays/villa-api/internal/infrastructure/cache"
)

// Cache serves read routes from the response cache for up to ttl. The key is
// the full request URI, so each API line caches independently. Only 200
// responses are stored; everything else passes through untouched.
func Cache(store cache.Store, ttl time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if ttl <= 0 || c.Request().Method != http.MethodGet {
				return next(c)
			}

			ctx := c.Request().Context()
			key := c.Request().URL.RequestURI()

			if body, ok := store.Get(ctx, key); ok {
				metrics.CacheTotal.WithLabelValues("hit").Inc()
				return c.JSONBlob(http.StatusOK, body)
			}
			metrics.CacheTotal.WithLabelValues("miss").Inc()

			rec := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = rec

			if err := next(c); err != nil {
				return err
			}

			if rec.status == http.StatusOK {
				store.Set(ctx, key, rec.buf.Bytes(), ttl)
			}
			return nil
		}
	}
}

// captureWriter tees the response body so a successful payload can be stored
// after the handler has written it.
type captureWriter struct {
	http.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (w *captureWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}
