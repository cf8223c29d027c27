// Package server exposes the bridge over HTTP for callers that cannot spawn
// a process per request.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/valpere/argobridge/internal/bridge"
	"github.com/valpere/argobridge/internal/codec"
	"github.com/valpere/argobridge/internal/engine"
)

const (
	shutdownTimeout = 10 * time.Second

	DefaultTranslateTimeout = 30 * time.Second
)

type Options struct {
	// TranslateTimeout bounds one /multi-translate request. Zero or less
	// disables the limit.
	TranslateTimeout time.Duration
	Logger           logrus.FieldLogger
}

type Server struct {
	bridge  *bridge.Bridge
	engine  engine.Engine
	timeout time.Duration
	logger  logrus.FieldLogger
	router  *gin.Engine
}

func New(b *bridge.Bridge, e engine.Engine, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Server{bridge: b, engine: e, timeout: opts.TranslateTimeout, logger: logger}

	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())
	r.POST("/multi-translate", s.handleTranslate)
	r.GET("/health", s.handleHealth)
	s.router = r

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StatusFor maps a bridge response to an HTTP status code.
func StatusFor(resp any) int {
	f, ok := resp.(*codec.Failure)
	if !ok {
		return http.StatusOK
	}
	switch f.Message {
	case codec.MsgNoInput, codec.MsgInvalidJSON, codec.MsgMissingFields:
		return http.StatusBadRequest
	case codec.MsgTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleTranslate(c *gin.Context) {
	raw, err := c.GetRawData()
	var resp any
	if err != nil {
		resp = codec.NewFailure(codec.MsgNoInput, err.Error())
	} else {
		resp = s.handle(c.Request.Context(), raw)
	}

	c.Header("Content-Type", "application/json; charset=utf-8")
	c.Status(StatusFor(resp))
	if err := codec.Encode(c.Writer, resp); err != nil {
		s.logger.WithError(err).Error("failed to write response")
	}
}

// handle runs the bridge under the translate timeout. On expiry the engine
// calls see a cancelled context and the caller gets a timeout failure
// without waiting for them to return.
func (s *Server) handle(ctx context.Context, raw []byte) any {
	if s.timeout <= 0 {
		return s.bridge.Handle(ctx, raw)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan any, 1)
	go func() {
		done <- s.bridge.Handle(ctx, raw)
	}()

	select {
	case resp := <-done:
		return resp
	case <-ctx.Done():
		s.logger.WithField("timeout", s.timeout).Warn("translation timed out")
		return codec.NewFailure(codec.MsgTimeout, ctx.Err().Error())
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.engine.IsAvailable(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"engine": s.engine.Name(),
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "engine": s.engine.Name()})
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
			"client":  c.ClientIP(),
		}).Debug("request")
	}
}
