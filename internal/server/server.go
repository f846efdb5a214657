// Package server is a small JSON API for trying the table against a real
// HTTP source. Each resource is backed by a Fetcher and answers the query
// parameters the HTTP fetcher sends.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/imgajeed76/lttable/internal/fetch"
	"github.com/imgajeed76/lttable/internal/logger"
	"github.com/imgajeed76/lttable/internal/record"
	"github.com/sirupsen/logrus"
	ginlog "github.com/toorop/gin-logrus"
)

const shutdownTimeout = 5 * time.Second

// response is the envelope understood by fetch.DecodeResult.
type response struct {
	Rows      []record.Record `json:"rows"`
	PageCount int             `json:"page_count"`
}

// Server routes GET /<resource> to the matching Fetcher.
type Server struct {
	router    *gin.Engine
	resources map[string]fetch.Fetcher
}

// New builds a server for resources, keyed by name without the leading
// slash ("comments" serves /comments).
func New(resources map[string]fetch.Fetcher) *Server {
	if logger.Log.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		router:    gin.New(),
		resources: resources,
	}
	s.router.Use(ginlog.Logger(logger.Log), gin.Recovery())
	s.router.GET("/", s.index)
	s.router.GET("/:resource", s.listRows)
	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Resources returns the served resource names in order.
func (s *Server) Resources() []string {
	names := make([]string, 0, len(s.resources))
	for name := range s.resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Infof("serving %v on %s", s.Resources(), addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func (s *Server) index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"resources": s.Resources()})
}

func (s *Server) listRows(c *gin.Context) {
	name := c.Param("resource")
	src, ok := s.resources[name]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown resource %q", name)})
		return
	}

	q, err := fetch.DecodeParams(c.Request.URL.Query())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q.APIURL = "/" + name

	reqID := c.GetHeader("X-Request-Id")
	if reqID != "" {
		c.Header("X-Request-Id", reqID)
	}
	ctx := fetch.WithRequestID(c.Request.Context(), reqID)

	res, err := src.Fetch(ctx, q)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"request": reqID, "query": q.String()}).WithError(err).Error("fetch failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	rows := res.Rows
	if rows == nil {
		rows = []record.Record{}
	}
	c.JSON(http.StatusOK, response{Rows: rows, PageCount: res.PageCount})
}
