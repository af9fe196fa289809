package ui

import (
	"context"

	"github.com/gin-gonic/gin"
)

// withTimeout bounds the request by the configured timeout
func (s *Server) withTimeout(h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), s.timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		h(c)
	}
}

// acquire waits for an assessment slot; it fails when the request context ends first
func (s *Server) acquire(ctx context.Context) (release func(), err error) {
	if err := s.assessSem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { s.assessSem.Release(1) }, nil
}
