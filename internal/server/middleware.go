package server

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/transnet/rms/internal/auditcontext"
	obscontext "github.com/transnet/rms/internal/observability/context"
)

const (
	headerActor     = "X-Actor"
	headerRequestID = "X-Request-Id"
)

// ActorContext seeds the request context with the caller identity and the
// request metadata that audit records and log lines pick up downstream.
func (s *Server) ActorContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		requestID := strings.TrimSpace(c.GetHeader(headerRequestID))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx = obscontext.WithRequestID(ctx, requestID)
		ctx = auditcontext.WithRequestID(ctx, requestID)
		c.Header(headerRequestID, requestID)

		actor := strings.TrimSpace(c.GetHeader(headerActor))
		if actor != "" {
			ctx = obscontext.WithActor(ctx, "user", actor)
			ctx = auditcontext.WithActorName(ctx, actor)
		}

		ctx = auditcontext.WithIPAddress(ctx, c.ClientIP())
		ctx = auditcontext.WithUserAgent(ctx, c.Request.UserAgent())

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// requireAction rejects the request unless the calling actor holds the
// named permission.
func (s *Server) requireAction(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := strings.TrimSpace(c.GetHeader(headerActor))
		if actor == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		if err := s.authzSvc.Authorize(c.Request.Context(), actor, object, action); err != nil {
			AbortWithError(c, err)
			return
		}

		c.Next()
	}
}

// WriteRateLimit throttles mutating endpoints per actor. It is a passthrough
// when rate limiting is disabled.
func (s *Server) WriteRateLimit(endpoint string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.writeLimiter == nil {
			c.Next()
			return
		}

		actor := strings.TrimSpace(c.GetHeader(headerActor))
		result, err := s.writeLimiter.Allow(c.Request.Context(), actor, endpoint)
		if err != nil {
			// Redis being down should not take writes with it.
			c.Next()
			return
		}

		if !result.Allowed {
			s.obsMetrics.RecordRateLimitDenied(c.Request.Context(), endpoint, "write_rate")
			c.Header("Retry-After", fmt.Sprintf("%d", int(result.RetryAfter.Seconds())+1))
			AbortWithError(c, ErrTooManyRequests)
			return
		}

		s.obsMetrics.RecordRateLimitAllowed(c.Request.Context(), endpoint)
		c.Next()
	}
}
