package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/estatehub/internal/common"
	"github.com/joseph-ayodele/estatehub/internal/guard"
	"github.com/joseph-ayodele/estatehub/internal/session"
)

const headerRequestID = "X-Request-ID"

// requestID propagates or assigns a request id and logs the request outcome.
func requestID(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.New().String()
		}
		c.Header(headerRequestID, id)
		c.Request = c.Request.WithContext(common.WithRequestID(c.Request.Context(), id))

		start := time.Now()
		c.Next()
		logger.Info("http.request",
			"request_id", id,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}
}

// tokenFrom returns the bearer token, falling back to the session cookie.
func (r *Router) tokenFrom(c *gin.Context) string {
	if t := session.BearerToken(c.GetHeader("Authorization")); t != "" {
		return t
	}
	if cookie, err := c.Cookie(r.cookieName); err == nil {
		return cookie
	}
	return ""
}

// resolveSession attaches the caller's session to the request context when
// the token is valid. It never aborts.
func (r *Router) resolveSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := r.tokenFrom(c)
		if token == "" {
			c.Next()
			return
		}
		sess, err := r.sessions.CurrentSession(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, common.ErrUnauthorized) {
				r.logger.Warn("session lookup failed", "error", err)
			}
			c.Next()
			return
		}
		ctx := session.WithSession(c.Request.Context(), sess)
		c.Request = c.Request.WithContext(common.WithUserID(ctx, sess.UserID))
		c.Next()
	}
}

// requireSession rejects callers without a valid session.
func (r *Router) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := session.FromContext(c.Request.Context()); !ok {
			abortWithError(c, r.logger, common.UnauthorizedErrorf("sign in required"))
			return
		}
		c.Next()
	}
}

// requireReviewer rejects callers that are not configured reviewers.
func (r *Router) requireReviewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, _ := session.FromContext(c.Request.Context())
		if !r.profiles.IsReviewer(sess.UserID) {
			abortWithError(c, r.logger, common.ForbiddenErrorf("caller is not a reviewer"))
			return
		}
		c.Next()
	}
}

// guardState resolves the guard inputs for the current request. A failed
// profile lookup is reported as still loading.
func (r *Router) guardState(c *gin.Context) guard.State {
	sess, ok := session.FromContext(c.Request.Context())
	if !ok {
		return guard.State{}
	}
	state := guard.State{HasSession: true}
	_, err := r.profiles.GetActiveProfile(c.Request.Context(), sess)
	switch {
	case err == nil:
		state.HasActiveProfile = true
	case errors.Is(err, common.ErrNotFound):
	default:
		r.logger.Warn("guard profile lookup failed", "user_id", sess.UserID, "error", err)
		state.ProfileLoading = true
	}
	return state
}

// guarded redirects callers the guard does not allow through.
func (r *Router) guarded() gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := r.guard.Evaluate(r.guardState(c))
		if decision.Redirects() {
			c.Redirect(http.StatusFound, decision.Path)
			c.Abort()
			return
		}
		if decision.Loading {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, errorBody{
				Code:    "LOADING",
				Message: unavailableMessage,
			})
			return
		}
		c.Next()
	}
}
