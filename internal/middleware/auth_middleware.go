package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go-leave/internal/session"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/response"
	"go-leave/internal/shared/token"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	CtxUserID    = "user_id"
	CtxRole      = "role"
	CtxEmail     = "email"
	CtxSessionID = "session_id"
	CtxSession   = "session"

	AccessTokenCookie = "access_token"
	SessionIDHeader   = "X-Session-ID"
)

type TokenParser interface {
	Parse(raw string) (*token.Claims, error)
}

type SessionValidator interface {
	Validate(ctx context.Context, id string) (*session.Session, error)
}

type credential struct {
	sessionID string
	claims    *token.Claims
}

// AuthMiddleware resolves the caller's session from a bearer JWT, the
// access_token cookie, or a raw session id in X-Session-ID, then validates it
// against the session store. Any lookup failure yields 401.
func AuthMiddleware(tokens TokenParser, sessions SessionValidator) gin.HandlerFunc {
	log := zap.L().Named("middleware.auth")

	return func(c *gin.Context) {
		cred, err := resolveCredential(c, tokens)
		if err != nil {
			switch {
			case errors.Is(err, token.ErrTokenExpired):
				response.Abort(c, http.StatusUnauthorized, "TOKEN_EXPIRED", "Token has expired", nil)
			case errors.Is(err, token.ErrInvalidToken):
				response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token", nil)
			default:
				response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Access denied. No session provided.", nil)
			}
			return
		}

		sess, err := sessions.Validate(c.Request.Context(), cred.sessionID)
		if err != nil {
			switch {
			case errors.Is(err, session.ErrIdleTimeout):
				response.Abort(c, http.StatusUnauthorized, "SESSION_EXPIRED", "Session expired due to inactivity", nil)
			case errors.Is(err, session.ErrNotFound):
				response.Abort(c, http.StatusUnauthorized, "SESSION_INVALID", "Invalid or expired session", nil)
			default:
				log.Error("session lookup failed", zap.Error(err))
				response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication failed", nil)
			}
			return
		}

		if cred.claims != nil && cred.claims.UserID != sess.UserID {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token", nil)
			return
		}

		c.Set(CtxUserID, sess.UserID)
		c.Set(CtxRole, sess.Role)
		c.Set(CtxEmail, sess.Email)
		c.Set(CtxSessionID, sess.ID)
		c.Set(CtxSession, sess)

		ctx := c.Request.Context()
		ctx = contextutil.WithUserID(ctx, sess.UserID)
		ctx = contextutil.WithRole(ctx, sess.Role)
		ctx = contextutil.WithLogger(ctx, contextutil.GetLogger(ctx, log).With(
			zap.String("user_id", sess.UserID),
			zap.String("role", sess.Role),
		))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

var errNoCredential = errors.New("no credential")

func resolveCredential(c *gin.Context, tokens TokenParser) (credential, error) {
	if bearer, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
		bearer = strings.TrimSpace(bearer)
		if bearer != "" {
			if !looksLikeJWT(bearer) {
				return credential{sessionID: bearer}, nil
			}
			return parseJWT(tokens, bearer)
		}
	}

	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return parseJWT(tokens, cookie)
	}

	if sid := strings.TrimSpace(c.GetHeader(SessionIDHeader)); sid != "" {
		return credential{sessionID: sid}, nil
	}

	return credential{}, errNoCredential
}

func parseJWT(tokens TokenParser, raw string) (credential, error) {
	claims, err := tokens.Parse(raw)
	if err != nil {
		return credential{}, err
	}
	return credential{sessionID: claims.SessionID, claims: claims}, nil
}

func looksLikeJWT(s string) bool {
	return strings.Count(s, ".") == 2
}
