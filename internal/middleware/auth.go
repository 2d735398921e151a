package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"fashion-shop/internal/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const actorKey contextKey = "actor"

// Claims are the bearer token fields the API relies on. Tokens are issued
// elsewhere and only verified here.
type Claims struct {
	Name string     `json:"name"`
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

// WithActor stores the authenticated caller in ctx.
func WithActor(ctx context.Context, actor model.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the caller stored by BearerAuth.
func ActorFromContext(ctx context.Context) (model.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(model.Actor)
	return actor, ok
}

// ParseToken verifies an HS256 token and returns its caller.
func ParseToken(secret []byte, raw string) (model.Actor, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return model.Actor{}, err
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.Actor{}, errors.New("token subject is not a user id")
	}
	if !claims.Role.Valid() {
		return model.Actor{}, errors.New("token carries an unknown role")
	}

	return model.Actor{ID: id, Name: claims.Name, Role: claims.Role}, nil
}

// BearerAuth rejects requests without a valid "Authorization: Bearer" token
// and puts the caller into the request context.
func BearerAuth(secret string, logger zerolog.Logger) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			fields := strings.Fields(header)
			if len(fields) != 2 || !strings.EqualFold(fields[0], "bearer") {
				logger.Warn().Str("path", r.URL.Path).Msg("missing bearer token")
				writeMessage(w, http.StatusUnauthorized, model.ErrUnauthorised.Message)
				return
			}

			actor, err := ParseToken(key, fields[1])
			if err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("invalid bearer token")
				writeMessage(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// RequireRole lets through only callers holding one of roles. It must run
// after BearerAuth.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				writeMessage(w, http.StatusUnauthorized, model.ErrUnauthorised.Message)
				return
			}
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeMessage(w, http.StatusForbidden, model.ErrForbidden.Message)
		})
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
