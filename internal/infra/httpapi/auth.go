package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"internship_tracker/internal/app"
	"internship_tracker/internal/common"
	"internship_tracker/internal/domain/user"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// Claims is the bearer token body. The subject carries the user id; the
// user_id claim is read only when a token has no subject.
type Claims struct {
	UserID     int64     `json:"user_id,omitempty"`
	Role       user.Role `json:"role"`
	Department string    `json:"department,omitempty"`
	CompanyID  *int64    `json:"company_id,omitempty"`
	jwt.RegisteredClaims
}

type ctxKey int

const (
	actorKey ctxKey = iota
	requestIDKey
)

// Authenticator verifies HS256 bearer tokens and resolves them to an actor.
type Authenticator struct {
	secret []byte
	log    *logrus.Entry
}

func NewAuthenticator(secret string, log *logrus.Entry) *Authenticator {
	return &Authenticator{secret: []byte(secret), log: log}
}

// IssueToken signs a token for actor. It is used by tooling and tests; the
// placement office's identity provider issues tokens in production.
func (a *Authenticator) IssueToken(actor app.Actor, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		Role:       actor.Role,
		Department: actor.Department,
		CompanyID:  actor.CompanyID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(actor.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *Authenticator) parse(tokenString string) (app.Actor, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return app.Actor{}, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return app.Actor{}, errors.New("invalid token claims")
	}

	id := claims.UserID
	if claims.Subject != "" {
		id, err = strconv.ParseInt(claims.Subject, 10, 64)
		if err != nil {
			return app.Actor{}, fmt.Errorf("subject %q is not a user id", claims.Subject)
		}
	}
	if id <= 0 || !claims.Role.Valid() {
		return app.Actor{}, errors.New("token does not identify a user")
	}
	return app.Actor{ID: id, Role: claims.Role, Department: claims.Department, CompanyID: claims.CompanyID}, nil
}

// Middleware rejects requests without a valid bearer token and stores the
// actor in the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, r, a.log, common.NewError(common.CodeUnauthorized, "missing Authorization header", nil))
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeError(w, r, a.log, common.NewError(common.CodeUnauthorized, "invalid Authorization header format", nil))
			return
		}

		actor, err := a.parse(parts[1])
		if err != nil {
			a.log.WithError(err).WithField("request_id", requestIDFrom(r.Context())).Warn("Token validation failed")
			writeError(w, r, a.log, common.NewError(common.CodeUnauthorized, "invalid or expired token", err))
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, actor)))
	})
}

func actorFrom(ctx context.Context) app.Actor {
	actor, _ := ctx.Value(actorKey).(app.Actor)
	return actor
}
