package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/ltoral/escolar/core"
)

const tokenContextKey = "sessionToken"

// appJWTConfig builds the JWT auth middleware config. A function, not a
// package var: core.Conf is only set once the config loads.
func appJWTConfig() middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(core.Conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    tokenContextKey,
		Claims:        new(Claims),
	}
}

// Claims represents the authorization claims transmitted via a JWT. Subject
// carries the user id; SchoolID scopes every request to one school.
type Claims struct {
	jwt.StandardClaims
	SchoolID string `json:"school_id,omitempty"`
}

func GetSessionClaims(ses core.Session) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    core.Conf.AppName,
			Subject:   ses.UserID,
			ExpiresAt: now.Add(core.Conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		SchoolID: ses.SchoolID,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(claims *Claims) (string, error) {
	conf := appJWTConfig()
	method := jwt.GetSigningMethod(conf.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(conf.SigningKey.([]byte))
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextSession extracts the authenticated session from the request's
// JWT claims. A token without a school binding is rejected.
func getContextSession(ctx echo.Context) (core.Session, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return core.Session{}, err
	}
	ses := core.Session{UserID: claims.Subject, SchoolID: claims.SchoolID}
	if ses.IsZero() || ses.SchoolID == "" {
		return core.Session{}, errUnauthorized
	}
	return ses, nil
}
