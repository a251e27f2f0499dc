// Copyright (C) 2019-2025 Algorand, Inc.
// This file is part of go-recovery
//
// go-recovery is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// go-recovery is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with go-recovery.  If not, see <https://www.gnu.org/licenses/>.

package middlewares

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// TokenHeader defines the http header that includes the auth token
const TokenHeader = "X-Recovery-API-Token"

// InvalidTokenMessage is the message set when an invalid / missing token is found.
const InvalidTokenMessage = "Invalid API Token"

// Paths that never require a token.
var noAuthPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// AuthMiddleware provides some extra state to the auth middleware
type AuthMiddleware struct {
	header string
	tokens [][]byte
}

// MakeAuth constructs the auth middleware function. An empty token list
// disables authentication.
func MakeAuth(header string, tokens []string) echo.MiddlewareFunc {
	auth := AuthMiddleware{header: header}
	for _, token := range tokens {
		if token != "" {
			auth.tokens = append(auth.tokens, []byte(token))
		}
	}
	return auth.handler
}

// Auth takes a logger and an array of api token and return a middleware function
// that ensures one of the api tokens was provided.
func (auth *AuthMiddleware) handler(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if len(auth.tokens) == 0 {
			return next(ctx)
		}

		// OPTIONS responses never require auth
		if ctx.Request().Method == http.MethodOptions {
			return next(ctx)
		}

		if noAuthPaths[ctx.Request().URL.Path] {
			return next(ctx)
		}

		// Grab the apiToken from the HTTP header, or as a bearer token
		providedToken := []byte(ctx.Request().Header.Get(auth.header))
		if len(providedToken) == 0 {
			// Accept tokens provided in a bearer token format.
			authentication := strings.SplitN(ctx.Request().Header.Get("Authorization"), " ", 2)
			if len(authentication) == 2 && strings.EqualFold("Bearer", authentication[0]) {
				providedToken = []byte(authentication[1])
			}
		}

		// Check the token in constant time
		for _, tokenBytes := range auth.tokens {
			if subtle.ConstantTimeCompare(providedToken, tokenBytes) == 1 {
				// Token was correct, keep serving request
				return next(ctx)
			}
		}

		return echo.NewHTTPError(http.StatusUnauthorized, InvalidTokenMessage)
	}
}
