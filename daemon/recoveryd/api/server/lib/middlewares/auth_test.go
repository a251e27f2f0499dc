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
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/algorand/go-recovery/test/partitiontest"
)

var errSuccess = errors.New("unexpected success")
var invalidTokenError = echo.NewHTTPError(http.StatusUnauthorized, InvalidTokenMessage)
var e = echo.New()
var testAPIHeader = "API-Header-Whatever"

// success is the "next" handler, it is only called when auth allows the request to continue
func success(ctx echo.Context) error {
	return errSuccess
}

func TestAuth(t *testing.T) {
	partitiontest.PartitionTest(t)

	tokens := []string{"token1", "token2"}

	tests := []struct {
		name           string
		url            string
		header         string
		token          string
		method         string
		expectResponse error
	}{
		{"Valid token (1)", "/v1/ledger/status", testAPIHeader, tokens[0], "GET", errSuccess},
		{"Valid token (2)", "/v1/ledger/status", testAPIHeader, tokens[1], "GET", errSuccess},
		{"Valid token Bearer Format", "/v1/ledger/status", "Authorization", "Bearer " + tokens[0], "GET", errSuccess},
		{"Invalid token", "/v1/ledger/status", testAPIHeader, "invalid_token", "GET", invalidTokenError},
		{"Invalid token Bearer Format", "/v1/ledger/status", "Authorization", "Bearer invalid_token", "GET", invalidTokenError},
		{"Missing token", "/v1/ledger/status", "", "", "GET", invalidTokenError},
		{"Invalid token + OPTIONS", "/v1/ledger/status", testAPIHeader, "invalid_token", "OPTIONS", errSuccess},
		{"Health without token", "/health", "", "", "GET", errSuccess},
		{"Metrics without token", "/metrics", "", "", "GET", errSuccess},
	}

	authFn := MakeAuth(testAPIHeader, tokens)
	handler := authFn(success)

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := httptest.NewRequest(test.method, test.url, nil)
			if test.header != "" {
				req.Header.Set(test.header, test.token)
			}
			ctx := e.NewContext(req, nil)

			err := handler(ctx)
			require.Equal(t, test.expectResponse, err, test.name)
		})
	}
}

func TestAuthDisabledWithoutTokens(t *testing.T) {
	partitiontest.PartitionTest(t)

	handler := MakeAuth(TokenHeader, []string{""})(success)
	req := httptest.NewRequest(http.MethodGet, "/v1/ledger/status", nil)
	require.Equal(t, errSuccess, handler(e.NewContext(req, nil)))
}
