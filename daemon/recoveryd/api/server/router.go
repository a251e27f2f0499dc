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

// Package server serves the recovery coordinator REST API.
//
// Two groups of routes are exposed. /v1/ledger is the node API the
// coordinator itself consumes: status, storage lookups and scans, and signed
// call submission. /v1/recovery answers coordinator questions about account
// pairs. /health and /metrics never require a token.
package server

import (
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/algorand/go-recovery/daemon/recoveryd/api/server/lib/middlewares"
	v1 "github.com/algorand/go-recovery/daemon/recoveryd/api/server/v1"
	"github.com/algorand/go-recovery/logging"
)

// maxBodySize bounds request payloads; a signed call is far below it.
const maxBodySize = "1M"

// HealthCheck answers liveness probes.
// (GET /health)
func HealthCheck(ctx echo.Context) error {
	return ctx.NoContent(http.StatusOK)
}

// NewRouter builds and returns a new router with our REST handlers registered.
// metricsHandler may be nil to leave /metrics out.
func NewRouter(logger logging.Logger, handlers *v1.Handlers, metricsHandler http.Handler, apiToken string, listener net.Listener) *echo.Echo {
	e := echo.New()

	e.Listener = listener
	e.HideBanner = true
	e.HidePort = true

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(
		middlewares.MakeLogger(logger),
		middlewares.MakeCORS(middlewares.TokenHeader),
		middlewares.MakeAuth(middlewares.TokenHeader, []string{apiToken}),
		middleware.BodyLimit(maxBodySize),
	)

	e.GET("/health", HealthCheck)
	if metricsHandler != nil {
		e.GET("/metrics", echo.WrapHandler(metricsHandler))
	}
	v1.RegisterHandlers(e, handlers)

	return e
}
