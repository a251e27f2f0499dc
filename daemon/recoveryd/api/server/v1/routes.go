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

package v1

import (
	"github.com/labstack/echo/v4"
)

// RegisterHandlers adds each server route to the EchoRouter.
func RegisterHandlers(router *echo.Echo, h *Handlers, m ...echo.MiddlewareFunc) {
	router.GET("/v1/ledger/status", h.LedgerStatus, m...)
	router.GET("/v1/ledger/storage/:module/:name", h.StorageValue, m...)
	router.GET("/v1/ledger/storage/:module/:name/entries", h.StorageEntries, m...)
	router.POST("/v1/ledger/storage/batch", h.StorageBatch, m...)
	router.POST("/v1/ledger/submit", h.SubmitCall, m...)

	router.GET("/v1/recovery/consts", h.Consts, m...)
	router.GET("/v1/recovery/deposit", h.Deposit, m...)
	router.GET("/v1/recovery/proxies/:rescuer", h.Proxy, m...)
	router.GET("/v1/recovery/:lost/config", h.Config, m...)
	router.GET("/v1/recovery/:lost/state", h.State, m...)
	router.GET("/v1/recovery/:lost/rescuers", h.Rescuers, m...)
	router.GET("/v1/recovery/:lost/withdrawable", h.Withdrawable, m...)
}
