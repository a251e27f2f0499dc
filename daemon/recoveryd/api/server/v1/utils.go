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
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/algorand/go-recovery/data/basics"
	"github.com/algorand/go-recovery/ledger/gateway"
	"github.com/algorand/go-recovery/logging"
	"github.com/algorand/go-recovery/protocol"
)

// writeJSON encodes obj with the go-codec JSON handle, so that addresses,
// resolutions and states travel in their text forms.
func writeJSON(ctx echo.Context, code int, obj interface{}) error {
	return ctx.Blob(code, echo.MIMEApplicationJSON, protocol.EncodeJSON(obj))
}

func returnError(ctx echo.Context, code int, internal error, external string, logger logging.Logger) error {
	logger.Info(internal)
	return writeJSON(ctx, code, ErrorResponse{Message: external})
}

func badRequest(ctx echo.Context, internal error, external string, log logging.Logger) error {
	return returnError(ctx, http.StatusBadRequest, internal, external, log)
}

func serviceUnavailable(ctx echo.Context, internal error, external string, log logging.Logger) error {
	return returnError(ctx, http.StatusServiceUnavailable, internal, external, log)
}

func internalError(ctx echo.Context, internal error, external string, log logging.Logger) error {
	return returnError(ctx, http.StatusInternalServerError, internal, external, log)
}

// ledgerError maps a failed ledger interaction to a response. Ledger
// rejections keep their code; timeouts and shutdowns are retryable.
func ledgerError(ctx echo.Context, err error, external string, log logging.Logger) error {
	var rejected *gateway.LedgerRejectedError
	switch {
	case errors.As(err, &rejected):
		log.Info(err)
		return writeJSON(ctx, http.StatusBadRequest, ErrorResponse{Message: errLedgerRejectedCall, Rejection: rejected})
	case errors.Is(err, errShuttingDown):
		return serviceUnavailable(ctx, err, errServiceShuttingDown, log)
	case errors.Is(err, context.DeadlineExceeded):
		return serviceUnavailable(ctx, err, errLedgerQueryTimedOut, log)
	}
	return internalError(ctx, err, external, log)
}

func parseAddress(s string) (basics.Address, error) {
	addr, _, err := basics.ParseAddress(s)
	return addr, err
}
