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
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/algorand/go-recovery/data/basics"
	"github.com/algorand/go-recovery/ledger/gateway"
	"github.com/algorand/go-recovery/logging"
	"github.com/algorand/go-recovery/protocol"
	"github.com/algorand/go-recovery/recovery"
)

// maxBatchKeys bounds the number of records one batch request may ask for.
const maxBatchKeys = 256

var errShuttingDown = errors.New("server is shutting down")

// LedgerNode is the ledger the daemon serves the /v1/ledger routes from:
// either an embedded development ledger or a remote node.
type LedgerNode interface {
	gateway.Gateway

	// SubmitSigned applies a call that was signed by the client.
	SubmitSigned(ctx context.Context, stx gateway.SignedCall) (gateway.Receipt, error)
}

// invalidator is implemented by rescuer sources that cache scans.
type invalidator interface {
	Invalidate(lost basics.Address)
}

// Handlers serves the ledger and coordinator routes.
type Handlers struct {
	Node          LedgerNode
	Coordinator   *recovery.Coordinator
	RescuerSource recovery.RescuerSource
	Log           logging.Logger

	// Shutdown aborts pending queries when closed.
	Shutdown <-chan struct{}

	// QueryTimeout bounds the ledger queries of one request. Zero means no bound.
	QueryTimeout time.Duration
}

// queryContext derives the context of the ledger queries issued for ctx.
func (h *Handlers) queryContext(ctx echo.Context) (context.Context, context.CancelFunc) {
	var qctx context.Context
	var cancel context.CancelCauseFunc
	qctx, cancel = context.WithCancelCause(ctx.Request().Context())
	if h.QueryTimeout > 0 {
		var cancelTimeout context.CancelFunc
		qctx, cancelTimeout = context.WithTimeout(qctx, h.QueryTimeout)
		base := cancel
		cancel = func(cause error) {
			cancelTimeout()
			base(cause)
		}
	}
	if h.Shutdown != nil {
		go func() {
			select {
			case <-h.Shutdown:
				cancel(errShuttingDown)
			case <-qctx.Done():
			}
		}()
	}
	return qctx, func() { cancel(context.Canceled) }
}

// queryError adds the cancellation cause of qctx, if any, to err.
func queryError(qctx context.Context, err error) error {
	if cause := context.Cause(qctx); cause != nil && !errors.Is(err, cause) {
		return fmt.Errorf("%w (%w)", err, cause)
	}
	return err
}

// LedgerStatus returns the latest round and era.
// (GET /v1/ledger/status)
func (h *Handlers) LedgerStatus(ctx echo.Context) error {
	qctx, cancel := h.queryContext(ctx)
	defer cancel()

	rnd, err := h.Node.CurrentRound(qctx)
	if err != nil {
		return ledgerError(ctx, queryError(qctx, err), errFailedLookingUpLedger, h.Log)
	}
	response := StatusResponse{Round: rnd}
	raw, found, err := h.Node.Query(qctx, gateway.SingletonKey(protocol.StakingEraItem))
	if err != nil {
		return ledgerError(ctx, queryError(qctx, err), errFailedLookingUpLedger, h.Log)
	}
	if found {
		if err := protocol.Decode(raw, &response.Era); err != nil {
			return internalError(ctx, err, errFailedLookingUpLedger, h.Log)
		}
	}
	return writeJSON(ctx, http.StatusOK, response)
}

func storageItem(ctx echo.Context) protocol.StorageItem {
	return protocol.StorageItem(ctx.Param("module") + "/" + ctx.Param("name"))
}

// StorageValue looks up one record. The key is given hex encoded in the key
// query parameter; singletons have no key.
// (GET /v1/ledger/storage/{module}/{name})
func (h *Handlers) StorageValue(ctx echo.Context) error {
	key, err := hex.DecodeString(ctx.QueryParam("key"))
	if err != nil {
		return badRequest(ctx, err, errFailedToParseKey, h.Log)
	}
	qctx, cancel := h.queryContext(ctx)
	defer cancel()

	value, found, err := h.Node.Query(qctx, gateway.StorageKey{Item: storageItem(ctx), Key: key})
	if err != nil {
		return ledgerError(ctx, queryError(qctx, err), errFailedLookingUpLedger, h.Log)
	}
	return writeJSON(ctx, http.StatusOK, StorageValue{Found: found, Value: value})
}

// StorageEntries scans every record of a storage item.
// (GET /v1/ledger/storage/{module}/{name}/entries)
func (h *Handlers) StorageEntries(ctx echo.Context) error {
	qctx, cancel := h.queryContext(ctx)
	defer cancel()

	entries, err := h.Node.QueryAllEntries(qctx, storageItem(ctx))
	if err != nil {
		return ledgerError(ctx, queryError(qctx, err), errFailedLookingUpLedger, h.Log)
	}
	response := StorageEntriesResponse{Entries: make([]StorageEntry, len(entries))}
	for i, e := range entries {
		response.Entries[i] = StorageEntry{Key: e.Key, Value: e.Value}
	}
	return writeJSON(ctx, http.StatusOK, response)
}

// StorageBatch looks up several records from the same block.
// (POST /v1/ledger/storage/batch)
func (h *Handlers) StorageBatch(ctx echo.Context) error {
	var request StorageBatchRequest
	if err := protocol.NewJSONDecoder(ctx.Request().Body).Decode(&request); err != nil {
		return badRequest(ctx, err, errFailedToDecodeBody, h.Log)
	}
	if len(request.Keys) > maxBatchKeys {
		return badRequest(ctx, fmt.Errorf("%d keys", len(request.Keys)), errBatchTooLarge, h.Log)
	}
	keys := make([]gateway.StorageKey, len(request.Keys))
	for i, k := range request.Keys {
		keys[i] = gateway.StorageKey{Item: k.Item, Key: k.Key}
	}

	qctx, cancel := h.queryContext(ctx)
	defer cancel()

	values, err := h.Node.QueryBatch(qctx, keys)
	if err != nil {
		return ledgerError(ctx, queryError(qctx, err), errFailedLookingUpLedger, h.Log)
	}
	response := StorageBatchResponse{Values: make([]StorageValue, len(values))}
	for i, v := range values {
		response.Values[i] = StorageValue{Found: v != nil, Value: v}
	}
	return writeJSON(ctx, http.StatusOK, response)
}

// SubmitCall applies a signed call.
// (POST /v1/ledger/submit)
func (h *Handlers) SubmitCall(ctx echo.Context) error {
	if ctx.Request().ContentLength == 0 {
		return badRequest(ctx, errors.New(errRESTPayloadZeroLength), errRESTPayloadZeroLength, h.Log)
	}
	var stx gateway.SignedCall
	if err := protocol.NewJSONDecoder(ctx.Request().Body).Decode(&stx); err != nil {
		return badRequest(ctx, err, errFailedToDecodeBody, h.Log)
	}

	qctx, cancel := h.queryContext(ctx)
	defer cancel()

	receipt, err := h.Node.SubmitSigned(qctx, stx)
	if err != nil {
		return ledgerError(ctx, queryError(qctx, err), errFailedSubmittingCall, h.Log)
	}
	if inv, ok := h.RescuerSource.(invalidator); ok {
		inv.Invalidate(stx.Signer)
		if !stx.Call.Lost.IsZero() {
			inv.Invalidate(stx.Call.Lost)
		}
	}
	return writeJSON(ctx, http.StatusOK, receipt)
}

// Consts returns the recovery constants published by the ledger.
// (GET /v1/recovery/consts)
func (h *Handlers) Consts(ctx echo.Context) error {
	qctx, cancel := h.queryContext(ctx)
	defer cancel()

	consts, err := h.Coordinator.Consts(qctx)
	if err != nil {
		return ledgerError(ctx, queryError(qctx, err), errLedgerPublishesNoConsts, h.Log)
	}
	return writeJSON(ctx, http.StatusOK, ConstsResponse{Consts: consts})
}

// Deposit computes the configure deposit for the given number of friends, and
// the initiate deposit.
// (GET /v1/recovery/deposit?friends=N)
func (h *Handlers) Deposit(ctx echo.Context) error {
	friends, err := strconv.Atoi(ctx.QueryParam("friends"))
	if err != nil || friends < 0 {
		if err == nil {
			err = fmt.Errorf("negative friend count %d", friends)
		}
		return badRequest(ctx, err, errFailedToParseFriends, h.Log)
	}
	qctx, cancel := h.queryContext(ctx)
	defer cancel()

	configure, initiate, err := h.Coordinator.Deposits(qctx, friends)
	if errors.Is(err, recovery.ErrOverflow) {
		return badRequest(ctx, err, errFailedComputingDeposit, h.Log)
	}
	if err != nil {
		return ledgerError(ctx, queryError(qctx, err), errFailedComputingDeposit, h.Log)
	}
	return writeJSON(ctx, http.StatusOK, DepositResponse{Friends: friends, Configure: configure, Initiate: initiate})
}

// Config resolves the recovery configuration of an account.
// (GET /v1/recovery/{lost}/config)
func (h *Handlers) Config(ctx echo.Context) error {
	lost, err := parseAddress(ctx.Param("lost"))
	if err != nil {
		return badRequest(ctx, err, errFailedToParseAddress, h.Log)
	}
	qctx, cancel := h.queryContext(ctx)
	defer cancel()

	cfg, err := h.Coordinator.ResolveConfig(qctx, lost)
	if err != nil {
		return ledgerError(ctx, queryError(qctx, err), errFailedLookingUpLedger, h.Log)
	}
	return writeJSON(ctx, http.StatusOK, ConfigResponse{Lost: lost, Config: cfg})
}

// State returns the view of (lost, rescuer), and what acting may do on it.
// A query that fails leaves its answer pending and sets Incomplete.
// (GET /v1/recovery/{lost}/state?rescuer=R&acting=A)
func (h *Handlers) State(ctx echo.Context) error {
	lost, err := parseAddress(ctx.Param("lost"))
	if err != nil {
		return badRequest(ctx, err, errFailedToParseAddress, h.Log)
	}
	if ctx.QueryParam("rescuer") == "" {
		return badRequest(ctx, errors.New(errRescuerRequired), errRescuerRequired, h.Log)
	}
	rescuer, err := parseAddress(ctx.QueryParam("rescuer"))
	if err != nil {
		return badRequest(ctx, err, errFailedToParseRescuer, h.Log)
	}
	var acting *basics.Address
	if s := ctx.QueryParam("acting"); s != "" {
		a, err := parseAddress(s)
		if err != nil {
			return badRequest(ctx, err, errFailedToParseActing, h.Log)
		}
		acting = &a
	}

	qctx, cancel := h.queryContext(ctx)
	defer cancel()

	view, err := h.Coordinator.Observe(qctx, lost, rescuer)
	response := StateResponse{View: view, Acting: acting}
	if err != nil {
		err = queryError(qctx, err)
		h.Log.Infof("state of %s/%s is incomplete: %v", lost, rescuer, err)
		response.Incomplete = err.Error()
	}
	if acting != nil {
		response.Role = view.Role(*acting).String()
		response.Actions = view.Actions(*acting)
	}
	response.Timing, err = view.Timing(h.Coordinator.Options().BlockTimeMillis)
	if err != nil {
		return internalError(ctx, err, errFailedComputingTiming, h.Log)
	}
	return writeJSON(ctx, http.StatusOK, response)
}

// Rescuers lists the rescuers with an open attempt against an account.
// (GET /v1/recovery/{lost}/rescuers?exclude=R...)
func (h *Handlers) Rescuers(ctx echo.Context) error {
	lost, err := parseAddress(ctx.Param("lost"))
	if err != nil {
		return badRequest(ctx, err, errFailedToParseAddress, h.Log)
	}
	var exclude []basics.Address
	for _, s := range ctx.QueryParams()["exclude"] {
		addr, err := parseAddress(s)
		if err != nil {
			return badRequest(ctx, err, errFailedToParseExclude, h.Log)
		}
		exclude = append(exclude, addr)
	}
	qctx, cancel := h.queryContext(ctx)
	defer cancel()

	rescuers, err := h.RescuerSource.CompetingRescuers(qctx, lost, exclude...)
	if err != nil {
		return ledgerError(ctx, queryError(qctx, err), errFailedLookingUpLedger, h.Log)
	}
	if rescuers == nil {
		rescuers = []recovery.Rescuer{}
	}
	return writeJSON(ctx, http.StatusOK, RescuersResponse{Lost: lost, Rescuers: rescuers})
}

// Withdrawable aggregates what rescuer can withdraw from lost.
// (GET /v1/recovery/{lost}/withdrawable?rescuer=R)
func (h *Handlers) Withdrawable(ctx echo.Context) error {
	lost, err := parseAddress(ctx.Param("lost"))
	if err != nil {
		return badRequest(ctx, err, errFailedToParseAddress, h.Log)
	}
	if ctx.QueryParam("rescuer") == "" {
		return badRequest(ctx, errors.New(errRescuerRequired), errRescuerRequired, h.Log)
	}
	rescuer, err := parseAddress(ctx.QueryParam("rescuer"))
	if err != nil {
		return badRequest(ctx, err, errFailedToParseRescuer, h.Log)
	}
	qctx, cancel := h.queryContext(ctx)
	defer cancel()

	amounts, err := h.Coordinator.Withdrawable(qctx, lost, rescuer)
	if err != nil {
		return ledgerError(ctx, queryError(qctx, err), errFailedLookingUpLedger, h.Log)
	}
	return writeJSON(ctx, http.StatusOK, WithdrawableResponse{Lost: lost, Rescuer: rescuer, Amounts: amounts})
}

// Proxy returns the account rescuer acts for, if any.
// (GET /v1/recovery/proxies/{rescuer})
func (h *Handlers) Proxy(ctx echo.Context) error {
	rescuer, err := parseAddress(ctx.Param("rescuer"))
	if err != nil {
		return badRequest(ctx, err, errFailedToParseRescuer, h.Log)
	}
	qctx, cancel := h.queryContext(ctx)
	defer cancel()

	lost, found, err := h.Coordinator.ProxiedAccount(qctx, rescuer)
	if err != nil {
		return ledgerError(ctx, queryError(qctx, err), errFailedLookingUpLedger, h.Log)
	}
	response := ProxyResponse{Rescuer: rescuer}
	if found {
		response.Lost = &lost
	}
	return writeJSON(ctx, http.StatusOK, response)
}
