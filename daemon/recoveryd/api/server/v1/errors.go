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

var (
	errFailedLookingUpLedger   = "failed to retrieve information from the ledger"
	errFailedToParseAddress    = "failed to parse the address"
	errFailedToParseRescuer    = "failed to parse the rescuer address"
	errFailedToParseActing     = "failed to parse the acting address"
	errFailedToParseExclude    = "failed to parse exclude"
	errFailedToParseKey        = "failed to parse the storage key"
	errFailedToParseFriends    = "failed to parse the friend count"
	errFailedToDecodeBody      = "failed to decode the request body"
	errFailedSubmittingCall    = "failed to submit the call"
	errFailedComputingDeposit  = "failed to compute the deposit"
	errFailedComputingTiming   = "failed to compute the attempt timing"
	errRESTPayloadZeroLength   = "payload was of zero length"
	errServiceShuttingDown     = "operation aborted as server is shutting down"
	errLedgerQueryTimedOut     = "ledger query did not complete in time"
	errBatchTooLarge           = "too many keys in one batch"
	errRescuerRequired         = "the rescuer query parameter is required"
	errLedgerRejectedCall      = "ledger rejected the call"
	errLedgerPublishesNoConsts = "ledger publishes no recovery constants"
)
