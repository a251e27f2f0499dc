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

package main

const (
	// General
	errorNoEndpoint       = "Daemon endpoint not specified. Please use -e, -d or set $RECOVERY_DATA in your environment. Exiting."
	errorReadingNetFile   = "Cannot read the daemon address from %s (is recoveryd running?): %v"
	errorReadingConfig    = "Cannot read the configuration in %s: %v"
	errorBadEndpoint      = "Invalid daemon endpoint '%s': %v"
	errorRequestFail      = "Error processing command: %s"
	errorParseAddr        = "Failed to parse address '%s': %v"
	errorRenderAddr       = "Failed to render address: %v"
	errorNegativeFriends  = "Friend count must not be negative, got %d"
	errorMissingFlag      = "Flag --%s is required for this command"
	errorTooManyThreshold = "Threshold %d exceeds the number of friends (%d)"
	infoPartialView       = "Some queries did not resolve: %s"
	infoNoRescuers        = "No competing rescuers."
	infoNotAProxy         = "%s does not act as a proxy for any account."
	infoProxyFor          = "%s acts for %s."
	infoNoActions         = "No action available to %s."
	infoNoAttempt         = "No open attempt."
	infoNotConfigured     = "%s is not recoverable."
	infoHealthy           = "Daemon at %s is healthy."

	// Submit
	errorNoSeed          = "No signing key. Please use --seed or set $RECOVERY_SEED in your environment."
	errorBadSeed         = "Invalid seed: %v"
	errorRefused         = "Refused to submit %s: %v"
	errorRejected        = "Ledger rejected %s (%s): %s"
	errorSubmitFailed    = "Failed to submit %s: %v"
	infoSubmitted        = "Submitted %s for %s in round %d (fee %s, txid %s)"
	infoRedeemingSpans   = "Redeeming %d unlocking chunk(s) of %s"
	infoConfigureDeposit = "Configuring recovery reserves a deposit of %s"
	infoInitiateDeposit  = "Initiating recovery reserves a deposit of %s"
	warnMergedFriends    = "Duplicate friends were merged: %d given, %d kept"

	// Account
	infoCreatedNewAccount = "Created new account"
	errorGeneratingSeed   = "Failed to generate a seed: %v"
)
