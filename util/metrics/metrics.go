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

// Package metrics exposes the daemon's prometheus metrics.
package metrics

// MetricName describes the name and description of a single metric
type MetricName struct {
	Name        string
	Description string
}

var (
	// GatewayQueriesTotal Total number of ledger queries, by operation
	GatewayQueriesTotal = MetricName{Name: "recovery_gateway_queries_total", Description: "Total number of ledger queries, by operation"}
	// GatewayQueryErrorsTotal Total number of failed ledger queries, by operation
	GatewayQueryErrorsTotal = MetricName{Name: "recovery_gateway_query_errors_total", Description: "Total number of failed ledger queries, by operation"}
	// GatewayQuerySeconds Latency of ledger queries, by operation
	GatewayQuerySeconds = MetricName{Name: "recovery_gateway_query_seconds", Description: "Latency of ledger queries, by operation"}
	// GatewaySubmitsTotal Total number of calls submitted to the ledger, by call type
	GatewaySubmitsTotal = MetricName{Name: "recovery_gateway_submits_total", Description: "Total number of calls submitted to the ledger, by call type"}
	// LedgerRejectionsTotal Total number of calls the ledger refused, by call type and code
	LedgerRejectionsTotal = MetricName{Name: "recovery_ledger_rejections_total", Description: "Total number of calls the ledger refused, by call type and code"}

	// PreconditionRejectionsTotal Total number of calls refused before submission, by action and reason
	PreconditionRejectionsTotal = MetricName{Name: "recovery_precondition_rejections_total", Description: "Total number of calls refused before submission, by action and reason"}
	// RescuerScansTotal Total number of full scans of the active recovery set
	RescuerScansTotal = MetricName{Name: "recovery_rescuer_scans_total", Description: "Total number of full scans of the active recovery set"}
	// RescuerScanCacheHitsTotal Total number of rescuer lookups answered from the cache
	RescuerScanCacheHitsTotal = MetricName{Name: "recovery_rescuer_scan_cache_hits_total", Description: "Total number of rescuer lookups answered from the cache"}

	// APIRequestsTotal Total number of REST requests, by route and status code
	APIRequestsTotal = MetricName{Name: "recoveryd_api_requests_total", Description: "Total number of REST requests, by route and status code"}
)
