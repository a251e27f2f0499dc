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

// Package client talks to a recoveryd REST endpoint. A RestClient is a
// complete gateway.Gateway over the /v1/ledger routes, so a coordinator can
// run against a remote node, and it also wraps the /v1/recovery routes.
package client

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-querystring/query"

	v1 "github.com/algorand/go-recovery/daemon/recoveryd/api/server/v1"
	"github.com/algorand/go-recovery/data/basics"
	"github.com/algorand/go-recovery/ledger/gateway"
	"github.com/algorand/go-recovery/ledger/ledgercore"
	"github.com/algorand/go-recovery/protocol"
)

const (
	authHeader          = "X-Recovery-API-Token"
	healthCheckEndpoint = "/health"
	maxRawResponseBytes = 50e6
)

// unauthorizedRequestError is generated when we receive 401 error from the server. This error includes the inner error
// as well as the likely parameters that caused the issue.
type unauthorizedRequestError struct {
	errorString string
	apiToken    string
	url         string
}

// Error format an error string for the unauthorizedRequestError error.
func (e unauthorizedRequestError) Error() string {
	return fmt.Sprintf("Unauthorized request to `%s` when using token `%s` : %s", e.url, e.apiToken, e.errorString)
}

// HTTPError is generated when we receive an unhandled error from the server. This error contains the error string.
type HTTPError struct {
	StatusCode  int
	Status      string
	ErrorString string
}

// Error formats an error string.
func (e HTTPError) Error() string {
	return fmt.Sprintf("HTTP %s: %s", e.Status, e.ErrorString)
}

// RestClient manages the REST interface for a calling user.
type RestClient struct {
	serverURL  url.URL
	apiToken   string
	httpClient *http.Client
}

// MakeRestClient is the factory for constructing a RestClient for a given endpoint
func MakeRestClient(url url.URL, apiToken string) RestClient {
	return RestClient{
		serverURL:  url,
		apiToken:   apiToken,
		httpClient: &http.Client{},
	}
}

// filterASCII filter out the non-ascii printable characters out of the given input string.
// It's used as a security qualifier before adding network provided data into an error message.
// The function allows only characters in the range of [32..126], which excludes all the
// control character, new lines, deletion, etc. All the alpha numeric and punctuation characters
// are included in this range.
func filterASCII(unfilteredString string) (filteredString string) {
	for i, r := range unfilteredString {
		if int(r) >= 0x20 && int(r) <= 0x7e {
			filteredString += string(unfilteredString[i])
		}
	}
	return
}

// extractError checks if the response signifies an error.
// If so, it returns the error. A call the ledger refused comes back as the
// *gateway.LedgerRejectedError the node produced.
func extractError(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		return nil
	}

	errorBuf, _ := io.ReadAll(resp.Body) // ignore returned error
	var errorJSON v1.ErrorResponse
	decodeErr := protocol.DecodeJSON(errorBuf, &errorJSON)

	var errorString string
	if decodeErr == nil {
		if errorJSON.Rejection != nil {
			return errorJSON.Rejection
		}
		errorString = errorJSON.Message
	} else {
		errorString = string(errorBuf)
	}
	errorString = filterASCII(errorString)

	if resp.StatusCode == http.StatusUnauthorized {
		apiToken := resp.Request.Header.Get(authHeader)
		return unauthorizedRequestError{errorString, apiToken, resp.Request.URL.String()}
	}

	return HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, ErrorString: errorString}
}

// mergeRawQueries merges two raw queries, appending an "&" if both are non-empty
func mergeRawQueries(q1, q2 string) string {
	if q1 == "" || q2 == "" {
		return q1 + q2
	}
	return q1 + "&" + q2
}

// submitForm is a helper used for submitting (ex.) GETs and POSTs to the server.
// params are encoded into the query string, body as go-codec JSON.
func (client RestClient) submitForm(ctx context.Context, response interface{}, path string, params interface{}, body interface{}, requestMethod string) error {
	var err error
	queryURL := client.serverURL
	queryURL.Path = strings.TrimSuffix(queryURL.Path, "/") + path

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(protocol.EncodeJSON(body))
	}

	if params != nil {
		v, err := query.Values(params)
		if err != nil {
			return err
		}
		queryURL.RawQuery = mergeRawQueries(queryURL.RawQuery, v.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, requestMethod, queryURL.String(), bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// If we add another endpoint that does not require auth, we should add a
	// requiresAuth argument to submitForm rather than checking here
	if path != healthCheckEndpoint && client.apiToken != "" {
		req.Header.Set(authHeader, client.apiToken)
	}

	resp, err := client.httpClient.Do(req)
	if err != nil {
		return err
	}

	// Ensure response isn't too large
	resp.Body = http.MaxBytesReader(nil, resp.Body, maxRawResponseBytes)
	defer resp.Body.Close()

	err = extractError(resp)
	if err != nil {
		return err
	}

	if response == nil {
		return nil
	}
	dec := protocol.NewJSONDecoder(resp.Body)
	return dec.Decode(response)
}

// get performs a GET request to the specific path against the server
func (client RestClient) get(ctx context.Context, response interface{}, path string, request interface{}) error {
	return client.submitForm(ctx, response, path, request, nil, http.MethodGet)
}

// post sends a POST request to the given path with the given body object.
func (client RestClient) post(ctx context.Context, response interface{}, path string, body interface{}) error {
	return client.submitForm(ctx, response, path, nil, body, http.MethodPost)
}

// HealthCheck does a health check on the server
func (client RestClient) HealthCheck(ctx context.Context) error {
	return client.get(ctx, nil, healthCheckEndpoint, nil)
}

type storageParams struct {
	Key string `url:"key,omitempty"`
}

type depositParams struct {
	Friends int `url:"friends"`
}

type stateParams struct {
	Rescuer string `url:"rescuer"`
	Acting  string `url:"acting,omitempty"`
}

type rescuersParams struct {
	Exclude []string `url:"exclude,omitempty"`
}

type withdrawableParams struct {
	Rescuer string `url:"rescuer"`
}

func storagePath(item protocol.StorageItem) (string, error) {
	if item.Module() == string(item) {
		return "", fmt.Errorf("storage item %q has no module", item)
	}
	return "/v1/ledger/storage/" + string(item), nil
}

// Status returns the latest round and era of the node.
func (client RestClient) Status(ctx context.Context) (response v1.StatusResponse, err error) {
	err = client.get(ctx, &response, "/v1/ledger/status", nil)
	return
}

// Query implements gateway.Gateway.
func (client RestClient) Query(ctx context.Context, key gateway.StorageKey) ([]byte, bool, error) {
	path, err := storagePath(key.Item)
	if err != nil {
		return nil, false, err
	}
	var response v1.StorageValue
	err = client.get(ctx, &response, path, storageParams{Key: hex.EncodeToString(key.Key)})
	if err != nil {
		return nil, false, err
	}
	return response.Value, response.Found, nil
}

// QueryBatch implements gateway.Gateway.
func (client RestClient) QueryBatch(ctx context.Context, keys []gateway.StorageKey) ([][]byte, error) {
	request := v1.StorageBatchRequest{Keys: make([]v1.StorageKey, len(keys))}
	for i, k := range keys {
		request.Keys[i] = v1.StorageKey{Item: k.Item, Key: k.Key}
	}
	var response v1.StorageBatchResponse
	if err := client.post(ctx, &response, "/v1/ledger/storage/batch", request); err != nil {
		return nil, err
	}
	if len(response.Values) != len(keys) {
		return nil, fmt.Errorf("batch of %d keys answered with %d values", len(keys), len(response.Values))
	}
	values := make([][]byte, len(keys))
	for i, v := range response.Values {
		if v.Found {
			values[i] = v.Value
		}
	}
	return values, nil
}

// QueryAllEntries implements gateway.Gateway.
func (client RestClient) QueryAllEntries(ctx context.Context, item protocol.StorageItem) ([]gateway.Entry, error) {
	path, err := storagePath(item)
	if err != nil {
		return nil, err
	}
	var response v1.StorageEntriesResponse
	if err := client.get(ctx, &response, path+"/entries", nil); err != nil {
		return nil, err
	}
	entries := make([]gateway.Entry, len(response.Entries))
	for i, e := range response.Entries {
		entries[i] = gateway.Entry{Key: e.Key, Value: e.Value}
	}
	return entries, nil
}

// CurrentRound implements gateway.Gateway.
func (client RestClient) CurrentRound(ctx context.Context) (basics.Round, error) {
	status, err := client.Status(ctx)
	return status.Round, err
}

// AccountNonce reads the nonce the next call signed by addr must carry.
func (client RestClient) AccountNonce(ctx context.Context, addr basics.Address) (uint64, error) {
	raw, found, err := client.Query(ctx, gateway.AccountKey(protocol.SystemAccountItem, addr))
	if err != nil || !found {
		return 0, err
	}
	var ad ledgercore.AccountData
	if err := protocol.Decode(raw, &ad); err != nil {
		return 0, fmt.Errorf("decode account %s: %w", addr, err)
	}
	return ad.Nonce, nil
}

// Submit implements gateway.Gateway. The call is signed locally with the
// signer's current nonce; the key never leaves the process.
func (client RestClient) Submit(ctx context.Context, call gateway.Call, signer gateway.Signer) (gateway.Receipt, error) {
	nonce, err := client.AccountNonce(ctx, signer.Address())
	if err != nil {
		return gateway.Receipt{}, err
	}
	call.Nonce = nonce
	return client.SubmitSigned(ctx, gateway.SignCall(call, signer))
}

// SubmitSigned posts an already signed call.
func (client RestClient) SubmitSigned(ctx context.Context, stx gateway.SignedCall) (receipt gateway.Receipt, err error) {
	err = client.post(ctx, &receipt, "/v1/ledger/submit", stx)
	return
}

// Consts returns the recovery constants the ledger publishes.
func (client RestClient) Consts(ctx context.Context) (response v1.ConstsResponse, err error) {
	err = client.get(ctx, &response, "/v1/recovery/consts", nil)
	return
}

// Deposit returns the configure deposit for friends friends and the initiate deposit.
func (client RestClient) Deposit(ctx context.Context, friends int) (response v1.DepositResponse, err error) {
	err = client.get(ctx, &response, "/v1/recovery/deposit", depositParams{Friends: friends})
	return
}

// Config resolves the recovery configuration of lost.
func (client RestClient) Config(ctx context.Context, lost basics.Address) (response v1.ConfigResponse, err error) {
	err = client.get(ctx, &response, fmt.Sprintf("/v1/recovery/%s/config", lost), nil)
	return
}

// State returns the view of (lost, rescuer). When acting is not zero the
// response also carries its role and legal actions.
func (client RestClient) State(ctx context.Context, lost, rescuer, acting basics.Address) (response v1.StateResponse, err error) {
	params := stateParams{Rescuer: rescuer.String()}
	if !acting.IsZero() {
		params.Acting = acting.String()
	}
	err = client.get(ctx, &response, fmt.Sprintf("/v1/recovery/%s/state", lost), params)
	return
}

// Rescuers lists the rescuers competing for lost, without those in exclude.
func (client RestClient) Rescuers(ctx context.Context, lost basics.Address, exclude ...basics.Address) (response v1.RescuersResponse, err error) {
	var params rescuersParams
	for _, addr := range exclude {
		params.Exclude = append(params.Exclude, addr.String())
	}
	err = client.get(ctx, &response, fmt.Sprintf("/v1/recovery/%s/rescuers", lost), params)
	return
}

// Withdrawable aggregates what rescuer can withdraw from lost.
func (client RestClient) Withdrawable(ctx context.Context, lost, rescuer basics.Address) (response v1.WithdrawableResponse, err error) {
	err = client.get(ctx, &response, fmt.Sprintf("/v1/recovery/%s/withdrawable", lost), withdrawableParams{Rescuer: rescuer.String()})
	return
}

// Proxy returns the account rescuer acts for, if any.
func (client RestClient) Proxy(ctx context.Context, rescuer basics.Address) (response v1.ProxyResponse, err error) {
	err = client.get(ctx, &response, fmt.Sprintf("/v1/recovery/proxies/%s", rescuer), nil)
	return
}
