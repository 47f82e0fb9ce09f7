// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

// Package api is the client for the JALAI REST backend.
//
// Every request goes through [Client.Do] (or [Client.PublicGet] for
// unauthenticated catalog reads). Do attaches the bearer token from
// the configured [TokenStore] and, on a 401, runs the refresh
// interceptor:
//
//	Authorized --401--> Refreshing --ok--> Authorized (retry once)
//	                               --fail--> Expired
//
// Exactly one refresh exchange and one retry happen per request. If
// the exchange fails or the retry is rejected again, the token store
// is cleared, ClientConfig.OnSessionExpired runs, and the call returns
// [ErrSessionExpired]. There is no other automatic retry.
//
// Errors callers can expect:
//
//   - [ErrNetwork] (wrapped) when the server could not be reached
//   - *[Error] for any other non-2xx response, carrying the server's
//     message when it sent one
//   - [ErrSessionExpired] when the session could not be renewed
//   - *[DecodeError] when a 2xx body does not have the expected shape
//
// Auth responses are decoded into the [AuthPayload] tagged union
// instead of being sniffed ad hoc by callers.
package api
