// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

// Package session owns the signed-in user for one jalai profile.
//
// A [Store] holds the current [api.User] in memory and mirrors it to a
// [Storage] under the keys accessToken, refreshToken and userData.
// All mutation funnels through Store methods: Initialize, Resync,
// Login, Register, Logout, UpdateUser, ClearError. Views read the
// session through the role predicates and User.
//
// [FileStorage] persists the keys as one JSON object in a 0600 file,
// optionally sealed with an age identity. Several jalai processes may
// share the file; writes are atomic renames and the last writer wins.
// Resync re-reads the file to pick up another process's login or
// logout.
//
// If userData cannot be parsed, Initialize and Resync both wipe every
// auth key and report [ErrCorruptSession]: a session whose identity is
// unreadable cannot be trusted to pair with the stored tokens.
package session
