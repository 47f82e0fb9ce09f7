// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"sync/atomic"
)

var emailSequence atomic.Uint64

// UniqueEmail returns an address no other call in the process returns,
// for registrations against a backend that rejects duplicate emails.
//
//	testutil.UniqueEmail("donor") // "donor-1@test.jalai.org"
func UniqueEmail(local string) string {
	return fmt.Sprintf("%s-%d@test.jalai.org", local, emailSequence.Add(1))
}
