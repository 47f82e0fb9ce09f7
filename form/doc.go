// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

// Package form implements the multi-step wizard used by signup and
// donation flows.
//
// A wizard is a list of [Step] values, each a declarative table of
// [Rule] entries, driven by one generic [Engine]:
//
//	Step(1) --Next--> Step(2) ... Step(N) --Submit--> Submitted
//	        <--Prev--
//
// Next refuses to advance while any rule of the current step fails and
// records one message per failing field. Prev never validates. Set
// clears the written field's error without re-validating it. Submit is
// only accepted on the last step and hands a copy of the values to the
// wizard's [SubmitFunc].
//
// [DonationSteps] and [SignupSteps] are the two rule tables in use.
// Drafts for either can be authored as JSONC files and loaded with
// [LoadDraft].
package form
