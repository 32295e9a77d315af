// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package contract validates the pipeline's own structural invariants
// (§3 Invariants M1-M2, N1-N2, E1) independently of the mapping compiler
// and projector that are supposed to uphold them. These checks exist for
// tests and CLI diagnostics that want to assert an invariant held, not to
// be invoked on every hot-path call.
//
//	result := contract.ValidateMapping(compiledMapping)
//	if !result.OK {
//	    log.Printf("mapping invariant violated: %s", result.Message)
//	}
package contract
