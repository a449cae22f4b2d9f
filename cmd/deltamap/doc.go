// Copyright 2026 The Deltamap Authors
// SPDX-License-Identifier: Apache-2.0

// Deltamap verifies large binary artifacts against their blockmap
// files and compares blockmaps across versions to estimate
// differential-download savings. It also authors the supporting
// release surfaces: fixed-layout blockmaps and YAML update-info
// files.
//
// Exit codes:
//
//	0  success (including "nothing to verify")
//	1  verification failed or blockmap metadata invalid
//	2  usage mistake, unreadable file, or unexpected error
package main
