// Copyright 2026 The Deltamap Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"testing"

	"github.com/deltamap-dev/deltamap/cmd/deltamap/cli"
)

func TestExitStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"handled failure", &cli.ExitError{Code: 1}, 1},
		{"io or usage error", errors.New("reading artifact: no such file"), 2},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := exitStatus(testCase.err); got != testCase.want {
				t.Errorf("exitStatus(%v) = %d, want %d", testCase.err, got, testCase.want)
			}
		})
	}
}
