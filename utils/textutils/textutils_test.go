// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package textutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLowerAsciiFolding(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "hello world"},
		{"  Spaces  ", "spaces"},
		{"ONTARIO", "ontario"},
		{"Québec", "quebec"},
		{"Crème Brûlée", "creme brulee"},
		{"", ""},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, LowerASCIIFolding(tc.input))
		})
	}
}

func TestEqualFolded(t *testing.T) {
	assert.True(t, EqualFolded("Ontario", "ontario"))
	assert.True(t, EqualFolded(" ON ", "on"))
	assert.True(t, EqualFolded("Québec", "Quebec"))
	assert.False(t, EqualFolded("Ontario Street", "ontario"))
}

func TestFormatInt(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0"},
		{7, "7"},
		{999, "999"},
		{1000, "1,000"},
		{170000, "170,000"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
		{-100, "-100"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatInt(tc.input))
		})
	}
}
