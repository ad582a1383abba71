// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayLabel(t *testing.T) {
	tests := []struct {
		name      string
		candidate Candidate
		fallback  string
		want      string
	}{
		{
			name: "house number, road and city",
			candidate: Candidate{Address: Address{
				HouseNumber: "123", Road: "Main Street", City: "Toronto",
			}},
			want: "123 Main Street, Toronto",
		},
		{
			name:      "road without house number",
			candidate: Candidate{Address: Address{Road: "Bay Street", City: "Toronto"}},
			want:      "Bay Street, Toronto",
		},
		{
			name:      "house number without road is ignored",
			candidate: Candidate{Address: Address{HouseNumber: "7", Village: "Bala"}},
			want:      "Bala",
		},
		{
			name: "town wins over city",
			candidate: Candidate{Address: Address{
				City: "Greater Sudbury", Town: "Lively", Municipality: "Sudbury District",
			}},
			want: "Lively",
		},
		{
			name:      "municipality as last resort",
			candidate: Candidate{Address: Address{Municipality: "Muskoka Lakes"}},
			want:      "Muskoka Lakes",
		},
		{
			name:      "shortened display name",
			candidate: Candidate{DisplayName: "Toronto, Golden Horseshoe, Ontario, Canada"},
			want:      "Toronto, Golden Horseshoe",
		},
		{
			name:     "fallback to raw input",
			fallback: "Kenora",
			want:     "Kenora",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayLabel(&tt.candidate, tt.fallback))
		})
	}
}

func TestShortenDisplayName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Toronto, Ontario", "Toronto, Ontario"},
		{"Kingston", "Kingston"},
		{"Toronto, Ontario, Canada", "Toronto"},
		{"Ottawa, Eastern Ontario, Ontario, Canada", "Ottawa, Eastern Ontario"},
		{"Thunder Bay, ON, Canada, P7B", "Thunder Bay, P7B"},
		{"Ontario, Canada, ON", "Ontario, Canada, ON"},
		{"ONTARIO, canada, Timmins", "Timmins"},
		{"Ontario, Canada, ON, Ontario, Kapuskasing", "Ontario, Canada, ON, Ontario, Kapuskasing"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ShortenDisplayName(tt.in))
		})
	}
}
