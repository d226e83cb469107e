package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterMatches(t *testing.T) {
	kind := "Rifle"
	exterior := ExteriorFieldTested
	item := Item{
		OrderID:  1,
		Name:     "AK-47 Redline",
		Kind:     &kind,
		Exterior: &exterior,
		Price:    1000,
	}
	vanilla := Item{OrderID: 2, Name: "Karambit", Price: 50000}

	maxPrice := func(p int) *int { return &p }

	tCases := []struct {
		name     string
		filter   Filter
		item     Item
		expected bool
	}{
		{
			name:     "empty_filter_matches_all",
			filter:   Filter{},
			item:     item,
			expected: true,
		},
		{
			name:     "max_price_at_boundary",
			filter:   Filter{MaxPrice: maxPrice(1000)},
			item:     item,
			expected: true,
		},
		{
			name:     "max_price_exceeded",
			filter:   Filter{MaxPrice: maxPrice(999)},
			item:     item,
			expected: false,
		},
		{
			name:     "name_substring_case_insensitive",
			filter:   Filter{NameContains: "redline"},
			item:     item,
			expected: true,
		},
		{
			name:     "name_substring_no_match",
			filter:   Filter{NameContains: "Asiimov"},
			item:     item,
			expected: false,
		},
		{
			name:     "kind_allow_list_match",
			filter:   Filter{Kinds: []string{"Pistol", "rifle"}},
			item:     item,
			expected: true,
		},
		{
			name:     "kind_allow_list_no_match",
			filter:   Filter{Kinds: []string{"Knife"}},
			item:     item,
			expected: false,
		},
		{
			name:     "kind_allow_list_rejects_vanilla",
			filter:   Filter{Kinds: []string{"Knife"}},
			item:     vanilla,
			expected: false,
		},
		{
			name:     "combined_filter",
			filter:   Filter{MaxPrice: maxPrice(2000), NameContains: "AK", Kinds: []string{"Rifle"}},
			item:     item,
			expected: true,
		},
	}

	for _, tCase := range tCases {
		t.Run(tCase.name, func(t *testing.T) {
			require.Equal(t, tCase.expected, tCase.filter.Matches(tCase.item))
		})
	}
}
