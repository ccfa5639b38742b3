package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProduct_Matches(t *testing.T) {
	p := Product{ID: 1, Name: "Olive Oil", Category: "food", Price: 15}

	tests := []struct {
		name     string
		search   string
		category string
		maxPrice float64
		want     bool
	}{
		{"no filter", "", "", 0, true},
		{"case-insensitive substring", "olive", "", 0, true},
		{"mixed case search", "oLiVe", "", 0, true},
		{"search mismatch", "rice", "", 0, false},
		{"category match", "", "food", 0, true},
		{"category all", "", "all", 0, true},
		{"category mismatch", "", "household", 0, false},
		{"under max price", "", "", 20, true},
		{"at max price", "", "", 15, true},
		{"over max price", "", "", 10, false},
		{"zero max price is unbounded", "", "", 0, true},
		{"all filters pass", "oil", "food", 20, true},
		{"one filter fails", "oil", "food", 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Matches(tt.search, tt.category, tt.maxPrice))
		})
	}
}
