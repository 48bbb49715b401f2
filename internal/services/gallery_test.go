package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidSlug(t *testing.T) {
	tests := []struct {
		slug string
		want bool
	}{
		{"my-gallery-2024", true},
		{"gallery", true},
		{"a", true},
		{"123", true},
		{"wedding-photos", true},
		{"-leading", false},
		{"trailing-", false},
		{"My_Gallery", false},
		{"double--hyphen", false},
		{"", false},
		{"-", false},
		{"UPPER", false},
		{"with space", false},
		{"très-beau", false},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidSlug(tt.slug))
		})
	}
}
