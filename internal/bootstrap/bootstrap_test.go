package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMediaRoute(t *testing.T) {
	tests := []struct {
		baseURL string
		want    string
	}{
		{"http://localhost:8080/media", "/media"},
		{"https://cdn.example.com/files/uploads/", "/files/uploads"},
		{"http://localhost:8080", "/media"},
		{"", "/media"},
	}
	for _, tt := range tests {
		t.Run(tt.baseURL, func(t *testing.T) {
			assert.Equal(t, tt.want, mediaRoute(tt.baseURL))
		})
	}
}
