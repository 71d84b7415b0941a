package filestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{name: "u_1_avatar.png", valid: true},
		{name: "", valid: false},
		{name: ".", valid: false},
		{name: "..", valid: false},
		{name: "../etc/passwd", valid: false},
		{name: "dir/file.png", valid: false},
		{name: `dir\file.png`, valid: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.valid, ValidName(test.name))
		})
	}
}
