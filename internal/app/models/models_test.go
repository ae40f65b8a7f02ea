package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoleType(t *testing.T) {
	tests := []struct {
		in      string
		want    RoleType
		wantErr bool
	}{
		{"admin", RoleAdmin, false},
		{"ADMIN", RoleAdmin, false},
		{" Importer ", RoleImporter, false},
		{"teacher", RoleTeacher, false},
		{"Student", RoleStudent, false},
		{"viewer", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRoleType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFieldType(t *testing.T) {
	ft, err := ParseFieldType("multiselect")
	require.NoError(t, err)
	assert.Equal(t, FieldTypeMultiSelect, ft)
	assert.True(t, ft.HasOptions())

	ft, err = ParseFieldType("Date")
	require.NoError(t, err)
	assert.False(t, ft.HasOptions())

	_, err = ParseFieldType("checkbox")
	assert.Error(t, err)
}

func TestCustomRoleAllowsFailsClosed(t *testing.T) {
	var missing *CustomRole
	assert.False(t, missing.Allows(PermViewForms))

	role := &CustomRole{Permissions: map[string]bool{PermViewForms: true, PermEditForms: false}}
	assert.True(t, role.Allows(PermViewForms))
	assert.False(t, role.Allows(PermEditForms))
	assert.False(t, role.Allows(PermDeleteForms))
}
