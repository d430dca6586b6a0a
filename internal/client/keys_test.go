package client_test

import (
	"testing"

	. "github.com/fivetwenty-io/dataverse/internal/client"
	"github.com/fivetwenty-io/dataverse/pkg/dataverse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatKey(t *testing.T) {
	t.Parallel()

	const canonical = "5e3b1c4a-0f6d-4e2b-9a71-2c8d3e4f5a6b"

	tests := []struct {
		name     string
		id       string
		expected string
	}{
		{"canonical GUID", canonical, canonical},
		{"upper case GUID", "5E3B1C4A-0F6D-4E2B-9A71-2C8D3E4F5A6B", canonical},
		{"braced GUID", "{5e3b1c4a-0f6d-4e2b-9a71-2c8d3e4f5a6b}", canonical},
		{"urn GUID", "urn:uuid:5e3b1c4a-0f6d-4e2b-9a71-2c8d3e4f5a6b", canonical},
		{"bare hex GUID", "5e3b1c4a0f6d4e2b9a712c8d3e4f5a6b", canonical},
		{"surrounding spaces", "  " + canonical + " ", canonical},
		{"numeric id", "123", "123"},
		{"alternate key", "accountnumber='A-1'", "accountnumber='A-1'"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			key, err := FormatKey(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, key)
		})
	}

	t.Run("empty id", func(t *testing.T) {
		t.Parallel()

		_, err := FormatKey("")
		require.ErrorIs(t, err, dataverse.ErrRecordIDRequired)
		assert.True(t, dataverse.IsValidation(err))
	})
}
