package dataverse_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/fivetwenty-io/dataverse/pkg/dataverse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errConnectionRefused = errors.New("connection refused")

func TestParseAPIError(t *testing.T) {
	t.Parallel()

	t.Run("error envelope", func(t *testing.T) {
		t.Parallel()

		apiErr := dataverse.ParseAPIError([]byte(`{"error":{"code":"0x80040217","message":"account Does Not Exist"}}`))
		require.NotNil(t, apiErr)
		assert.Equal(t, "0x80040217", apiErr.Code)
		assert.Equal(t, "account Does Not Exist", apiErr.Message)
		assert.Equal(t, "account Does Not Exist (code: 0x80040217)", apiErr.Error())
	})

	t.Run("no envelope", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, dataverse.ParseAPIError([]byte(`{"value":[]}`)))
		assert.Nil(t, dataverse.ParseAPIError([]byte(`<html>bad gateway</html>`)))
		assert.Nil(t, dataverse.ParseAPIError(nil))
	})
}

func TestNewTransportError(t *testing.T) {
	t.Parallel()

	resp := &dataverse.Response{
		StatusCode: http.StatusNotFound,
		Headers:    http.Header{},
		Body:       []byte(`{"error":{"code":"0x80040217","message":"not here"}}`),
	}

	err := dataverse.NewTransportError("getting record", resp, dataverse.ErrUnexpectedStatus)

	assert.Equal(t, dataverse.KindTransport, err.Kind)
	assert.Equal(t, 404, err.StatusCode)
	assert.Same(t, resp, err.Response)
	require.NotNil(t, err.API)
	assert.Equal(t, "getting record (status 404): not here (code: 0x80040217)", err.Error())
	assert.ErrorIs(t, err, dataverse.ErrUnexpectedStatus)
}

func TestNewTransportError_NoResponse(t *testing.T) {
	t.Parallel()

	err := dataverse.NewTransportError("fetching metadata", nil, errConnectionRefused)

	assert.Equal(t, 0, err.StatusCode)
	assert.Nil(t, err.Response)
	assert.Equal(t, "fetching metadata: connection refused", err.Error())
	assert.ErrorIs(t, err, errConnectionRefused)
}

func TestNewValidationError(t *testing.T) {
	t.Parallel()

	err := dataverse.NewValidationError(dataverse.ErrPropertyNotFound,
		"property '%s' not found in entity '%s'", "nickname", "accounts")

	assert.Equal(t, dataverse.KindValidation, err.Kind)
	assert.Equal(t, 0, err.StatusCode)
	assert.ErrorIs(t, err, dataverse.ErrPropertyNotFound)
	assert.Equal(t, "property 'nickname' not found in entity 'accounts'", err.Error())
}

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	notFound := dataverse.NewTransportError("getting record",
		&dataverse.Response{StatusCode: http.StatusNotFound}, dataverse.ErrUnexpectedStatus)
	validation := dataverse.NewValidationError(dataverse.ErrEntityNotFound, "entity '%s' not found", "widgets")
	wrapped := fmt.Errorf("getting record: %w", notFound)

	tests := []struct {
		name       string
		err        error
		validation bool
		transport  bool
		notFound   bool
		status     int
	}{
		{name: "transport 404", err: notFound, transport: true, notFound: true, status: 404},
		{name: "wrapped transport", err: wrapped, transport: true, notFound: true, status: 404},
		{name: "validation", err: validation, validation: true},
		{name: "foreign error", err: errConnectionRefused},
		{name: "nil", err: nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.validation, dataverse.IsValidation(tt.err))
			assert.Equal(t, tt.transport, dataverse.IsTransport(tt.err))
			assert.Equal(t, tt.notFound, dataverse.IsNotFound(tt.err))
			assert.Equal(t, tt.status, dataverse.StatusCode(tt.err))
		})
	}
}

func TestErrorKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "validation", dataverse.KindValidation.String())
	assert.Equal(t, "transport", dataverse.KindTransport.String())
	assert.Equal(t, "unknown", dataverse.ErrorKind(42).String())
}
