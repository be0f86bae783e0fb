package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    Status
		wantErr bool
	}{
		{input: "Open", want: StatusOpen},
		{input: "  open ", want: StatusOpen},
		{input: "InProgress", want: StatusInProgress},
		{input: "in progress", want: StatusInProgress},
		{input: "in-progress", want: StatusInProgress},
		{input: "IN_PROGRESS", want: StatusInProgress},
		{input: "closed", want: StatusClosed},
		{input: "done", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStatus(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatusJSONUsesNames(t *testing.T) {
	type wrapper struct {
		Status Status `json:"status"`
	}

	out, err := json.Marshal(wrapper{Status: StatusInProgress})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"InProgress"}`, string(out))

	var back wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"status":"Closed"}`), &back))
	assert.Equal(t, StatusClosed, back.Status)

	err = json.Unmarshal([]byte(`{"status":"Archived"}`), &back)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestStatusMarshalRejectsUndefinedValue(t *testing.T) {
	_, err := Status(7).MarshalText()
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Status(7)", Status(7).String())
}
