package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexTime_UnmarshalJSON(t *testing.T) {
	epoch := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"rfc3339", `"2024-01-15T10:30:00Z"`, epoch},
		{"rfc3339 with offset", `"2024-01-15T12:30:00+02:00"`, epoch},
		{"rfc3339 millis", `"2024-01-15T10:30:00.123Z"`, epoch.Add(123 * time.Millisecond)},
		{"epoch ms number", `1705314600000`, epoch},
		{"epoch ms string", `"1705314600000"`, epoch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ft FlexTime
			require.NoError(t, json.Unmarshal([]byte(tt.input), &ft))
			assert.True(t, tt.want.Equal(ft.Time), "got %s", ft.Time)
			assert.Equal(t, time.UTC, ft.Location())
		})
	}
}

func TestFlexTime_UnmarshalJSON_Invalid(t *testing.T) {
	var ft FlexTime
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ft))
	assert.Error(t, json.Unmarshal([]byte(`true`), &ft))
}

func TestFlexTime_MarshalJSON(t *testing.T) {
	ft := FlexTime{Time: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)}
	data, err := json.Marshal(ft)
	require.NoError(t, err)

	assert.Equal(t, `"2024-01-15T10:30:00Z"`, string(data))
}

func TestFlexTime_InStruct(t *testing.T) {
	type request struct {
		CreationDate FlexTime `json:"creationDate"`
		PostedDate   FlexTime `json:"postedDate"`
	}

	var r request
	err := json.Unmarshal([]byte(`{"creationDate":"2024-01-15T10:30:00Z","postedDate":1705314600000}`), &r)
	require.NoError(t, err)

	assert.True(t, r.CreationDate.Equal(r.PostedDate.Time))
}
