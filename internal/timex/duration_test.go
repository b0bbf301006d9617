package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

type holder struct {
	D Duration `json:"d" yaml:"d"`
}

func TestDuration_JSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Duration
		wantErr bool
	}{
		{name: "string", in: `{"d":"90s"}`, want: 90 * time.Second},
		{name: "hours", in: `{"d":"24h"}`, want: 24 * time.Hour},
		{name: "nanoseconds", in: `{"d":1000000}`, want: time.Millisecond},
		{name: "null", in: `{"d":null}`, want: 0},
		{name: "bad string", in: `{"d":"soon"}`, wantErr: true},
		{name: "bad type", in: `{"d":true}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h holder
			err := json.Unmarshal([]byte(tt.in), &h)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, h.D.Duration)
		})
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(holder{D: Duration{5 * time.Minute}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"5m0s"}`, string(b))
}

func TestDuration_YAML(t *testing.T) {
	var h holder
	require.NoError(t, yaml.Unmarshal([]byte("d: 15m\n"), &h))
	assert.Equal(t, 15*time.Minute, h.D.Duration)

	var n holder
	require.NoError(t, yaml.Unmarshal([]byte("d: 2000\n"), &n))
	assert.Equal(t, 2000*time.Nanosecond, n.D.Duration)

	var bad holder
	require.Error(t, yaml.Unmarshal([]byte("d: later\n"), &bad))
}
