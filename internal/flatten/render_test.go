package flatten

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	ts := time.Date(2018, 3, 1, 14, 6, 29, 0, time.UTC)

	cases := []struct {
		name string
		in   any
		want string
	}{
		{"nil is empty", nil, ""},
		{"true is never 1", true, "true"},
		{"false is never 0", false, "false"},
		{"string passes through", "fragrance", "fragrance"},
		{"literal null string survives", "null", "null"},
		{"int32", int32(42), "42"},
		{"int64", int64(9007199254740993), "9007199254740993"},
		{"float keeps plain form", 129.9, "129.9"},
		{"time is RFC 3339 UTC", ts, "2018-03-01T14:06:29Z"},
		{"array renders as JSON", []any{"books", 2}, `["books",2]`},
		{"empty array is empty", []any{}, ""},
		{"mapping renders as JSON", map[string]any{"b": 1}, `{"b":1}`},
		{"empty mapping is empty", map[string]any{}, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Render(tc.in))
		})
	}
}
