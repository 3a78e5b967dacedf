package files

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkipBOM(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "leading mark removed", input: "\ufeff\"ride_id\",x\n", expected: "\"ride_id\",x\n"},
		{name: "no mark", input: "ride_id,x\n", expected: "ride_id,x\n"},
		{name: "mark only", input: "\ufeff", expected: ""},
		{name: "shorter than mark", input: "a", expected: "a"},
		{name: "mark later in input kept", input: "a\ufeff", expected: "a\ufeff"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(SkipBOM(strings.NewReader(tt.input)))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(got))
		})
	}
}
