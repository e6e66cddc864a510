package reconcile_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/rankmap/pkg/reconcile"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		in      any
		want    int
		numeric bool
	}{
		{42, 42, true},
		{int64(7), 7, true},
		{uint64(9), 9, true},
		{12.7, 12, true},
		{json.Number("1500"), 1500, true},
		{"  2500 ", 2500, true},
		{"1,234", 1234, true},
		{"1,23,456", 123456, true},
		{"99.5", 99, true},
		{"", 0, false},
		{"closed", 0, false},
		{nil, 0, false},
		{true, 0, false},
		{[]any{1}, 0, false},
	}
	for _, tt := range tests {
		got, numeric := reconcile.Coerce(tt.in)
		assert.Equal(t, tt.want, got, "%#v", tt.in)
		assert.Equal(t, tt.numeric, numeric, "%#v", tt.in)
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1, reconcile.Clamp(0, 100))
	assert.Equal(t, 1, reconcile.Clamp(-5, 100))
	assert.Equal(t, 50, reconcile.Clamp(50, 100))
	assert.Equal(t, 100, reconcile.Clamp(101, 100))
	assert.Equal(t, 1, reconcile.Clamp(10, 0))
}
