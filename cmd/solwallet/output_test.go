package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTruthy(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  bool
	}{
		{"nil", nil, false},
		{"false", false, false},
		{"true", true, true},
		{"zero is truthy", 0.0, true},
		{"empty string is truthy", "", true},
		{"object", map[string]interface{}{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isTruthy(tt.value))
		})
	}
}

func TestPrintJQ(t *testing.T) {
	view := &planView{
		Kind:   "token",
		Amount: 5,
	}

	var out bytes.Buffer
	require.NoError(t, printJQ(&out, ".kind, .amount", view))
	assert.Equal(t, "token\n5\n", out.String())
}

func TestPrintJQ_LargeAmountKeepsPrecision(t *testing.T) {
	view := &planView{Amount: 9007199254740993}

	var out bytes.Buffer
	require.NoError(t, printJQ(&out, ".amount", view))
	assert.Equal(t, "9007199254740993\n", out.String())

	assert.NoError(t, checkRequire(".amount == 9007199254740993", view))
	assert.ErrorContains(t, checkRequire(".amount == 9007199254740992", view), "is false")
}

func TestPrintJQ_InvalidFilter(t *testing.T) {
	var out bytes.Buffer
	err := printJQ(&out, ".[", map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse jq filter")
}

func TestCheckRequire(t *testing.T) {
	view := map[string]interface{}{"amount": 10, "kind": "native"}

	assert.NoError(t, checkRequire("", view))
	assert.NoError(t, checkRequire(`.kind == "native"`, view))
	assert.ErrorContains(t, checkRequire(".amount > 100", view), "is false")
	assert.ErrorContains(t, checkRequire("empty", view), "no result")
	assert.ErrorContains(t, checkRequire(`error("nope")`, view), "failed")
}
