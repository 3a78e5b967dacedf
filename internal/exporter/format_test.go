package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{name: "zero value", input: 0, expected: "0.00"},
		{name: "whole number", input: 12, expected: "12.00"},
		{name: "one decimal", input: 13.4, expected: "13.40"},
		{name: "repeating decimal", input: 48.5 / 3, expected: "16.17"},
		{name: "exact half rounds up", input: 0.125, expected: "0.13"},
		{name: "below half rounds down", input: 10.3349, expected: "10.33"},
		{name: "large value", input: 1439.999, expected: "1440.00"},
		{name: "decimal half below binary value", input: 1.005, expected: "1.01"},
		{name: "decimal half 2.675", input: 2.675, expected: "2.68"},
		{name: "negative half away from zero", input: -1.005, expected: "-1.01"},
		{name: "long fraction below half", input: 7.004999, expected: "7.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatFloat(tt.input))
		})
	}
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{name: "int", input: 42, expected: "42"},
		{name: "float", input: 6.5, expected: "6.50"},
		{name: "string", input: "Streeter Dr & Grand Ave", expected: "Streeter Dr & Grand Ave"},
		{name: "other", input: int64(7), expected: "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatCell(tt.input))
		})
	}
}
