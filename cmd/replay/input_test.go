package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PxPatel/matching-core/internal/types"
)

func TestReadOrders(t *testing.T) {
	input := `
# opening book
{"id":1,"action":"new","side":"buy","price":"100.25","quantity":10}
{"id":2,"action":"new","side":"sell","price":101,"quantity":4}

{"id":1,"action":"amend","side":"buy","price":"100.50","quantity":6}
{"id":2,"action":"cancel"}
`
	var got []types.Order
	n, err := readOrders(strings.NewReader(input), 2, func(o types.Order) error {
		got = append(got, o)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []types.Order{
		types.NewOrder(1, types.New, types.Buy, 10025, 10),
		types.NewOrder(2, types.New, types.Sell, 10100, 4),
		types.NewOrder(1, types.Amend, types.Buy, 10050, 6),
		{ID: 2, Action: types.Cancel},
	}, got)
}

func TestReadOrdersReportsLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bad json", "{\"id\":1,\"action\":\"new\"}\n{oops", "line 2"},
		{"bad action", `{"id":1,"action":"replace"}`, "line 1"},
		{"bad side", `{"id":1,"action":"new","side":"hold","price":"1","quantity":1}`, "line 1"},
		{"too precise", `{"id":1,"action":"new","side":"buy","price":"1.001","quantity":1}`, "line 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readOrders(strings.NewReader(tt.input), 2, func(types.Order) error { return nil })
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReadOrdersStopsOnCallbackError(t *testing.T) {
	input := `{"id":1,"action":"cancel"}
{"id":2,"action":"cancel"}`
	stop := errors.New("stop")

	n, err := readOrders(strings.NewReader(input), 2, func(types.Order) error { return stop })
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 0, n)
}
