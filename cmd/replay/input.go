package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/PxPatel/matching-core/internal/types"
)

// orderEvent is one line of replay input. Price may be a JSON number or a
// decimal string; it is converted to ticks at the book's price scale.
type orderEvent struct {
	ID       uint64      `json:"id"`
	Action   string      `json:"action"`
	Side     string      `json:"side"`
	Price    json.Number `json:"price"`
	Quantity int64       `json:"quantity"`
}

func (ev orderEvent) toOrder(scale int32) (types.Order, error) {
	action, err := types.ParseAction(ev.Action)
	if err != nil {
		return types.Order{}, err
	}
	order := types.Order{ID: ev.ID, Action: action, Quantity: ev.Quantity}
	if action == types.Cancel {
		return order, nil
	}

	if ev.Side != "" {
		if order.Side, err = types.ParseSide(ev.Side); err != nil {
			return types.Order{}, err
		}
	}
	if ev.Price != "" {
		if order.Price, err = types.ParsePrice(ev.Price.String(), scale); err != nil {
			return types.Order{}, err
		}
	}
	return order, nil
}

// readOrders decodes JSON-lines order events from r and hands each one to fn.
// Blank lines and lines starting with # are skipped.
func readOrders(r io.Reader, scale int32, fn func(types.Order) error) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo, count := 0, 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var ev orderEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			return count, fmt.Errorf("line %d: %w", lineNo, err)
		}
		order, err := ev.toOrder(scale)
		if err != nil {
			return count, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if err := fn(order); err != nil {
			return count, err
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("read input: %w", err)
	}
	return count, nil
}
