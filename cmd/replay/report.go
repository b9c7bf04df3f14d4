package main

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/PxPatel/matching-core/internal/matching"
	"github.com/PxPatel/matching-core/internal/types"
)

func printTrades(out io.Writer, trades []types.Trade, scale int32) {
	writer := tablewriter.NewWriter(out)
	writer.SetHeader([]string{"Seq", "Buy ID", "Sell ID", "Price", "Qty", "Aggressor"})
	for _, trade := range trades {
		writer.Append([]string{
			strconv.FormatUint(trade.Seq, 10),
			strconv.FormatUint(trade.BuyOrderID, 10),
			strconv.FormatUint(trade.SellOrderID, 10),
			types.FormatPrice(trade.Price(), scale),
			strconv.FormatInt(trade.Quantity, 10),
			trade.Aggressor.String(),
		})
	}
	writer.SetCaption(true, "trades")
	writer.Render()
}

// printDepth renders bids and asks side by side, best prices on the first row
func printDepth(out io.Writer, book *matching.OrderBook, levels int, scale int32) {
	bids := book.Depth(types.Buy, levels)
	asks := book.Depth(types.Sell, levels)

	writer := tablewriter.NewWriter(out)
	writer.SetHeader([]string{"Bid Orders", "Bid Qty", "Bid", "Ask", "Ask Qty", "Ask Orders"})
	for i := 0; i < len(bids) || i < len(asks); i++ {
		row := make([]string, 6)
		if i < len(bids) {
			row[0] = strconv.Itoa(bids[i].Orders)
			row[1] = strconv.FormatInt(bids[i].Quantity, 10)
			row[2] = types.FormatPrice(bids[i].Price, scale)
		}
		if i < len(asks) {
			row[3] = types.FormatPrice(asks[i].Price, scale)
			row[4] = strconv.FormatInt(asks[i].Quantity, 10)
			row[5] = strconv.Itoa(asks[i].Orders)
		}
		writer.Append(row)
	}
	writer.SetCaption(true, "book")
	writer.Render()
}
