package trade

import (
	"sort"
)

// MarketTotal aggregates the trades of one market.
type MarketTotal struct {
	Market        string  `json:"Market"`
	Count         int     `json:"Count"`
	TotalPosition float64 `json:"Total Position"`
}

// Summary is the journal overview.
type Summary struct {
	TotalTrades           int           `json:"total_trades"`
	OpenTrades            int           `json:"open_trades"`
	ClosedTrades          int           `json:"closed_trades"`
	TotalProfitLoss       float64       `json:"total_profit_loss"`
	AvgProfitLossPercent  float64       `json:"avg_profit_loss_percent"`
	TotalInvested         float64       `json:"total_invested"`
	CurrentPositionsValue float64       `json:"current_positions_value"`
	LargestPosition       float64       `json:"largest_position"`
	AvgPositionSize       float64       `json:"avg_position_size"`
	WinRate               float64       `json:"win_rate"`
	TradesByMarket        []MarketTotal `json:"trades_by_market"`
	RecentTrades          []Trade       `json:"recent_trades"`
	BestPerforming        *Trade        `json:"best_performing"`
	WorstPerforming       *Trade        `json:"worst_performing"`
}

// RecentLimit is how many trades Summary lists as recent.
const RecentLimit = 5

// Summarize computes the overview of trades and their sales.
func Summarize(trades []Trade, sales []Sale) Summary {
	s := Summary{
		TradesByMarket: []MarketTotal{},
		RecentTrades:   []Trade{},
	}
	if len(trades) == 0 {
		return s
	}

	byID := make(map[string]Trade, len(trades))
	markets := map[string]*MarketTotal{}
	for _, t := range trades {
		byID[t.ID] = t
		s.TotalTrades++
		if t.IsOpen() {
			s.OpenTrades++
			s.CurrentPositionsValue += t.PositionSize
		} else {
			s.ClosedTrades++
		}
		s.TotalInvested += t.PositionSize
		if t.PositionSize > s.LargestPosition {
			s.LargestPosition = t.PositionSize
		}

		m, ok := markets[t.Market]
		if !ok {
			m = &MarketTotal{Market: t.Market}
			markets[t.Market] = m
		}
		m.Count++
		m.TotalPosition += t.PositionSize
	}
	s.AvgPositionSize = s.TotalInvested / float64(len(trades))

	for _, m := range markets {
		s.TradesByMarket = append(s.TradesByMarket, *m)
	}
	sort.Slice(s.TradesByMarket, func(i, j int) bool {
		return s.TradesByMarket[i].Market < s.TradesByMarket[j].Market
	})

	recent := append([]Trade(nil), trades...)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Date.After(recent[j].Date)
	})
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	s.RecentTrades = recent

	if len(sales) == 0 {
		return s
	}

	var wins int
	var pctSum float64
	best, worst := sales[0], sales[0]
	for _, sale := range sales {
		s.TotalProfitLoss += sale.ProfitLoss
		pctSum += sale.ProfitLossPct
		if sale.ProfitLoss > 0 {
			wins++
		}
		if sale.ProfitLossPct > best.ProfitLossPct {
			best = sale
		}
		if sale.ProfitLossPct < worst.ProfitLossPct {
			worst = sale
		}
	}
	s.AvgProfitLossPercent = pctSum / float64(len(sales))
	s.WinRate = float64(wins) / float64(len(sales)) * 100

	if t, ok := byID[best.TradeID]; ok {
		s.BestPerforming = &t
	}
	if t, ok := byID[worst.TradeID]; ok {
		s.WorstPerforming = &t
	}
	return s
}
