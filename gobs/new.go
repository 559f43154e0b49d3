// Copyright (c) 2026 BVK Chaitanya

package gobs

import (
	"fmt"
)

func NewByTypename(typename string) (any, error) {
	var v any
	switch typename {
	case "JobData":
		v = new(JobData)
	case "KeyValue":
		v = new(KeyValue)
	case "NameData":
		v = new(NameData)
	case "ScheduledSaleState":
		v = new(ScheduledSaleState)
	case "TradeRecord":
		v = new(TradeRecord)
	case "PriceHistory":
		v = new(PriceHistory)
	case "ServerState":
		v = new(ServerState)
	case "TelegramState":
		v = new(TelegramState)
	default:
		return nil, fmt.Errorf("unsupported type name %q", typename)
	}
	return v, nil
}
