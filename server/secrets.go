// Copyright (c) 2026 BVK Chaitanya

package server

import (
	"encoding/json"
	"os"

	"github.com/bvk/flipbot/telegram"
	"github.com/bvk/flipbot/tradehub"
)

type Secrets struct {
	TradeHub *tradehub.Credentials `json:"tradehub"`

	Telegram *telegram.Secrets `json:"telegram"`
}

func SecretsFromFile(fpath string) (*Secrets, error) {
	data, err := os.ReadFile(fpath)
	if err != nil {
		return nil, err
	}
	s := new(Secrets)
	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (v *Secrets) Check() error {
	if v.TradeHub != nil {
		if err := v.TradeHub.Check(); err != nil {
			return err
		}
	}
	if v.Telegram != nil {
		if err := v.Telegram.Check(); err != nil {
			return err
		}
	}
	return nil
}
