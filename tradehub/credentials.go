// Copyright (c) 2026 BVK Chaitanya

package tradehub

import "fmt"

// Credentials holds the TradeHub API key material from the user's secrets
// file. The private key is an EC key in PEM form.
type Credentials struct {
	KID string `json:"kid"`

	PEM string `json:"pem"`
}

func (v *Credentials) Check() error {
	if len(v.KID) == 0 {
		return fmt.Errorf("key id cannot be empty")
	}
	if len(v.PEM) == 0 {
		return fmt.Errorf("private key cannot be empty")
	}
	return nil
}
