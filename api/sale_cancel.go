// Copyright (c) 2026 BVK Chaitanya

package api

import "fmt"

const SaleCancelPath = "/flipbot/sale/cancel"

type SaleCancelRequest struct {
	UID string
}

type SaleCancelResponse struct {
	FinalState string
}

func (r *SaleCancelRequest) Check() error {
	if len(r.UID) == 0 {
		return fmt.Errorf("sale uid cannot be empty")
	}
	return nil
}
