// Copyright (c) 2026 BVK Chaitanya

package marketplace

import "time"

// RemoteTime is a timestamp reported by the marketplace backend. It
// marshals through RFC3339Nano text so that gob encoding stays stable
// across Go releases.
type RemoteTime struct {
	time.Time
}

func (v RemoteTime) MarshalBinary() ([]byte, error) {
	s := v.Time.Format(time.RFC3339Nano)
	return []byte(s), nil
}

func (v *RemoteTime) UnmarshalBinary(bs []byte) error {
	t, err := time.Parse(time.RFC3339Nano, string(bs))
	if err != nil {
		return err
	}
	v.Time = t
	return nil
}
