// Copyright (c) 2026 BVK Chaitanya

package gobs

// JobData is the persisted metadata for one background job (the scanner loop
// or a seller monitor).
type JobData struct {
	ID string

	Typename string

	Flags uint64

	State string
}

// KeyValue is a raw database item, used by backup and restore.
type KeyValue struct {
	Key   string
	Value []byte
}

// NameData maps a user-visible name to a job uid.
type NameData struct {
	Name string

	Data string
}
