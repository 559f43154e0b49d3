// Copyright (c) 2023 BVK Chaitanya

package api

const JobListPath = "/flipbot/job/list"

type JobListRequest struct {
}

type JobListResponseItem struct {
	UID   string
	Type  string
	State string
}

type JobListResponse struct {
	Jobs []*JobListResponseItem
}
