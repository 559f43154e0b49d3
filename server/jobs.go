// Copyright (c) 2026 BVK Chaitanya

package server

import (
	"context"
	"fmt"

	"github.com/bvk/flipbot/api"
	"github.com/bvk/flipbot/job"
	"github.com/bvkgo/kv"
)

// doPause pauses a running job. A paused job keeps its database entry and
// can be resumed later.
func (s *Server) doPause(ctx context.Context, req *api.JobPauseRequest) (*api.JobPauseResponse, error) {
	state, err := job.PauseDB(ctx, s.runner, s.db, req.UID)
	if err != nil {
		return nil, fmt.Errorf("could not pause job %q: %w", req.UID, err)
	}
	return &api.JobPauseResponse{FinalState: string(state)}, nil
}

// doResume resumes a non-final job.
func (s *Server) doResume(ctx context.Context, req *api.JobResumeRequest) (*api.JobResumeResponse, error) {
	var state job.State
	resume := func(ctx context.Context, rw kv.ReadWriter) error {
		jd, err := s.runner.Get(ctx, rw, req.UID)
		if err != nil {
			return err
		}
		if job.IsDone(jd.State) {
			return fmt.Errorf("job %q is already completed", req.UID)
		}
		fn, err := s.makeJobFunc(jd.Typename)
		if err != nil {
			return err
		}
		nstate, err := s.runner.Resume(ctx, rw, req.UID, fn, s.closeCtx)
		if err != nil {
			return err
		}
		state = nstate
		return nil
	}
	if err := kv.WithReadWriter(ctx, s.db, resume); err != nil {
		return nil, err
	}
	return &api.JobResumeResponse{FinalState: string(state)}, nil
}

// doCancel cancels a non-final job. If the job is running, it is stopped.
func (s *Server) doCancel(ctx context.Context, req *api.JobCancelRequest) (*api.JobCancelResponse, error) {
	state, err := job.CancelDB(ctx, s.runner, s.db, req.UID)
	if err != nil {
		return nil, err
	}
	return &api.JobCancelResponse{FinalState: string(state)}, nil
}

func (s *Server) doList(ctx context.Context, req *api.JobListRequest) (*api.JobListResponse, error) {
	resp := new(api.JobListResponse)
	collect := func(ctx context.Context, r kv.Reader, jd *job.JobData) error {
		item := &api.JobListResponseItem{
			UID:   jd.UID,
			Type:  jd.Typename,
			State: string(jd.State),
		}
		resp.Jobs = append(resp.Jobs, item)
		return nil
	}
	if err := job.ScanDB(ctx, s.runner, s.db, collect); err != nil {
		return nil, fmt.Errorf("could not scan all jobs: %w", err)
	}
	return resp, nil
}
