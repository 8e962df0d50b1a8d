package flow

import (
	"context"
	"errors"
	"fmt"

	"github.com/newscatcherapi/catchall-go/catchall"
)

// ClientSearcher runs a search end to end: submit the job, then stream it
// with a poller until completion or the attempt budget runs out. An exhausted
// budget with partial results is treated as a usable outcome.
type ClientSearcher struct {
	Client *catchall.Client
	Policy catchall.PollPolicy
}

func (s ClientSearcher) Search(ctx context.Context, req catchall.SubmitRequest) (*catchall.PullResponse, error) {
	resp, err := s.Client.Submit(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	page, err := catchall.NewPoller(s.Client, s.Policy).Run(ctx, resp.JobID, nil)
	if errors.Is(err, catchall.ErrBudgetExhausted) && page != nil {
		return page, nil
	}
	if err != nil {
		return nil, fmt.Errorf("poll job %s: %w", resp.JobID, err)
	}
	return page, nil
}
