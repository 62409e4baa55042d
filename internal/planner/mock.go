package planner

import (
	"context"
	"errors"
	"sync"
)

// ScriptClient replays canned responses in order and records every prompt it
// received. It backs planner and API tests, and the offline CLI mode.
type ScriptClient struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	Prompts   []string
}

func (c *ScriptClient) GenerateText(_ context.Context, prompt string, _ int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Prompts = append(c.Prompts, prompt)
	if c.Err != nil {
		return "", c.Err
	}
	if len(c.Responses) == 0 {
		return "", errors.New("script client: no responses left")
	}
	next := c.Responses[0]
	c.Responses = c.Responses[1:]
	return next, nil
}
