package buttons

import "context"

type Event string

const (
	Exit        Event = "exit"
	Reroll      Event = "reroll"
	NextPattern Event = "next_pattern"
)

type Buttons interface {
	Start(ctx context.Context) error
	Stop() error
	Events() <-chan Event
}

type NoopButtons struct{ ch chan Event }

func NewNoopButtons() *NoopButtons { return &NoopButtons{ch: make(chan Event)} }

func (n *NoopButtons) Start(ctx context.Context) error { return nil }
func (n *NoopButtons) Stop() error                     { return nil }
func (n *NoopButtons) Events() <-chan Event            { return n.ch }
