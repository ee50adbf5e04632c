package queue

import "context"

// Client hands jobs and notifications to a queue backend.
type Client interface {
	Enqueue(ctx context.Context, msg Message) error
}
