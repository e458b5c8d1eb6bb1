// Package actor holds the small message-passing primitives the pipeline
// workers are built from: a typed mailbox and the Recipient contract that
// lets one worker publish to another without sharing memory.
package actor

import (
	"context"
	"errors"
)

// ErrMailboxFull is returned by TrySend when the mailbox has no free slot.
var ErrMailboxFull = errors.New("mailbox full")

// Recipient accepts messages of type T. Implementations must copy or own the
// value they receive; senders never touch it again.
type Recipient[T any] interface {
	Send(ctx context.Context, msg T) error
}

// RecipientFunc adapts a function into a Recipient.
type RecipientFunc[T any] func(ctx context.Context, msg T) error

// Send calls f.
func (f RecipientFunc[T]) Send(ctx context.Context, msg T) error {
	return f(ctx, msg)
}

// Mailbox is a FIFO, single-consumer queue owned by one worker.
type Mailbox[T any] chan T

// NewMailbox creates a mailbox that buffers up to size messages.
func NewMailbox[T any](size int) Mailbox[T] {
	return make(Mailbox[T], size)
}

// Send enqueues msg, waiting for a free slot until ctx is done.
func (m Mailbox[T]) Send(ctx context.Context, msg T) error {
	select {
	case m <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySend enqueues msg only if the mailbox has room.
func (m Mailbox[T]) TrySend(msg T) error {
	select {
	case m <- msg:
		return nil
	default:
		return ErrMailboxFull
	}
}

// Tee fans a message out to every recipient in order. All recipients are
// tried; the errors are joined.
func Tee[T any](recipients ...Recipient[T]) Recipient[T] {
	return RecipientFunc[T](func(ctx context.Context, msg T) error {
		var errs []error
		for _, r := range recipients {
			if r == nil {
				continue
			}
			if err := r.Send(ctx, msg); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

// Map converts messages before handing them to next.
func Map[From, To any](next Recipient[To], convert func(From) To) Recipient[From] {
	return RecipientFunc[From](func(ctx context.Context, msg From) error {
		return next.Send(ctx, convert(msg))
	})
}
