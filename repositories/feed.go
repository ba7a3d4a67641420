package repositories

import (
	"context"
	"log/slog"
	"wisp/contract"
)

// Update is one decoded snapshot of a watched collection.
type Update[T any] struct {
	Items []T
	Err   error
}

// Feed turns raw store snapshots into typed updates.
// Documents that cannot be decoded are skipped, the rest of the snapshot is kept.
type Feed[T any] struct {
	sub contract.Subscription
	out chan Update[T]
}

// NewFeed decodes the snapshots of sub until it is closed or ctx ends.
func NewFeed[T any](ctx context.Context, log *slog.Logger, sub contract.Subscription, decode func(contract.Document) (T, error)) *Feed[T] {
	f := &Feed[T]{sub: sub, out: make(chan Update[T])}
	go func() {
		defer close(f.out)
		for snapshot := range sub.Snapshots() {
			update := Update[T]{Err: snapshot.Err}
			if snapshot.Err == nil {
				update.Items = make([]T, 0, len(snapshot.Documents))
				for _, doc := range snapshot.Documents {
					item, err := decode(doc)
					if err != nil {
						log.Warn("Skipping undecodable document", "id", doc.ID, "error", err)
						continue
					}
					update.Items = append(update.Items, item)
				}
			}
			select {
			case f.out <- update:
			case <-ctx.Done():
				sub.Close()
				return
			}
		}
	}()
	return f
}

func (f *Feed[T]) Updates() <-chan Update[T] {
	return f.out
}

func (f *Feed[T]) Close() {
	f.sub.Close()
}
