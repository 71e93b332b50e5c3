package scrapinghub

import (
	"context"
	"fmt"

	"github.com/avast/retry-go"
	"github.com/pkg/errors"

	"github.com/davidxi/scrapinghub-go/internal/httpx"
)

// Item is a scraped item.
type Item = map[string]any

// ItemsOptions selects the items to read.
type ItemsOptions struct {
	// Offset is the index of the first item.
	Offset int
	// Count bounds the number of items. Nil reads to the end.
	Count *int
	// Meta lists metadata fields to include with every item, e.g. "_key".
	Meta []string
}

// itemsCursor is the position a read attempt starts from.
type itemsCursor struct {
	offset int
	count  *int
	meta   []string
}

// advance returns the cursor following retrieved items.
func (c itemsCursor) advance(retrieved int) itemsCursor {
	next := itemsCursor{offset: c.offset + retrieved, meta: c.meta}
	if c.count != nil {
		n := *c.count - retrieved
		next.count = &n
	}
	return next
}

// done reports whether a bounded read has nothing left to fetch.
func (c itemsCursor) done() bool {
	return c.count != nil && *c.count <= 0
}

func (c itemsCursor) params(jobID, apiKey string) Params {
	params := Params{
		"apikey": apiKey,
		"start":  fmt.Sprintf("%s/%d", jobID, c.offset),
		"format": string(FormatJL),
	}
	if c.count != nil {
		params["count"] = *c.count
	}
	if len(c.meta) > 0 {
		params["meta"] = c.meta
	}
	return params
}

// Items reads the job's items from the storage endpoint. A read that fails
// mid-stream is resumed after the last item received, up to the
// connection's retry limit. If every attempt fails, or a line holds a JSON
// value that is not an object, Items returns nil and an *ItemsError holding
// what was read.
func (j *Job) Items(ctx context.Context, opts ItemsOptions) ([]Item, error) {
	conn := j.project.conn
	if conn == nil {
		return nil, ErrNotImplemented
	}

	cursor := itemsCursor{offset: opts.Offset, meta: opts.Meta}
	if opts.Count != nil {
		n := *opts.Count
		cursor.count = &n
	}

	endpoint := httpx.JoinURL(conn.storageURL, "items/"+j.id)
	policy := conn.itemsRetry
	items := []Item{}
	attempts := 0

	var fatal error
	err := retry.Do(func() error {
		attempts++
		if cursor.done() {
			return nil
		}
		batch, err := j.readItems(ctx, endpoint, cursor.params(j.id, conn.APIKey()))
		items = append(items, batch...)
		if err != nil {
			cursor = cursor.advance(len(batch))
			if cursor.done() {
				return nil
			}
			var recordErr *itemRecordError
			if errors.As(err, &recordErr) {
				fatal = errors.Wrapf(err, "reading item %d of %s", cursor.offset, j.id)
				return retry.Unrecoverable(fatal)
			}
			return err
		}
		return nil
	}, policy.Options(ctx, func(n uint, err error) {
		conn.logger.Debug("retrying items read",
			"job", j.id,
			"offset", cursor.offset,
			"count", countField(cursor.count),
			"attempt", n+1,
			"max_attempts", policy.MaxAttempts,
			"retry_in", policy.Delay(int(n)),
			"error", err,
		)
	})...)
	if fatal != nil {
		err = fatal
	}
	if err != nil {
		itemsErr := &ItemsError{
			JobID:       j.id,
			Attempts:    attempts,
			MaxAttempts: policy.MaxAttempts,
			Offset:      cursor.offset,
			Count:       cursor.count,
			Partial:     items,
			Err:         err,
		}
		conn.logger.Error("items read failed",
			"job", j.id,
			"attempts", attempts,
			"retrieved", len(items),
			"error", err,
		)
		return nil, itemsErr
	}
	return items, nil
}

// readItems performs one attempt, returning the items received before any
// failure.
func (j *Job) readItems(ctx context.Context, endpoint string, params Params) ([]Item, error) {
	result, err := j.Get(ctx, endpoint, FormatJL, params)
	if err != nil {
		return nil, err
	}
	var batch []Item
	it := result.Records().Iter()
	for it.Next() {
		item, ok := it.Value().(map[string]any)
		if !ok {
			return batch, &itemRecordError{raw: string(it.Raw())}
		}
		batch = append(batch, item)
	}
	return batch, it.Err()
}

// itemRecordError is a well-formed line that is not an item object. Reading
// the same offset again yields the same line, so it is not retried.
type itemRecordError struct {
	raw string
}

func (e *itemRecordError) Error() string {
	return "item is not a JSON object: " + e.raw
}

func countField(count *int) any {
	if count == nil {
		return "all"
	}
	return *count
}
