// Package queue carries object finalized events over a Redis list.
package queue

import (
	"context"
	"errors"
	"math/rand"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/utilization/modules/planning/domain/upload"
)

const (
	DefaultKey = "utilization:object-finalized"

	// MaxPopFailures consecutive BLPOP errors end Run.
	MaxPopFailures = 5
)

// Handler processes one event. A returned error parks the raw payload on the
// failed list.
type Handler func(ctx context.Context, ev upload.ObjectFinalized) error

type Queue struct {
	redis   redis.Cmdable
	key     string
	timeout time.Duration
	log     *logrus.Logger

	retryBase  time.Duration
	maxBackoff time.Duration
	rand       *rand.Rand
}

func New(client redis.Cmdable, key string, pollTimeout time.Duration, log *logrus.Logger) *Queue {
	if key == "" {
		key = DefaultKey
	}
	if pollTimeout <= 0 {
		pollTimeout = 5 * time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Queue{
		redis:      client,
		key:        key,
		timeout:    pollTimeout,
		log:        log,
		retryBase:  time.Second,
		maxBackoff: 30 * time.Second,
		rand:       rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec
	}
}

func (q *Queue) Key() string { return q.key }

// FailedKey is the list holding payloads that could not be decoded or handled.
func (q *Queue) FailedKey() string { return q.key + ":failed" }

// Publish appends ev to the queue.
func (q *Queue) Publish(ctx context.Context, ev upload.ObjectFinalized) error {
	payload, err := ev.Encode()
	if err != nil {
		return err
	}
	if err := q.redis.RPush(ctx, q.key, payload).Err(); err != nil {
		return gerrors.Wrap(err, "failed to publish event")
	}
	return nil
}

// Run pops events one at a time and hands them to h until ctx is done. Redis
// errors are retried with exponential backoff; MaxPopFailures in a row end Run.
func (q *Queue) Run(ctx context.Context, h Handler) error {
	q.log.WithField("key", q.key).Info("listening for upload events")
	failures := 0
	for {
		if ctx.Err() != nil {
			return nil
		}
		res, err := q.redis.BLPop(ctx, q.timeout, q.key).Result()
		switch {
		case errors.Is(err, redis.Nil):
			failures = 0
			continue
		case err != nil:
			if ctx.Err() != nil {
				return nil
			}
			failures++
			if failures >= MaxPopFailures {
				return gerrors.Wrap(err, "failed to pop event")
			}
			wait := backoff(failures, q.retryBase, q.maxBackoff) + jitter(q.rand, q.retryBase/10)
			q.log.WithError(err).WithFields(logrus.Fields{
				"attempt": failures,
				"wait":    wait,
			}).Warn("failed to pop event, retrying")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(wait):
			}
			continue
		}
		failures = 0
		// BLPOP replies with the key followed by the value.
		if len(res) != 2 {
			continue
		}
		q.dispatch(ctx, res[1], h)
	}
}

func (q *Queue) dispatch(ctx context.Context, payload string, h Handler) {
	ev, err := upload.Decode([]byte(payload))
	if err == nil {
		err = h(ctx, ev)
	}
	if err == nil {
		return
	}
	logger := q.log.WithError(err).WithField("path", ev.Path)
	if pushErr := q.redis.RPush(ctx, q.FailedKey(), payload).Err(); pushErr != nil {
		logger.WithField("pushError", pushErr).Error("upload event dropped")
		return
	}
	logger.Warn("upload event parked on failed list")
}

// Requeue moves every parked payload back onto the queue and reports how many moved.
func (q *Queue) Requeue(ctx context.Context) (int, error) {
	moved := 0
	for {
		err := q.redis.LMove(ctx, q.FailedKey(), q.key, "LEFT", "RIGHT").Err()
		if errors.Is(err, redis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, gerrors.Wrap(err, "failed to requeue event")
		}
		moved++
	}
}
