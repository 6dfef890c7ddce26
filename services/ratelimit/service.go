package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// ErrUnexpectedReply is returned when the window script answers with an unknown shape
var ErrUnexpectedReply = errors.New("unexpected sliding window reply")

// slidingWindow trims entries older than the window, then admits the request
// only while the set holds fewer than limit members. A member already in the
// set is reported as admitted. Returns {allowed, remaining}.
//
// KEYS[1] window key
// ARGV[1] now (ms)  ARGV[2] cutoff (ms)  ARGV[3] limit  ARGV[4] member  ARGV[5] window (ms)
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', ARGV[2])

-- A retried call whose earlier attempt already committed stays admitted.
if redis.call('ZSCORE', key, ARGV[4]) then
	return {1, limit - redis.call('ZCARD', key)}
end

local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
	redis.call('ZADD', key, ARGV[1], ARGV[4])
	count = count + 1
	allowed = 1
end
redis.call('PEXPIRE', key, ARGV[5])

return {allowed, limit - count}
`)

// Options tunes the Redis boundary
type Options struct {
	Timeout    time.Duration
	MaxRetries int
}

// Service is the Redis-backed Decider.
// It checks shield patterns, then the sliding window, then bot heuristics.
type Service struct {
	client     redis.Scripter
	shield     *Shield
	bots       *BotDetector
	timeout    time.Duration
	maxRetries uint64
	now        func() time.Time
	logger     *zap.Logger
}

// NewService creates a new rate limit service
func NewService(client redis.Scripter, opts Options, logger *zap.Logger) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = 500 * time.Millisecond
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Service{
		client:     client,
		shield:     NewShield(),
		bots:       NewBotDetector(),
		timeout:    opts.Timeout,
		maxRetries: uint64(opts.MaxRetries),
		now:        time.Now,
		logger:     logger,
	}
}

// Decide implements Decider
func (s *Service) Decide(ctx context.Context, req RequestContext, policy Policy) (Decision, error) {
	if threat, ok := s.shield.Malicious(req); ok {
		return Decision{
			Allowed: false,
			Reason:  ReasonShield,
			Limit:   policy.Limit,
			Detail:  fmt.Sprintf("%s in %s", threat.Type, threat.Field),
		}, nil
	}

	now := s.now()
	allowed, remaining, err := s.admit(ctx, windowKey(policy, req), now, policy)
	if err != nil {
		return Decision{}, err
	}

	decision := Decision{
		Allowed:   allowed,
		Reason:    ReasonNone,
		Limit:     policy.Limit,
		Remaining: remaining,
		ResetAt:   now.Add(policy.Window),
	}
	if !allowed {
		decision.Reason = ReasonRateLimit
		return decision, nil
	}

	if agent, ok := s.bots.Detect(req.UserAgent); ok {
		decision.Allowed = false
		decision.Reason = ReasonBot
		decision.Detail = agent
	}
	return decision, nil
}

// admit runs the window script with a per-attempt timeout and bounded retries.
// The member is fixed across retries so a replayed ZADD cannot count twice.
func (s *Service) admit(ctx context.Context, key string, now time.Time, policy Policy) (bool, int, error) {
	nowMs := now.UnixMilli()
	windowMs := policy.Window.Milliseconds()
	args := []interface{}{
		strconv.FormatInt(nowMs, 10),
		strconv.FormatInt(nowMs-windowMs, 10),
		policy.Limit,
		uuid.NewString(),
		strconv.FormatInt(windowMs, 10),
	}

	var reply []int64
	backoff := retry.WithMaxRetries(s.maxRetries, retry.NewExponential(20*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		res, err := slidingWindow.Run(attemptCtx, s.client, []string{key}, args...).Int64Slice()
		if err != nil {
			s.logger.Warn("sliding window call failed", zap.String("key", key), zap.Error(err))
			return retry.RetryableError(err)
		}
		reply = res
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("rate limit store: %w", err)
	}
	if len(reply) != 2 {
		return false, 0, fmt.Errorf("%w: %v", ErrUnexpectedReply, reply)
	}

	remaining := int(reply[1])
	if remaining < 0 {
		remaining = 0
	}
	return reply[0] == 1, remaining, nil
}

func windowKey(policy Policy, req RequestContext) string {
	fingerprint := req.Fingerprint
	if fingerprint == "" {
		fingerprint = req.IP
	}
	return fmt.Sprintf("ratelimit:%s:%s", policy.Role, fingerprint)
}
