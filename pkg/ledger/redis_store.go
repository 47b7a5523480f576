package ledger

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// redisStore implements Store on Redis. Each account is a hash; every
// mutation runs as a Lua script, which Redis executes atomically, so the
// check and the increment can never interleave with another caller.
// Timestamps are stored as unix milliseconds, zero meaning never reset.
type redisStore struct {
	client    *redis.Client
	keyPrefix string
}

const redisIndexKey = "credit_accounts:index"

var (
	deductScript = redis.NewScript(`
		if redis.call('EXISTS', KEYS[1]) == 0 then return -1 end
		local total = tonumber(redis.call('HGET', KEYS[1], 'credits') or '0')
		local used = tonumber(redis.call('HGET', KEYS[1], 'credits_used') or '0')
		local amount = tonumber(ARGV[1])
		if used + amount > total then return 0 end
		redis.call('HINCRBY', KEYS[1], 'credits_used', amount)
		redis.call('HSET', KEYS[1], 'updated_at', ARGV[2])
		return 1`)

	resetScript = redis.NewScript(`
		if redis.call('EXISTS', KEYS[1]) == 0 then return -1 end
		redis.call('HSET', KEYS[1], 'credits', ARGV[1], 'credits_used', 0,
			'credits_reset_at', ARGV[2], 'updated_at', ARGV[2])
		return 1`)

	resetIfElapsedScript = redis.NewScript(`
		if redis.call('EXISTS', KEYS[1]) == 0 then return -1 end
		local reset_at = tonumber(redis.call('HGET', KEYS[1], 'credits_reset_at') or '0')
		if reset_at ~= 0 and reset_at >= tonumber(ARGV[2]) then return 0 end
		redis.call('HSET', KEYS[1], 'credits', ARGV[1], 'credits_used', 0,
			'credits_reset_at', ARGV[3], 'updated_at', ARGV[3])
		return 1`)
)

// NewRedisStore returns a Store backed by the given Redis client.
func NewRedisStore(client *redis.Client) Store {
	if client == nil {
		panic("ledger: redis client is required")
	}
	return &redisStore{client: client, keyPrefix: "credit_account:"}
}

func (s *redisStore) key(id uuid.UUID) string {
	return s.keyPrefix + id.String()
}

func (s *redisStore) Get(ctx context.Context, id uuid.UUID) (*Account, error) {
	fields, err := s.client.HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		return nil, s.classify(err)
	}
	if len(fields) == 0 {
		return nil, ErrAccountNotFound
	}

	acc := &Account{ID: id}
	acc.Credits = parseMilliInt(fields["credits"])
	acc.CreditsUsed = parseMilliInt(fields["credits_used"])
	if ms := parseMilliInt(fields["credits_reset_at"]); ms != 0 {
		t := time.UnixMilli(ms).UTC()
		acc.CreditsResetAt = &t
	}
	acc.CreatedAt = time.UnixMilli(parseMilliInt(fields["created_at"])).UTC()
	acc.UpdatedAt = time.UnixMilli(parseMilliInt(fields["updated_at"])).UTC()
	return acc, nil
}

func (s *redisStore) Create(ctx context.Context, acc *Account) error {
	key := s.key(acc.ID)

	ok, err := s.client.HSetNX(ctx, key, "credits", acc.Credits).Result()
	if err != nil {
		return s.classify(err)
	}
	if !ok {
		return ErrAccountAlreadyExists
	}

	var resetAt int64
	if acc.CreditsResetAt != nil {
		resetAt = acc.CreditsResetAt.UnixMilli()
	}
	err = s.client.HSet(ctx, key,
		"credits_used", acc.CreditsUsed,
		"credits_reset_at", resetAt,
		"created_at", acc.CreatedAt.UnixMilli(),
		"updated_at", acc.UpdatedAt.UnixMilli(),
	).Err()
	if err != nil {
		return s.classify(err)
	}
	return s.classify(s.client.SAdd(ctx, redisIndexKey, acc.ID.String()).Err())
}

func (s *redisStore) Deduct(ctx context.Context, id uuid.UUID, amount int64) (bool, error) {
	res, err := deductScript.Run(ctx, s.client, []string{s.key(id)},
		amount, time.Now().UTC().UnixMilli()).Int64()
	if err != nil {
		return false, s.classify(err)
	}
	switch res {
	case -1:
		return false, ErrAccountNotFound
	case 0:
		return false, nil
	default:
		return true, nil
	}
}

func (s *redisStore) Reset(ctx context.Context, id uuid.UUID, newTotal int64, now time.Time) error {
	res, err := resetScript.Run(ctx, s.client, []string{s.key(id)},
		newTotal, now.UnixMilli()).Int64()
	if err != nil {
		return s.classify(err)
	}
	if res == -1 {
		return ErrAccountNotFound
	}
	return nil
}

func (s *redisStore) ResetIfElapsed(ctx context.Context, id uuid.UUID, newTotal int64, cutoff, now time.Time) (bool, error) {
	res, err := resetIfElapsedScript.Run(ctx, s.client, []string{s.key(id)},
		newTotal, cutoff.UnixMilli(), now.UnixMilli()).Int64()
	if err != nil {
		return false, s.classify(err)
	}
	switch res {
	case -1:
		return false, ErrAccountNotFound
	case 0:
		return false, nil
	default:
		return true, nil
	}
}

func (s *redisStore) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	members, err := s.client.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, s.classify(err)
	}

	ids := make([]uuid.UUID, 0, len(members))
	for _, member := range members {
		id, err := uuid.Parse(member)
		if err != nil {
			continue // skip corrupt index entries
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// classify tags connectivity failures as transient; redis.Nil and script
// results are handled by the callers.
func (s *redisStore) classify(err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return errors.Join(ErrStorageTransient, err)
}

func parseMilliInt(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
