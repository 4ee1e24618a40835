package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/reflextile/internal/model"
	"github.com/mcoot/reflextile/internal/storage"
)

// errTxContention is returned when an upsert keeps losing optimistic races
var errTxContention = errors.New("redis: too much contention on upsert")

// recordTapsScript raises a device's tap count to ARGV[2] if higher and
// returns the stored value
var recordTapsScript = redis.NewScript(`
local current = tonumber(redis.call('HGET', KEYS[1], ARGV[1]) or '0')
local reported = tonumber(ARGV[2])
if reported > current then
	redis.call('HSET', KEYS[1], ARGV[1], reported)
	current = reported
end
redis.call('SADD', KEYS[2], ARGV[3])
return current
`)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.MaxTxRetries <= 0 {
		cfg.MaxTxRetries = DefaultConfig().MaxTxRetries
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Record operations

func (s *Storage) FindByDevice(ctx context.Context, deviceID string, mode model.Mode) (*model.PlayerRecord, error) {
	return getRecord(ctx, s.client, recordKey(deviceID, mode))
}

func (s *Storage) FindByName(ctx context.Context, name string) (*model.PlayerRecord, error) {
	deviceID, err := s.client.Get(ctx, nameIndexKey(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRecordNotFound
		}
		return nil, err
	}
	return s.findOwned(ctx, deviceID, func(rec *model.PlayerRecord) bool {
		return rec.PlayerName == name
	})
}

func (s *Storage) FindByContact(ctx context.Context, contact string) (*model.PlayerRecord, error) {
	deviceID, err := s.client.Get(ctx, contactIndexKey(contact)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRecordNotFound
		}
		return nil, err
	}
	return s.findOwned(ctx, deviceID, func(rec *model.PlayerRecord) bool {
		return rec.HasContact() && *rec.Contact == contact
	})
}

// findOwned returns the first of a device's records matching pred
func (s *Storage) findOwned(ctx context.Context, deviceID string, pred func(*model.PlayerRecord) bool) (*model.PlayerRecord, error) {
	for _, mode := range model.Modes() {
		rec, err := getRecord(ctx, s.client, recordKey(deviceID, mode))
		if errors.Is(err, model.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if pred(rec) {
			return rec, nil
		}
	}
	return nil, model.ErrRecordNotFound
}

// Upsert writes the record inside a WATCH transaction over the record keys
// and the identity indexes it claims, so uniqueness holds across processes
func (s *Storage) Upsert(ctx context.Context, record *model.PlayerRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	key := recordKey(record.DeviceID, record.Mode)
	siblingKey := recordKey(record.DeviceID, otherMode(record.Mode))
	nameKey := nameIndexKey(record.PlayerName)
	watched := []string{key, siblingKey, nameKey}

	var contactKey string
	if record.HasContact() {
		contactKey = contactIndexKey(*record.Contact)
		watched = append(watched, contactKey)
	}

	txf := func(tx *redis.Tx) error {
		if err := checkOwner(ctx, tx, nameKey, record.DeviceID, model.ErrNameTaken); err != nil {
			return err
		}
		if contactKey != "" {
			if err := checkOwner(ctx, tx, contactKey, record.DeviceID, model.ErrContactTaken); err != nil {
				return err
			}
		}

		prev, err := getRecordOrNil(ctx, tx, key)
		if err != nil {
			return err
		}
		sibling, err := getRecordOrNil(ctx, tx, siblingKey)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.SAdd(ctx, recordsIndexKey(), key)
			pipe.Set(ctx, nameKey, record.DeviceID, 0)
			if contactKey != "" {
				pipe.Set(ctx, contactIndexKey(*record.Contact), record.DeviceID, 0)
			}

			// Release identity the device no longer uses in any mode
			if prev != nil {
				if prev.PlayerName != record.PlayerName && (sibling == nil || sibling.PlayerName != prev.PlayerName) {
					pipe.Del(ctx, nameIndexKey(prev.PlayerName))
				}
				if prev.HasContact() && !sameContact(prev, record) && !sameContact(prev, sibling) {
					pipe.Del(ctx, contactIndexKey(*prev.Contact))
				}
			}
			return nil
		})
		return err
	}

	for i := 0; i < s.cfg.MaxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, watched...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return errTxContention
}

func (s *Storage) List(ctx context.Context, opts model.ListOptions) ([]*model.PlayerRecord, error) {
	keys, err := s.client.SMembers(ctx, recordsIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []*model.PlayerRecord{}, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	result := make([]*model.PlayerRecord, 0, len(values))
	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue
		}
		var rec model.PlayerRecord
		if err := json.Unmarshal([]byte(str), &rec); err != nil {
			continue // Skip invalid data
		}
		if storage.Matches(&rec, opts) {
			result = append(result, &rec)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return storage.Ranks(result[i], result[j])
	})
	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result, nil
}

// Tap operations

func (s *Storage) RecordTaps(ctx context.Context, tc model.TapCount) (int, error) {
	keys := []string{tapsKey(tc.Brand), brandsIndexKey()}
	return recordTapsScript.Run(ctx, s.client, keys, tc.DeviceID, tc.Taps, tc.Brand).Int()
}

func (s *Storage) TapTotals(ctx context.Context) (map[string]int, error) {
	brands, err := s.client.SMembers(ctx, brandsIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	pipe := s.client.Pipeline()
	cmds := make(map[string]*redis.StringSliceCmd, len(brands))
	for _, brand := range brands {
		cmds[brand] = pipe.HVals(ctx, tapsKey(brand))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	totals := make(map[string]int, len(brands))
	for brand, cmd := range cmds {
		vals, err := cmd.Result()
		if err != nil {
			return nil, err
		}
		sum := 0
		for _, v := range vals {
			var n int
			if _, err := fmt.Sscan(v, &n); err == nil {
				sum += n
			}
		}
		totals[brand] = sum
	}
	return totals, nil
}

// helpers

func getRecord(ctx context.Context, c redis.Cmdable, key string) (*model.PlayerRecord, error) {
	data, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRecordNotFound
		}
		return nil, err
	}

	var rec model.PlayerRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func getRecordOrNil(ctx context.Context, c redis.Cmdable, key string) (*model.PlayerRecord, error) {
	rec, err := getRecord(ctx, c, key)
	if errors.Is(err, model.ErrRecordNotFound) {
		return nil, nil
	}
	return rec, err
}

// checkOwner fails with conflict when key names a device other than deviceID
func checkOwner(ctx context.Context, c redis.Cmdable, key, deviceID string, conflict error) error {
	owner, err := c.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}
	if owner != deviceID {
		return conflict
	}
	return nil
}

func sameContact(a, b *model.PlayerRecord) bool {
	if a == nil || b == nil || !a.HasContact() || !b.HasContact() {
		return false
	}
	return *a.Contact == *b.Contact
}

// otherMode returns the mode a device's second record lives under
func otherMode(mode model.Mode) model.Mode {
	if mode == model.ModeVersus {
		return model.ModeSolo
	}
	return model.ModeVersus
}
