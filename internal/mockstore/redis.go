package mockstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"newsLedger/internal/model"
)

const keyPrefix = "newsledger:"

// Redis is a Store shared by every process pointed at the same Redis.
// Entries never expire.
type Redis struct {
	client *redis.Client
}

var _ Store = (*Redis)(nil)

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) GetRecord(ctx context.Context, hash string) (model.ChainRecord, bool, error) {
	var rec model.ChainRecord
	ok, err := r.get(ctx, recordKey(hash), &rec)
	return rec, ok, err
}

func (r *Redis) PutRecordIfAbsent(ctx context.Context, rec model.ChainRecord) (model.ChainRecord, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return model.ChainRecord{}, fmt.Errorf("marshal chain record: %w", err)
	}
	stored, err := r.client.SetNX(ctx, recordKey(rec.Hash), data, 0).Result()
	if err != nil {
		return model.ChainRecord{}, fmt.Errorf("store chain record: %w", err)
	}
	if stored {
		return rec, nil
	}

	existing, ok, err := r.GetRecord(ctx, rec.Hash)
	if err != nil {
		return model.ChainRecord{}, err
	}
	if !ok {
		return rec, nil
	}
	return existing, nil
}

func (r *Redis) GetUser(ctx context.Context, address string) (model.UserIdentity, bool, error) {
	var user model.UserIdentity
	ok, err := r.get(ctx, userKey(address), &user)
	return user, ok, err
}

func (r *Redis) PutUser(ctx context.Context, user model.UserIdentity) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	if err := r.client.Set(ctx, userKey(user.Address), data, 0).Err(); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	return nil
}

func (r *Redis) get(ctx context.Context, key string, dst interface{}) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func recordKey(hash string) string {
	return keyPrefix + "chain:" + hash
}

func userKey(address string) string {
	return keyPrefix + "user:" + address
}
