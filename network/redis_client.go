package network

import (
	"fmt"
	"time"

	"github.com/go-redis/redis/v7"
	"github.com/storagestats/gcs-stats/models/service"
)

const outcomeKeyPrefix = "gcs_stats:outcome:"

// RedisClient keeps a short-lived journal of pipeline outcomes, keyed
// by object id. The journal is informational. Nothing in the pipeline
// reads it to decide what to do.
type RedisClient struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient returns a journal client. Entries expire after ttl.
// A zero ttl keeps them forever.
func NewRedisClient(address, password string, db int, ttl time.Duration) *RedisClient {
	return &RedisClient{
		client: redis.NewClient(&redis.Options{
			Addr:     address,
			Password: password,
			DB:       db,
		}),
		ttl: ttl,
	}
}

func (c *RedisClient) Ping() (string, error) {
	return c.client.Ping().Result()
}

func outcomeKey(objectID string) string {
	return outcomeKeyPrefix + objectID
}

// OutcomeSave writes the outcome of the latest run for its object,
// replacing any earlier entry.
func (c *RedisClient) OutcomeSave(outcome *service.Outcome) error {
	jsonData, err := outcome.ToJSON()
	if err != nil {
		return err
	}
	err = c.client.Set(outcomeKey(outcome.ObjectID), jsonData, c.ttl).Err()
	if err != nil {
		return fmt.Errorf("OutcomeSave (%s): %s", outcome.ObjectID, err.Error())
	}
	return nil
}

// OutcomeGet returns the journaled outcome for objectID, or nil if
// there isn't one.
func (c *RedisClient) OutcomeGet(objectID string) (*service.Outcome, error) {
	data, err := c.client.Get(outcomeKey(objectID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("OutcomeGet (%s): %s", objectID, err.Error())
	}
	return service.OutcomeFromJSON(data)
}

func (c *RedisClient) OutcomeDelete(objectID string) error {
	_, err := c.client.Del(outcomeKey(objectID)).Result()
	return err
}

func (c *RedisClient) Close() error {
	return c.client.Close()
}
