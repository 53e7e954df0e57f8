package dao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yaron8/netperf-analyzer/telemetrics"
)

// ErrNotFound is returned when a run or summary is not in the store
var ErrNotFound = errors.New("not found")

const lastRunKey = "summary:last_run"

func summaryKey(runID, iface, metric string) string {
	return fmt.Sprintf("summary:%s:%s:%s", runID, iface, metric)
}

func runIndexKey(runID string) string {
	return fmt.Sprintf("summary:%s:index", runID)
}

// DAOSummaries handles run summary storage and retrieval
type DAOSummaries struct {
	redisClient *redis.Client
	ttl         time.Duration
}

// NewDAOSummaries creates a new DAOSummaries with the provided Redis client.
// A zero ttl keeps summaries forever.
func NewDAOSummaries(redisClient *redis.Client, ttl time.Duration) *DAOSummaries {
	return &DAOSummaries{
		redisClient: redisClient,
		ttl:         ttl,
	}
}

// Store saves the summary of one key under runID and adds it to the run index
func (dao *DAOSummaries) Store(ctx context.Context, runID string, summary telemetrics.Summary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}

	key := summaryKey(runID, summary.Interface, summary.Metric)
	index := runIndexKey(runID)

	_, err = dao.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, dao.ttl)
		pipe.SAdd(ctx, index, key)
		if dao.ttl > 0 {
			pipe.Expire(ctx, index, dao.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store summary %s: %w", key, err)
	}
	return nil
}

// SetLastRun records runID as the most recent run
func (dao *DAOSummaries) SetLastRun(ctx context.Context, runID string) error {
	return dao.redisClient.Set(ctx, lastRunKey, runID, dao.ttl).Err()
}

// LastRun returns the id of the most recent run
func (dao *DAOSummaries) LastRun(ctx context.Context) (string, error) {
	runID, err := dao.redisClient.Get(ctx, lastRunKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return runID, err
}

// Get returns the summary of one key of a run
func (dao *DAOSummaries) Get(ctx context.Context, runID, iface, metric string) (*telemetrics.Summary, error) {
	data, err := dao.redisClient.Get(ctx, summaryKey(runID, iface, metric)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var summary telemetrics.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("failed to decode summary: %w", err)
	}
	return &summary, nil
}

// GetAll returns every stored summary of a run sorted by interface and metric
func (dao *DAOSummaries) GetAll(ctx context.Context, runID string) ([]telemetrics.Summary, error) {
	keys, err := dao.redisClient.SMembers(ctx, runIndexKey(runID)).Result()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, ErrNotFound
	}

	values, err := dao.redisClient.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	summaries := make([]telemetrics.Summary, 0, len(values))
	for _, v := range values {
		// entries that expired after the index was read come back nil
		s, ok := v.(string)
		if !ok {
			continue
		}
		var summary telemetrics.Summary
		if err := json.Unmarshal([]byte(s), &summary); err != nil {
			return nil, fmt.Errorf("failed to decode summary: %w", err)
		}
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Interface != summaries[j].Interface {
			return summaries[i].Interface < summaries[j].Interface
		}
		return summaries[i].Metric < summaries[j].Metric
	})

	return summaries, nil
}
