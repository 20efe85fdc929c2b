package snapshot

import (
	"context"
	"encoding/json"
	"fmt"

	v9 "github.com/redis/go-redis/v9"

	snapshotv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/snapshot/v1"
	"github.com/muhammadchandra19/exchange-simulator/pkg/errors"
	logger "github.com/muhammadchandra19/exchange-simulator/pkg/logger"
	"github.com/muhammadchandra19/exchange-simulator/pkg/redis"
	"github.com/muhammadchandra19/exchange-simulator/pkg/util"
)

const latestRun = "latest"

var ErrSnapshotStore = errors.New(errors.SnapshotStoreError, errors.SeverityHigh, errors.CategoryDatabase, "snapshot store failed")

// Store keeps end-of-run snapshots in Redis. Each venue has one key per run,
// a "latest" key and a sorted set of run ids scored by the simulation clock.
type Store struct {
	logger      *logger.Logger
	redisclient redis.Client
}

// NewSnapshotStore creates a new Store with the given Redis client.
func NewSnapshotStore(redisclient redis.Client, logger *logger.Logger) *Store {
	return &Store{
		redisclient: redisclient,
		logger:      logger,
	}
}

func (s *Store) runKey(venue, runID string) string {
	return s.redisclient.Key("snapshot", venue, runID)
}

func (s *Store) indexKey(venue string) string {
	return s.redisclient.Key("snapshot", venue, "runs")
}

// Store stores the snapshot under its run id and as the venue's latest.
func (s *Store) Store(ctx context.Context, snapshot *snapshotv1.Snapshot) error {
	if snapshot == nil || snapshot.Venue == "" {
		return ErrSnapshotStore.Errorf("snapshot without venue")
	}

	s.logger.InfoContext(ctx, fmt.Sprintf("Storing snapshot for venue %s", snapshot.Venue),
		logger.NewField("venue", snapshot.Venue),
		logger.NewField("orders", snapshot.OrderCount()),
	)

	buf, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.ErrorContext(ctx, err, logger.NewField("venue", snapshot.Venue))
		return errors.NewTracer("snapshot_marshal_error").Wrap(err)
	}

	keys := []string{s.runKey(snapshot.Venue, latestRun)}
	if snapshot.RunID != "" {
		keys = append(keys, s.runKey(snapshot.Venue, snapshot.RunID))
	}
	for _, key := range keys {
		if err := s.redisclient.Set(ctx, key, buf, 0); err != nil {
			s.logger.ErrorContext(ctx, err,
				logger.NewField("venue", snapshot.Venue),
				logger.NewField("key", key),
			)
			return errors.NewTracer("snapshot_store_error").Wrap(err)
		}
	}

	if snapshot.RunID != "" {
		member := v9.Z{Score: float64(snapshot.Clock), Member: snapshot.RunID}
		if _, err := s.redisclient.ZAdd(ctx, s.indexKey(snapshot.Venue), member); err != nil {
			s.logger.ErrorContext(ctx, err, logger.NewField("venue", snapshot.Venue))
			return errors.NewTracer("snapshot_index_error").Wrap(err)
		}
	}

	s.logger.InfoContext(ctx, fmt.Sprintf("Snapshot stored for venue %s", snapshot.Venue),
		logger.NewField("venue", snapshot.Venue),
		logger.NewField("action", "store snapshot"),
	)
	return nil
}

// LoadStore loads the snapshot of venue for the run id carried by ctx, or
// the latest one when ctx has none. It returns nil when nothing is stored.
func (s *Store) LoadStore(ctx context.Context, venue string) (*snapshotv1.Snapshot, error) {
	runID := util.GetRunID(ctx)
	if runID == "" {
		runID = latestRun
	}

	s.logger.InfoContext(ctx, fmt.Sprintf("Loading snapshot for venue %s", venue),
		logger.NewField("venue", venue),
		logger.NewField("run", runID),
		logger.NewField("action", "load snapshot"),
	)

	data, err := s.redisclient.Get(ctx, s.runKey(venue, runID))
	if err != nil {
		s.logger.ErrorContext(ctx, err, logger.NewField("venue", venue))
		return nil, errors.NewTracer("snapshot_load_error").Wrap(err)
	}

	if data == "" {
		s.logger.WarnContext(ctx, fmt.Sprintf("No snapshot found for venue %s", venue),
			logger.NewField("venue", venue),
			logger.NewField("run", runID),
		)
		return nil, nil
	}

	var snapshot snapshotv1.Snapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		s.logger.ErrorContext(ctx, err,
			logger.NewField("venue", venue),
			logger.NewField("action", "unmarshal snapshot"),
		)
		return nil, errors.NewTracer("snapshot_unmarshal_error").Wrap(err)
	}

	return &snapshot, nil
}

// ListRuns returns up to limit run ids of venue, latest clock first.
func (s *Store) ListRuns(ctx context.Context, venue string, limit int64) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	runs, err := s.redisclient.ZRevRange(ctx, s.indexKey(venue), 0, limit-1)
	if err != nil {
		return nil, errors.NewTracer("snapshot_list_error").Wrap(err)
	}
	return runs, nil
}
