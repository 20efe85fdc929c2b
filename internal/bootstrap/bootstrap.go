// Package bootstrap wires the simulator's infrastructure from configuration.
package bootstrap

import (
	"context"

	"github.com/muhammadchandra19/exchange-simulator/pkg/config"
	"github.com/muhammadchandra19/exchange-simulator/pkg/errors"
	"github.com/muhammadchandra19/exchange-simulator/pkg/logger"
	"github.com/muhammadchandra19/exchange-simulator/pkg/questdb"
	"github.com/muhammadchandra19/exchange-simulator/pkg/redis"
)

// Bootstrap holds the clients, repositories and usecases of one simulator process.
type Bootstrap struct {
	Config     *config.Config
	Logger     *logger.Logger
	Repository Repository
	Usecase    Usecase

	QuestDB questdb.QuestDBClient
	Redis   redis.Client
}

// Init connects only what cfg asks for: QuestDB for a questdb feed or the
// history export, Redis for the snapshot export and Kafka for trade publishing.
func Init(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Bootstrap, error) {
	b := &Bootstrap{
		Config: cfg,
		Logger: log,
	}

	if err := b.connect(ctx); err != nil {
		b.Close(ctx)
		return nil, err
	}

	b.registerRepository()
	b.registerUsecase()
	return b, nil
}

func (b *Bootstrap) connect(ctx context.Context) error {
	if b.Config.Feed.Source == config.FeedSourceQuestDB || b.Config.App.ExportHistory {
		client, err := questdb.NewClient(ctx, b.Config.QuestDB)
		if err != nil {
			return errors.NewTracer("connect questdb").Wrap(err)
		}
		b.QuestDB = client
	}

	if b.Config.App.ExportSnapshot {
		client := redis.NewClient(b.Logger, &b.Config.Redis)
		if err := client.Connect(ctx); err != nil {
			return errors.NewTracer("connect redis").Wrap(err)
		}
		b.Redis = client
	}
	return nil
}

// Close releases every connected client.
func (b *Bootstrap) Close(ctx context.Context) {
	if b.Usecase.Publisher != nil {
		if err := b.Usecase.Publisher.Close(); err != nil {
			b.Logger.Error(err)
		}
	}
	if b.Redis != nil {
		if err := b.Redis.Disconnect(ctx); err != nil {
			b.Logger.Error(err)
		}
	}
	if b.QuestDB != nil {
		b.QuestDB.Close()
	}
}
