package bootstrap

import (
	feedv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/feed/v1"
	historyv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/history/v1"
	matchpublisherv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/match-publisher/v1"
	snapshotv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/snapshot/v1"
	"github.com/muhammadchandra19/exchange-simulator/internal/usecase/feed"
	matchpublisher "github.com/muhammadchandra19/exchange-simulator/internal/usecase/match-publisher"
	"github.com/muhammadchandra19/exchange-simulator/internal/usecase/snapshot"
	"github.com/muhammadchandra19/exchange-simulator/pkg/config"
)

// Usecase holds the collaborators of a run. Exports that are switched off
// are left nil.
type Usecase struct {
	Feed      feedv1.Source
	History   historyv1.Repository
	Snapshots snapshotv1.Store
	Publisher matchpublisherv1.MatchPublisher
}

func (b *Bootstrap) registerUsecase() {
	if b.Config.Feed.Source == config.FeedSourceQuestDB {
		b.Usecase.Feed = b.Repository.QuoteRepository
	} else {
		b.Usecase.Feed = feed.NewCSVSource(b.Config.Feed.QuotesPath, b.Config.Feed.TradesPath)
	}

	if b.Config.App.ExportHistory {
		b.Usecase.History = b.Repository.HistoryRepository
	}
	if b.Redis != nil {
		b.Usecase.Snapshots = snapshot.NewSnapshotStore(b.Redis, b.Logger)
	}
	if b.Config.App.PublishTrades {
		b.Usecase.Publisher = matchpublisher.NewPublisher(b.Config.Kafka, b.Logger)
	}
}
