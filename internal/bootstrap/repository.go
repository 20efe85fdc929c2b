package bootstrap

import (
	historyInfra "github.com/muhammadchandra19/exchange-simulator/internal/infrastructure/questdb/history"
	quoteInfra "github.com/muhammadchandra19/exchange-simulator/internal/infrastructure/questdb/quote"
)

// Repository holds the QuestDB repositories. Both are nil without a QuestDB client.
type Repository struct {
	QuoteRepository   *quoteInfra.Repository
	HistoryRepository *historyInfra.Repository
}

func (b *Bootstrap) registerRepository() {
	if b.QuestDB == nil {
		return
	}
	b.Repository.QuoteRepository = quoteInfra.NewRepository(b.QuestDB)
	b.Repository.HistoryRepository = historyInfra.NewRepository(b.QuestDB)
}
