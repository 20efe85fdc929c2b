package historyv1

import (
	"github.com/muhammadchandra19/exchange-simulator/pkg/errors"
)

var ErrHistoryStore = errors.New(errors.HistoryStoreError, errors.SeverityHigh, errors.CategoryDatabase, "failed to store run history")
