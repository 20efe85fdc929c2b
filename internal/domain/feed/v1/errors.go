package feedv1

import (
	"github.com/muhammadchandra19/exchange-simulator/pkg/errors"
)

var (
	ErrFeedLoad        = errors.New(errors.FeedLoadError, errors.SeverityHigh, errors.CategoryDatabase, "failed to load market data")
	ErrMalformedRecord = errors.New(errors.FeedLoadError, errors.SeverityHigh, errors.CategoryValidation, "malformed market data record")
	ErrUnsorted        = errors.New(errors.FeedLoadError, errors.SeverityHigh, errors.CategoryValidation, "market data is not sorted by timestamp")
)
