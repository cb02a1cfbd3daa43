package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/guregu/null/v6"
	"github.com/sirupsen/logrus"

	c "pairs.service/api"
	ex "pairs.service/extensions"
	m "pairs.service/models"
)

// public
const (
	HostDefault = "query1.finance.yahoo.com"
)

// private
const (
	chartPath      = "/v8/finance/chart/"
	defaultTimeout = time.Second * 30

	period1  = "period1"
	period2  = "period2"
	interval = "interval"
	events   = "events"
)

type YahooClient struct {
	*c.Client
	interval c.TimeInterval
	bulk     c.BulkOptions
	logger   logrus.FieldLogger
}

func GetClient(host string, timeout time.Duration, bulk c.BulkOptions, logger logrus.FieldLogger) *YahooClient {
	if host == "" {
		host = HostDefault
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return NewClient(c.ClientFactory(host, "", timeout), bulk, logger)
}

// NewClient wraps an existing client, tests use it to inject a connection.
func NewClient(client *c.Client, bulk c.BulkOptions, logger logrus.FieldLogger) *YahooClient {
	return &YahooClient{
		Client:   client,
		interval: c.TimeIntervalDaily,
		bulk:     bulk,
		logger:   logger,
	}
}

// FetchDailyCloses requests every ticker concurrently, see api.FetchAll for the failure rules.
func (yc *YahooClient) FetchDailyCloses(ctx context.Context, tickers []string, start, end time.Time) (map[string]m.Series, error) {
	return c.FetchAll(ctx, tickers, yc.bulk, yc.logger, func(ctx context.Context, ticker string) (m.Series, error) {
		return yc.GetChart(ctx, ticker, start, end)
	})
}

// GetChart queries the close series of one symbol, both range ends inclusive.
func (yc *YahooClient) GetChart(ctx context.Context, ticker string, start, end time.Time) (m.Series, error) {
	endpoint := yc.buildRequestPath(ticker, map[string]string{
		period1:  strconv.FormatInt(ex.DateOnly(start).Unix(), 10),
		period2:  strconv.FormatInt(ex.DateOnly(end).AddDate(0, 0, 1).Unix(), 10),
		interval: yc.interval.Yahoo(),
		events:   "history",
	})

	response, err := yc.Client.Connection.Request(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if err := c.CheckStatus(response); err != nil {
		return nil, err
	}

	defer response.Body.Close()

	return parseChart(response.Body, yc.logger)
}

func (yc *YahooClient) buildRequestPath(ticker string, params map[string]string) *url.URL {
	endpoint := &url.URL{}
	endpoint.Path = chartPath + ticker

	query := endpoint.Query()
	for key, value := range params {
		query.Set(key, value)
	}
	endpoint.RawQuery = query.Encode()

	return endpoint
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Symbol               string `json:"symbol"`
		ExchangeTimezoneName string `json:"exchangeTimezoneName"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []null.Float `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

func parseChart(reader io.Reader, logger logrus.FieldLogger) (m.Series, error) {
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	var raw chartResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("error unmarshaling response: %w", err)
	}

	if raw.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s: %s", c.ErrNoData, raw.Chart.Error.Code, raw.Chart.Error.Description)
	}
	if len(raw.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: empty chart result", c.ErrNoData)
	}

	result := raw.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: no observations for %s", c.ErrNoData, result.Meta.Symbol)
	}

	closes := result.Indicators.Quote[0].Close
	if len(closes) != len(result.Timestamp) {
		return nil, fmt.Errorf("error parsing chart for %s, %d timestamps but %d closes", result.Meta.Symbol, len(result.Timestamp), len(closes))
	}

	location := getTimeZone(result.Meta.ExchangeTimezoneName, logger)

	series := make(m.Series, 0, len(closes))
	for i, ts := range result.Timestamp {
		series = append(series, m.Observation{
			Date:  ex.DateOnly(time.Unix(ts, 0).In(location)),
			Close: closes[i],
		})
	}

	return series.Normalize(), nil
}

func getTimeZone(name string, logger logrus.FieldLogger) *time.Location {
	if name == "" {
		return time.UTC
	}
	location, err := time.LoadLocation(name)
	if err != nil {
		logger.WithField("time_zone", name).Warn("time zone not recognized, defaulting to utc")
		return time.UTC
	}
	return location
}
