package alpha_vantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"
	"github.com/sirupsen/logrus"

	c "pairs.service/api"
	ex "pairs.service/extensions"
	m "pairs.service/models"
)

// public
const (
	HostDefault = "www.alphavantage.co"
)

// private
const (
	// default query parameters
	defaultOutputSize = "full"
	defaultDataType   = "json"
	defaultTimeout    = time.Second * 30

	// api request elements
	query      = "query"
	symbol     = "symbol"
	function   = "function"
	fromSymbol = "from_symbol"
	toSymbol   = "to_symbol"

	// response elements
	metaDataKey     = "Meta Data"
	errorMessageKey = "Error Message"
	noteKey         = "Note"
	informationKey  = "Information"
	closeSuffix     = ". close"
)

var timeSeriesDateFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
}

type AlphaVantageClient struct {
	*c.Client
	bulk   c.BulkOptions
	logger logrus.FieldLogger
}

func GetClient(host, apiKey string, timeout time.Duration, bulk c.BulkOptions, logger logrus.FieldLogger) *AlphaVantageClient {
	if host == "" {
		host = HostDefault
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return NewClient(c.ClientFactory(host, apiKey, timeout), bulk, logger)
}

func NewClient(client *c.Client, bulk c.BulkOptions, logger logrus.FieldLogger) *AlphaVantageClient {
	return &AlphaVantageClient{
		Client: client,
		bulk:   bulk,
		logger: logger,
	}
}

// FetchDailyCloses requests every ticker concurrently, currency pairs go through FX_DAILY.
func (avc *AlphaVantageClient) FetchDailyCloses(ctx context.Context, tickers []string, start, end time.Time) (map[string]m.Series, error) {
	return c.FetchAll(ctx, tickers, avc.bulk, avc.logger, func(ctx context.Context, ticker string) (m.Series, error) {
		return avc.GetDailyCloses(ctx, ticker, start, end)
	})
}

// GetDailyCloses returns the closes of one ticker between start and end inclusive.
// https://www.alphavantage.co/documentation/#daily
func (avc *AlphaVantageClient) GetDailyCloses(ctx context.Context, ticker string, start, end time.Time) (m.Series, error) {
	if avc == nil {
		panic("alpha vantage client has not been set.")
	}

	series, params := timeSeriesFor(ticker)
	params[function] = series.Function()

	endpoint := avc.buildRequestPath(params)

	response, err := avc.Client.Connection.Request(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if err := c.CheckStatus(response); err != nil {
		return nil, err
	}

	defer response.Body.Close()

	raw, err := parseRawJson(response.Body)
	if err != nil {
		return nil, err
	}

	if err := parseApiError(raw); err != nil {
		return nil, fmt.Errorf("error querying %s: %w", ticker, err)
	}

	timeZone, err := parseMetaData(raw, avc.logger)
	if err != nil {
		return nil, err
	}

	observations, err := parseTimeSeriesDataResult(raw, series.TimeSeriesKey(), timeZone)
	if err != nil {
		return nil, err
	}

	from, to := ex.DateOnly(start), ex.DateOnly(end)
	inRange := func(o m.Observation) bool {
		return !o.Date.Before(from) && !o.Date.After(to)
	}

	return m.Series(ex.FilterMultiple(observations, inRange)).Normalize(), nil
}

func (avc *AlphaVantageClient) buildRequestPath(params map[string]string) *url.URL {
	endpoint := &url.URL{}
	endpoint.Path = query

	// base parameters
	query := endpoint.Query()
	query.Set("apikey", avc.Client.ApiKey)
	query.Set("datatype", defaultDataType)
	query.Set("outputsize", defaultOutputSize)

	// additional parameters
	for key, value := range params {
		query.Set(key, value)
	}

	endpoint.RawQuery = query.Encode()

	return endpoint
}

func parseRawJson(reader io.Reader) (raw map[string]json.RawMessage, err error) {
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	// converting to a <string, raw message> map
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("error unmarshaling response: %w", err)
	}

	return
}

// parseApiError maps an unknown symbol to ErrNoData. Throttling notes are
// returned as plain errors so a fully throttled run counts as an outage.
func parseApiError(raw map[string]json.RawMessage) error {
	if msg, ok := raw[errorMessageKey]; ok {
		return fmt.Errorf("%w: %s", c.ErrNoData, apiMessage(msg))
	}
	for _, key := range []string{noteKey, informationKey} {
		if msg, ok := raw[key]; ok {
			return fmt.Errorf("provider refused request: %s", apiMessage(msg))
		}
	}
	return nil
}

// apiMessage decodes a provider message, falling back to the raw json.
func apiMessage(msg json.RawMessage) string {
	var message string
	if err := json.Unmarshal(msg, &message); err != nil {
		return string(msg)
	}
	return message
}

func parseMetaData(raw map[string]json.RawMessage, logger logrus.FieldLogger) (*time.Location, error) {
	var metadataElements map[string]string
	if err := json.Unmarshal(raw[metaDataKey], &metadataElements); err != nil {
		return nil, fmt.Errorf("error unmarshaling meta data: %w", err)
	}

	metaDataKeys := slices.Collect(maps.Keys(metadataElements))

	// parse time zone
	tzf := func(s string) bool { return strings.HasSuffix(s, ". Time Zone") }
	timeZoneKey, err := ex.FilterSingle(metaDataKeys, tzf)
	if err != nil {
		return nil, fmt.Errorf("error extracting time zone for meta data")
	}

	return getTimeZone(metadataElements[timeZoneKey], logger)
}

func parseTimeSeriesDataResult(raw map[string]json.RawMessage, key string, location *time.Location) (m.Series, error) {
	element, ok := raw[key]
	if !ok {
		return nil, fmt.Errorf("%w: response has no %q element", c.ErrNoData, key)
	}

	var timeSeriesElements map[string]map[string]string
	if err := json.Unmarshal(element, &timeSeriesElements); err != nil {
		return nil, fmt.Errorf("error unmarshaling time series: %w", err)
	}

	closeKey := ""
	cf := func(s string) bool { return strings.HasSuffix(strings.ToLower(s), closeSuffix) }

	series := make(m.Series, 0, len(timeSeriesElements))
	for timeSeriesKey, timeSeriesValue := range timeSeriesElements {
		if closeKey == "" {
			ck, err := ex.FilterSingle(slices.Collect(maps.Keys(timeSeriesValue)), cf)
			if err != nil {
				return nil, fmt.Errorf("error extracting close key for time series: %w", err)
			}
			closeKey = ck
		}

		timestamp, err := parseDate(timeSeriesKey, location)
		if err != nil {
			return nil, fmt.Errorf("error converting TIMESTAMP from string to time.Time: %w", err)
		}

		series = append(series, m.Observation{
			Date:  ex.DateOnly(timestamp),
			Close: parseFloat(timeSeriesValue[closeKey]),
		})
	}

	return series, nil
}

func getTimeZone(location string, logger logrus.FieldLogger) (*time.Location, error) {
	var loc string
	switch strings.ToUpper(location) {
	case "US/EASTERN":
		loc = "America/New_York"
	case "UTC", "":
		return time.UTC, nil
	default:
		logger.WithField("time_zone", location).Debug("default time zone hit, not recognized")
		return time.UTC, nil
	}

	res, err := time.LoadLocation(loc)
	if err != nil {
		return nil, fmt.Errorf("error parsing time zone %s in time.LoadLocation", loc)
	}

	return res, nil
}

func parseDate(dateString string, location *time.Location) (time.Time, error) {
	for _, format := range timeSeriesDateFormats {
		t, err := time.ParseInLocation(format, dateString, location)
		if err != nil {
			continue
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("error converting date %s to time.Time", dateString)
}

func parseFloat(val string) null.Float {
	if val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return null.FloatFrom(f)
		}
	}
	return null.Float{}
}
