package provider

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"

	"github.com/ewhitfield/stockdeck-backend/internal/dto"
	"github.com/ewhitfield/stockdeck-backend/internal/errs"
)

// seriesWindow bounds how many daily bars a chart payload carries.
const seriesWindow = 10

var symbolParamPattern = regexp.MustCompile(`[?&]symbol=([^&]+)`)

type avResponse struct {
	MetaData   avMetaData            `json:"Meta Data"`
	TimeSeries map[string]avDailyBar `json:"Time Series (Daily)"`

	// In-band error signaling: Alpha Vantage answers 200 with one of these
	// fields set instead of a payload.
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
}

type avMetaData struct {
	Symbol        string `json:"2. Symbol"`
	LastRefreshed string `json:"3. Last Refreshed"`
}

type avDailyBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

type alphaVantageAdapter struct{}

func (alphaVantageAdapter) Kind() Kind { return KindAlphaVantage }

func (alphaVantageAdapter) Capabilities() []Capability {
	return []Capability{CapQuote, CapTimeSeries}
}

func (alphaVantageAdapter) ErrorCheck(raw []byte) error {
	var resp avResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return errs.NewParseError("alphavantage response is not valid JSON")
	}
	switch {
	case resp.ErrorMessage != "":
		return errs.NewProviderError(string(KindAlphaVantage), resp.ErrorMessage)
	case resp.Note != "":
		// Rate-limit notice; surfaced verbatim so the user sees the quota hint.
		return errs.NewProviderError(string(KindAlphaVantage), resp.Note)
	case resp.Information != "":
		return errs.NewProviderError(string(KindAlphaVantage), resp.Information)
	}
	return nil
}

func (alphaVantageAdapter) Identity(endpoint string) string {
	m := symbolParamPattern.FindStringSubmatch(endpoint)
	if m == nil {
		return ""
	}
	return m[1]
}

func (a alphaVantageAdapter) Parse(cap Capability, raw []byte) (any, error) {
	var resp avResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, errs.NewParseError("alphavantage response is not valid JSON")
	}
	switch cap {
	case CapQuote:
		q, err := avQuote(resp)
		if err != nil {
			return nil, err
		}
		return dto.QuoteData{Quote: q}, nil
	case CapTimeSeries:
		q, err := avQuote(resp)
		if err != nil {
			return nil, err
		}
		return dto.PriceHistoryData{Quote: &q, Series: avSeries(resp)}, nil
	}
	return nil, notSupported(KindAlphaVantage, cap)
}

// avQuote derives price and day-over-day change from the two most recent
// daily bars. The most-recent entry is resolved by sorting the series keys,
// never by binding a literal date, so the result survives date rollover.
func avQuote(resp avResponse) (dto.Quote, error) {
	dates := seriesDates(resp)
	if len(dates) == 0 {
		return dto.Quote{}, errs.NewNotSupportedError("response has no Time Series (Daily)")
	}
	latest := resp.TimeSeries[dates[0]]
	price := parseFloat(latest.Close)
	q := dto.Quote{
		Price: price,
		Open:  parseFloat(latest.Open),
		High:  parseFloat(latest.High),
		Low:   parseFloat(latest.Low),
		AsOf:  dates[0],
	}
	if len(dates) > 1 {
		prev := parseFloat(resp.TimeSeries[dates[1]].Close)
		q.PrevClose = prev
		q.Change = price - prev
		if prev != 0 {
			q.ChangePercent = q.Change / prev * 100
		}
	}
	return q, nil
}

// avSeries returns up to seriesWindow daily bars, oldest first.
func avSeries(resp avResponse) []dto.SeriesPoint {
	dates := seriesDates(resp)
	if len(dates) > seriesWindow {
		dates = dates[:seriesWindow]
	}
	points := make([]dto.SeriesPoint, 0, len(dates))
	for i := len(dates) - 1; i >= 0; i-- {
		bar := resp.TimeSeries[dates[i]]
		points = append(points, dto.SeriesPoint{
			Date:   dates[i],
			Open:   parseFloat(bar.Open),
			High:   parseFloat(bar.High),
			Low:    parseFloat(bar.Low),
			Close:  parseFloat(bar.Close),
			Volume: parseFloat(bar.Volume),
		})
	}
	return points
}

// seriesDates returns the time-series keys newest first. ISO dates sort
// lexically.
func seriesDates(resp avResponse) []string {
	dates := make([]string, 0, len(resp.TimeSeries))
	for d := range resp.TimeSeries {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
