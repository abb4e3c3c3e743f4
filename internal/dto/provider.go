package dto

// Unavailable is the sentinel rendered for a bound field whose path does not
// resolve in the fetched document, and for unsupported capabilities.
const Unavailable = "--"

// Quote is the normalized price/change view every quote-capable provider
// maps onto.
type Quote struct {
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Open          float64 `json:"open,omitempty"`
	High          float64 `json:"high,omitempty"`
	Low           float64 `json:"low,omitempty"`
	PrevClose     float64 `json:"prevClose,omitempty"`
	// SecondaryPrice carries the second exchange's price for providers that
	// quote on two exchanges (BSE/NSE).
	SecondaryPrice float64 `json:"secondaryPrice,omitempty"`
	YearHigh       float64 `json:"yearHigh,omitempty"`
	YearLow        float64 `json:"yearLow,omitempty"`
	AsOf           string  `json:"asOf,omitempty"`
}

type SeriesPoint struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// PriceHistoryData is the payload for chart-style provider widgets: the
// latest quote plus a bounded window of daily bars, oldest first.
type PriceHistoryData struct {
	Quote  *Quote        `json:"quote,omitempty"`
	Series []SeriesPoint `json:"series"`
}

type QuoteData struct {
	Quote Quote `json:"quote"`
}

// TechnicalPoint is a moving-average price over a trailing day window.
type TechnicalPoint struct {
	Days     int     `json:"days"`
	BSEPrice float64 `json:"bsePrice"`
	NSEPrice float64 `json:"nsePrice"`
}

type TechnicalData struct {
	Points []TechnicalPoint `json:"points"`
}

type Peer struct {
	Name          string  `json:"name"`
	Ticker        string  `json:"ticker"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"changePercent"`
	MarketCap     float64 `json:"marketCap"`
	PERatio       float64 `json:"peRatio"`
	PBRatio       float64 `json:"pbRatio"`
	Rating        string  `json:"rating"`
}

type PeersData struct {
	Peers []Peer `json:"peers"`
}

// FinancialsData holds headline line items from the most recent reported
// period's income statement, balance sheet and cash flow statement.
type FinancialsData struct {
	Revenue           float64 `json:"revenue"`
	NetIncome         float64 `json:"netIncome"`
	EPS               float64 `json:"eps"`
	GrossProfit       float64 `json:"grossProfit"`
	OperatingIncome   float64 `json:"operatingIncome"`
	TotalAssets       float64 `json:"totalAssets"`
	TotalDebt         float64 `json:"totalDebt"`
	TotalEquity       float64 `json:"totalEquity"`
	CashFlowOperating float64 `json:"cashFlowOperating"`
	CashFlowInvesting float64 `json:"cashFlowInvesting"`
	CashFlowFinancing float64 `json:"cashFlowFinancing"`
}

type OwnershipSlice struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
}

type OwnershipData struct {
	Slices []OwnershipSlice `json:"slices"`
}

type NewsItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Source      string `json:"source"`
	Date        string `json:"date"`
	URL         string `json:"url,omitempty"`
}

type NewsData struct {
	Items []NewsItem `json:"items"`
}

type RiskData struct {
	Category string  `json:"category"`
	StdDev   float64 `json:"stdDev"`
}

type ProfileData struct {
	Description string   `json:"description"`
	BSECode     string   `json:"bseCode,omitempty"`
	NSECode     string   `json:"nseCode,omitempty"`
	Industry    string   `json:"industry,omitempty"`
	Officers    []string `json:"officers,omitempty"`
}

// GenericData is the payload for generic mapped widgets: display strings
// resolved from the user's path bindings, with Unavailable standing in for
// paths absent from the fetched document.
type GenericData struct {
	Primary   string   `json:"primary"`
	Secondary string   `json:"secondary,omitempty"`
	Series    []string `json:"series,omitempty"`
}
