package provider

import (
	"encoding/json"
	"net/url"
	"regexp"
	"sort"
	"strconv"

	"github.com/ewhitfield/stockdeck-backend/internal/dto"
	"github.com/ewhitfield/stockdeck-backend/internal/errs"
)

var nameParamPattern = regexp.MustCompile(`[?&]name=([^&]+)`)

type rsResponse struct {
	CompanyName        string              `json:"companyName"`
	TickerID           string              `json:"tickerId"`
	Industry           string              `json:"industry"`
	CurrentPrice       rsPrice             `json:"currentPrice"`
	PercentChange      flexNumber          `json:"percentChange"`
	YearHigh           flexNumber          `json:"yearHigh"`
	YearLow            flexNumber          `json:"yearLow"`
	StockTechnicalData []rsTechnicalPoint  `json:"stockTechnicalData"`
	PeerCompanyList    []rsPeer            `json:"peerCompanyList"`
	Financials         []rsFinancialPeriod `json:"financials"`
	Shareholding       []rsShareholding    `json:"shareholding"`
	RiskMeter          *rsRiskMeter        `json:"riskMeter"`
	RecentNews         []rsNewsItem        `json:"recentNews"`
	CompanyProfile     *rsCompanyProfile   `json:"companyProfile"`

	Error string `json:"error"`
}

// rsPrice quotes the two exchanges; the API sends the numbers as strings.
type rsPrice struct {
	BSE flexNumber `json:"BSE"`
	NSE flexNumber `json:"NSE"`
}

type rsTechnicalPoint struct {
	Days     int        `json:"days"`
	BSEPrice flexNumber `json:"bsePrice"`
	NSEPrice flexNumber `json:"nsePrice"`
}

type rsPeer struct {
	CompanyName               string     `json:"companyName"`
	TickerID                  string     `json:"tickerId"`
	Price                     flexNumber `json:"price"`
	PercentChange             flexNumber `json:"percentChange"`
	MarketCap                 flexNumber `json:"marketCap"`
	PriceToEarningsValueRatio flexNumber `json:"priceToEarningsValueRatio"`
	PriceToBookValueRatio     flexNumber `json:"priceToBookValueRatio"`
	OverallRating             string     `json:"overallRating"`
}

// rsFinancialPeriod holds one reported period; line items arrive as
// key/value lists grouped by statement (INC, BAL, CAS).
type rsFinancialPeriod struct {
	StockFinancialMap map[string][]rsFinancialItem `json:"stockFinancialMap"`
}

type rsFinancialItem struct {
	Key   string     `json:"key"`
	Value flexNumber `json:"value"`
}

type rsShareholding struct {
	CategoryName string     `json:"categoryName"`
	Percentage   flexNumber `json:"percentage"`
}

type rsRiskMeter struct {
	CategoryName string     `json:"categoryName"`
	StdDev       flexNumber `json:"stdDev"`
}

type rsNewsItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Source      string `json:"source"`
	Date        string `json:"date"`
	URL         string `json:"url"`
}

type rsCompanyProfile struct {
	CompanyDescription string     `json:"companyDescription"`
	ExchangeCodeBse    string     `json:"exchangeCodeBse"`
	ExchangeCodeNse    string     `json:"exchangeCodeNse"`
	Officers           rsOfficers `json:"officers"`
}

type rsOfficers struct {
	Officer []rsOfficer `json:"officer"`
}

type rsOfficer struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Title     rsText `json:"title"`
}

// rsText tolerates the API sending either a bare string or {"Value": "..."}.
type rsText struct {
	Value string `json:"Value"`
}

func (t *rsText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.Value = s
		return nil
	}
	type alias rsText
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	t.Value = a.Value
	return nil
}

type regionalStockAdapter struct{}

func (regionalStockAdapter) Kind() Kind { return KindRegionalStock }

func (regionalStockAdapter) Capabilities() []Capability {
	return []Capability{
		CapQuote, CapTechnical, CapPeers, CapFinancials,
		CapOwnership, CapNews, CapRisk, CapProfile,
	}
}

func (regionalStockAdapter) ErrorCheck(raw []byte) error {
	var resp rsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return errs.NewParseError("regional stock response is not valid JSON")
	}
	if resp.Error != "" {
		return errs.NewProviderError(string(KindRegionalStock), resp.Error)
	}
	return nil
}

// Identity extracts the company name from the endpoint's name= parameter.
func (regionalStockAdapter) Identity(endpoint string) string {
	m := nameParamPattern.FindStringSubmatch(endpoint)
	if m == nil {
		return ""
	}
	name, err := url.QueryUnescape(m[1])
	if err != nil {
		return m[1]
	}
	return name
}

func (a regionalStockAdapter) Parse(cap Capability, raw []byte) (any, error) {
	var resp rsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, errs.NewParseError("regional stock response is not valid JSON")
	}
	switch cap {
	case CapQuote:
		return rsQuote(resp), nil
	case CapTechnical:
		return rsTechnical(resp), nil
	case CapPeers:
		return rsPeers(resp), nil
	case CapFinancials:
		return rsFinancials(resp)
	case CapOwnership:
		return rsOwnership(resp)
	case CapNews:
		return rsNews(resp), nil
	case CapRisk:
		return rsRisk(resp)
	case CapProfile:
		return rsProfile(resp)
	}
	return nil, notSupported(KindRegionalStock, cap)
}

func rsQuote(resp rsResponse) dto.QuoteData {
	price := num(resp.CurrentPrice.BSE)
	pct := num(resp.PercentChange)
	q := dto.Quote{
		Price:          price,
		ChangePercent:  pct,
		SecondaryPrice: num(resp.CurrentPrice.NSE),
		YearHigh:       num(resp.YearHigh),
		YearLow:        num(resp.YearLow),
	}
	if pct != 0 && (100+pct) != 0 {
		q.Change = price * pct / (100 + pct)
	}
	return dto.QuoteData{Quote: q}
}

func rsTechnical(resp rsResponse) dto.TechnicalData {
	points := make([]dto.TechnicalPoint, 0, len(resp.StockTechnicalData))
	for _, p := range resp.StockTechnicalData {
		points = append(points, dto.TechnicalPoint{
			Days:     p.Days,
			BSEPrice: num(p.BSEPrice),
			NSEPrice: num(p.NSEPrice),
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Days < points[j].Days })
	return dto.TechnicalData{Points: points}
}

func rsPeers(resp rsResponse) dto.PeersData {
	peers := make([]dto.Peer, 0, len(resp.PeerCompanyList))
	for _, p := range resp.PeerCompanyList {
		peers = append(peers, dto.Peer{
			Name:          p.CompanyName,
			Ticker:        p.TickerID,
			Price:         num(p.Price),
			ChangePercent: num(p.PercentChange),
			MarketCap:     num(p.MarketCap),
			PERatio:       num(p.PriceToEarningsValueRatio),
			PBRatio:       num(p.PriceToBookValueRatio),
			Rating:        p.OverallRating,
		})
	}
	return dto.PeersData{Peers: peers}
}

// rsFinancials reads headline line items from the most recent reported
// period. Item keys follow the provider's statement vocabulary.
func rsFinancials(resp rsResponse) (any, error) {
	if len(resp.Financials) == 0 {
		return nil, errs.NewNotSupportedError("response has no financials")
	}
	latest := resp.Financials[0].StockFinancialMap
	inc := latest["INC"]
	bal := latest["BAL"]
	cas := latest["CAS"]
	return dto.FinancialsData{
		Revenue:           lineItem(inc, "TotalRevenue"),
		NetIncome:         lineItem(inc, "NetIncome"),
		EPS:               lineItem(inc, "DilutedEPSExcludingExtraOrdItems"),
		GrossProfit:       lineItem(inc, "GrossProfit"),
		OperatingIncome:   lineItem(inc, "OperatingIncome"),
		TotalAssets:       lineItem(bal, "TotalAssets"),
		TotalDebt:         lineItem(bal, "TotalDebt"),
		TotalEquity:       lineItem(bal, "TotalEquity"),
		CashFlowOperating: lineItem(cas, "CashfromOperatingActivities"),
		CashFlowInvesting: lineItem(cas, "CashfromInvestingActivities"),
		CashFlowFinancing: lineItem(cas, "CashfromFinancingActivities"),
	}, nil
}

func lineItem(items []rsFinancialItem, key string) float64 {
	for _, it := range items {
		if it.Key == key {
			return num(it.Value)
		}
	}
	return 0
}

func rsOwnership(resp rsResponse) (any, error) {
	if len(resp.Shareholding) == 0 {
		return nil, errs.NewNotSupportedError("response has no shareholding data")
	}
	slices := make([]dto.OwnershipSlice, 0, len(resp.Shareholding))
	for _, s := range resp.Shareholding {
		if s.CategoryName == "" {
			continue
		}
		slices = append(slices, dto.OwnershipSlice{
			Name:    s.CategoryName,
			Percent: num(s.Percentage),
		})
	}
	if len(slices) == 0 {
		return nil, errs.NewNotSupportedError("response has no shareholding data")
	}
	return dto.OwnershipData{Slices: slices}, nil
}

func rsNews(resp rsResponse) dto.NewsData {
	items := make([]dto.NewsItem, 0, len(resp.RecentNews))
	for _, n := range resp.RecentNews {
		items = append(items, dto.NewsItem{
			Title:       n.Title,
			Description: n.Description,
			Source:      n.Source,
			Date:        n.Date,
			URL:         n.URL,
		})
	}
	return dto.NewsData{Items: items}
}

func rsRisk(resp rsResponse) (any, error) {
	if resp.RiskMeter == nil {
		return nil, errs.NewNotSupportedError("response has no risk meter")
	}
	return dto.RiskData{
		Category: resp.RiskMeter.CategoryName,
		StdDev:   num(resp.RiskMeter.StdDev),
	}, nil
}

func rsProfile(resp rsResponse) (any, error) {
	if resp.CompanyProfile == nil {
		return nil, errs.NewNotSupportedError("response has no company profile")
	}
	p := dto.ProfileData{
		Description: resp.CompanyProfile.CompanyDescription,
		BSECode:     resp.CompanyProfile.ExchangeCodeBse,
		NSECode:     resp.CompanyProfile.ExchangeCodeNse,
		Industry:    resp.Industry,
	}
	for _, o := range resp.CompanyProfile.Officers.Officer {
		name := o.FirstName + " " + o.LastName
		if t := o.Title.Value; t != "" {
			name += " (" + t + ")"
		}
		p.Officers = append(p.Officers, name)
	}
	return p, nil
}

// flexNumber tolerates the provider's habit of sending numbers as JSON
// numbers, numeric strings, or junk like "N/A"; anything unparsable reads
// as zero, matching the display layer's expectations.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = flexNumber(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			*n = flexNumber(f)
		}
		return nil
	}
	*n = 0
	return nil
}

func num(n flexNumber) float64 { return float64(n) }
