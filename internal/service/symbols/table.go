package symbols

// Static name→symbol tables, partitioned by asset class. Keys are lowercase.
// Stocks map to market tickers, crypto maps to CoinGecko asset ids.

var stockNames = map[string]string{
	"apple":               "AAPL",
	"apple inc.":          "AAPL",
	"microsoft":           "MSFT",
	"microsoft corp.":     "MSFT",
	"alphabet":            "GOOGL",
	"google":              "GOOGL",
	"amazon":              "AMZN",
	"amazon.com":          "AMZN",
	"tesla":               "TSLA",
	"meta":                "META",
	"meta platforms":      "META",
	"facebook":            "META",
	"nvidia":              "NVDA",
	"netflix":             "NFLX",
	"berkshire hathaway":  "BRK-B",
	"jpmorgan chase":      "JPM",
	"johnson & johnson":   "JNJ",
	"visa":                "V",
	"procter & gamble":    "PG",
	"unitedhealth group":  "UNH",
	"mastercard":          "MA",
	"home depot":          "HD",
	"coca-cola":           "KO",
	"pfizer":              "PFE",
	"walt disney":         "DIS",
	"disney":              "DIS",
	"intel":               "INTC",
	"salesforce":          "CRM",
	"adobe":               "ADBE",
	"cisco":               "CSCO",
	"cisco systems":       "CSCO",
	"verizon":             "VZ",
	"walmart":             "WMT",
	"s&p 500 etf":         "SPY",
	"qqq nasdaq etf":      "QQQ",
	"spdr s&p 500 etf":    "SPY",
}

var cryptoNames = map[string]string{
	"bitcoin":          "bitcoin",
	"ethereum":         "ethereum",
	"binance coin":     "binancecoin",
	"xrp":              "ripple",
	"ripple":           "ripple",
	"solana":           "solana",
	"cardano":          "cardano",
	"dogecoin":         "dogecoin",
	"avalanche":        "avalanche-2",
	"polkadot":         "polkadot",
	"polygon":          "matic-network",
	"chainlink":        "chainlink",
	"litecoin":         "litecoin",
	"bitcoin cash":     "bitcoin-cash",
	"uniswap":          "uniswap",
	"stellar":          "stellar",
	"vechain":          "vechain",
	"filecoin":         "filecoin",
	"tron":             "tron",
	"ethereum classic": "ethereum-classic",
	"monero":           "monero",
}

// Crypto tickers map to CoinGecko ids so "BTC" style input resolves too.
var cryptoTickers = map[string]string{
	"btc":   "bitcoin",
	"eth":   "ethereum",
	"bnb":   "binancecoin",
	"xrp":   "ripple",
	"sol":   "solana",
	"ada":   "cardano",
	"doge":  "dogecoin",
	"avax":  "avalanche-2",
	"dot":   "polkadot",
	"matic": "matic-network",
	"link":  "chainlink",
	"ltc":   "litecoin",
	"bch":   "bitcoin-cash",
	"uni":   "uniswap",
	"xlm":   "stellar",
	"vet":   "vechain",
	"fil":   "filecoin",
	"trx":   "tron",
	"etc":   "ethereum-classic",
	"xmr":   "monero",
}
