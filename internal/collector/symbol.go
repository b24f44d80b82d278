package collector

import (
	"strings"
	"unicode"

	"StockWatch/internal/model"
)

// indexCodes are composite indices quoted under the Shanghai prefix even
// though their codes look like Shenzhen listings.
var indexCodes = map[string]bool{
	"000001": true, // SSE Composite
	"000016": true, // SSE 50
	"000300": true, // CSI 300
}

// ResolveSymbol maps a raw ticker to its exchange-qualified vendor symbol.
// It never fails; unmatched codes route to Shenzhen.
func ResolveSymbol(ticker string) model.VendorSymbol {
	digits := normalizeTicker(ticker)
	if len(digits) == 5 {
		return model.VendorSymbol{Prefix: model.ExchangeHK, Code: digits}
	}

	code := padCode(digits, 6)
	switch {
	case indexCodes[code]:
		return model.VendorSymbol{Prefix: model.ExchangeSH, Code: code}
	case strings.HasPrefix(code, "399"):
		return model.VendorSymbol{Prefix: model.ExchangeSZ, Code: code}
	case strings.HasPrefix(code, "68"): // STAR market
		return model.VendorSymbol{Prefix: model.ExchangeSH, Code: code}
	case strings.HasPrefix(code, "6"):
		return model.VendorSymbol{Prefix: model.ExchangeSH, Code: code}
	case strings.HasPrefix(code, "0"), strings.HasPrefix(code, "3"):
		return model.VendorSymbol{Prefix: model.ExchangeSZ, Code: code}
	default:
		return model.VendorSymbol{Prefix: model.ExchangeSZ, Code: code}
	}
}

func normalizeTicker(ticker string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			return r
		}
		return -1
	}, ticker)
}

func padCode(code string, width int) string {
	if len(code) >= width {
		return code
	}
	return strings.Repeat("0", width-len(code)) + code
}

// ParseSymbol accepts either an exchange-qualified symbol ("sz000001") or a
// bare ticker, which is routed through ResolveSymbol.
func ParseSymbol(s string) model.VendorSymbol {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, p := range []string{model.ExchangeHK, model.ExchangeSH, model.ExchangeSZ} {
		if code, ok := strings.CutPrefix(s, p); ok && code != "" && normalizeTicker(code) == code {
			return model.VendorSymbol{Prefix: p, Code: code}
		}
	}
	return ResolveSymbol(s)
}
