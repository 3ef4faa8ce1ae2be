package catalog

import "strings"

// DefaultExchange is the MIC assumed for symbols without a venue suffix.
const DefaultExchange = "xnys"

// suffixes maps ticker suffixes to ISO 10383 market identifier codes.
var suffixes = []struct {
	suffix string
	mic    string
}{
	{".DE", "xfra"},
	{".F", "xfra"},
	{".L", "xlon"},
	{".PA", "xpar"},
	{".AS", "xams"},
	{".BR", "xbru"},
	{".MI", "xmil"},
	{".MC", "xmad"},
	{".ST", "xsto"},
	{".CO", "xcse"},
	{".HE", "xhel"},
	{".VI", "xwbo"},
	{".SW", "xswx"},
	{".TO", "xtse"},
	{".V", "xtsx"},
	{".T", "xtks"},
	{".HK", "xhkg"},
	{".AX", "xasx"},
	{".KS", "xkrx"},
	{".TW", "xtai"},
	{".SS", "xshg"},
	{".SZ", "xshe"},
}

// Exchange returns the MIC of the venue a symbol trades on.
func Exchange(symbol string) string {
	upper := strings.ToUpper(symbol)
	for _, s := range suffixes {
		if strings.HasSuffix(upper, s.suffix) {
			return s.mic
		}
	}
	return DefaultExchange
}
