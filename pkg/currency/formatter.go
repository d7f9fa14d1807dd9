package currency

import (
	"fmt"
	"math"
	"strings"
)

type style struct {
	prefix string
	sep    string
}

var styles = map[string]style{
	"INR": {prefix: "₹", sep: ","},
	"IDR": {prefix: "IDR ", sep: "."},
	"USD": {prefix: "$", sep: ","},
	"EUR": {prefix: "€", sep: "."},
	"GBP": {prefix: "£", sep: ","},
}

// Format renders a whole-unit price for code, e.g. "₹12,345". Unknown codes
// are written as a prefix: "AED 1,200".
func Format(amount float64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	st, ok := styles[code]
	if !ok {
		st = style{prefix: code + " ", sep: ","}
	}

	rounded := math.Round(amount)

	negative := rounded < 0
	if negative {
		rounded = -rounded
	}

	intStr := fmt.Sprintf("%.0f", rounded)
	result := st.prefix + addThousandsSeparator(intStr, st.sep)
	if negative {
		result = "-" + result
	}

	return result
}

func addThousandsSeparator(s string, sep string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	numSeps := (n - 1) / 3
	result := make([]byte, n+numSeps)

	j := len(result) - 1
	for i := n - 1; i >= 0; i-- {
		result[j] = s[i]
		j--

		pos := n - i
		if pos%3 == 0 && i > 0 {
			result[j] = sep[0]
			j--
		}
	}

	return string(result)
}
