package model

import "sort"

// Currency is a currency code exactly as the provider reports it (e.g. "USD").
// Comparison is case-sensitive.
type Currency string

func (c Currency) String() string {
	return string(c)
}

// CurrencyDirectory maps every currency code known to the provider to its
// display name. Once loaded it is never mutated.
type CurrencyDirectory map[Currency]string

func (d CurrencyDirectory) Contains(c Currency) bool {
	if len(d) == 0 {
		return false
	}
	_, ok := d[c]
	return ok
}

// Codes returns the directory's currency codes in sorted order.
func (d CurrencyDirectory) Codes() []Currency {
	codes := make([]Currency, 0, len(d))
	for c := range d {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}
