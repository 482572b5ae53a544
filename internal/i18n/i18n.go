// Package i18n provides the static translation tables of the client and
// locale-aware number formatting.
package i18n

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

type Lang string

const (
	ZH Lang = "zh"
	EN Lang = "en"
)

// Default is the language used when no preference is stored and the
// table every lookup falls back to.
const Default = ZH

// ParseLang maps a BCP 47 tag such as "zh-TW" or "en_US" to a supported
// language.
func ParseLang(s string) (Lang, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "_", "-"))
	if s == "" {
		return Default, false
	}
	tag, err := language.Parse(s)
	if err != nil {
		return Default, false
	}
	base, _ := tag.Base()
	switch base.String() {
	case "zh":
		return ZH, true
	case "en":
		return EN, true
	}
	return Default, false
}

// Toggle flips between the two supported languages.
func (l Lang) Toggle() Lang {
	if l == ZH {
		return EN
	}
	return ZH
}

// Tag returns the locale used for number formatting.
func (l Lang) Tag() language.Tag {
	if l == EN {
		return language.English
	}
	return language.TraditionalChinese
}

// T looks up key in the table for l, then in the default table, and finally
// returns the key itself.
func T(l Lang, key Key) string {
	if s, ok := tables[l][key]; ok {
		return s
	}
	if s, ok := tables[Default][key]; ok {
		return s
	}
	return string(key)
}

// Tf is T followed by fmt.Sprintf.
func Tf(l Lang, key Key, args ...any) string {
	return fmt.Sprintf(T(l, key), args...)
}

// FormatNumber renders d with the grouping separators of l and at most
// three fraction digits.
func FormatNumber(l Lang, d decimal.Decimal) string {
	f, _ := d.Float64()
	p := message.NewPrinter(l.Tag())
	return p.Sprint(number.Decimal(f, number.MaxFractionDigits(3)))
}

// MonthLabel returns the short month heading used above the transaction
// list.
func MonthLabel(l Lang, m time.Month) string {
	if l == ZH {
		return fmt.Sprintf("%d月", int(m))
	}
	return m.String()
}
