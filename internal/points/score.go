package points

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	wholeDollar     = decimal.NewFromInt(1)
	quarterDollar   = decimal.RequireFromString("0.25")
	descriptionRate = decimal.RequireFromString("0.2")
)

// RuleResult is the number of points a single rule awarded
type RuleResult struct {
	Rule   string `json:"rule"`
	Points int    `json:"points"`
}

type rule struct {
	name  string
	apply func(r *Receipt) int
}

var rules = []rule{
	{"retailer_name", retailerPoints},
	{"round_dollar_total", roundDollarPoints},
	{"quarter_multiple_total", quarterMultiplePoints},
	{"item_pairs", itemPairPoints},
	{"description_length", descriptionPoints},
	{"odd_purchase_day", oddDayPoints},
	{"afternoon_purchase", afternoonPoints},
}

// Score returns the total points awarded for a receipt. The receipt must
// have come from a Validator, whose amount length and item count limits
// keep every rule and the total well inside int64.
func Score(r *Receipt) int {
	total := 0
	for _, rl := range rules {
		total += rl.apply(r)
	}
	return total
}

// Breakdown returns the points awarded by each rule, in rule order.
// The sum of the results equals Score.
func Breakdown(r *Receipt) []RuleResult {
	results := make([]RuleResult, 0, len(rules))
	for _, rl := range rules {
		results = append(results, RuleResult{Rule: rl.name, Points: rl.apply(r)})
	}
	return results
}

// retailerPoints awards one point per Unicode letter or number
func retailerPoints(r *Receipt) int {
	n := 0
	for _, c := range r.Retailer {
		if unicode.IsLetter(c) || unicode.IsNumber(c) {
			n++
		}
	}
	return n
}

func roundDollarPoints(r *Receipt) int {
	if amount(r.Total).Mod(wholeDollar).IsZero() {
		return 50
	}
	return 0
}

func quarterMultiplePoints(r *Receipt) int {
	if amount(r.Total).Mod(quarterDollar).IsZero() {
		return 25
	}
	return 0
}

func itemPairPoints(r *Receipt) int {
	return 5 * (len(r.Items) / 2)
}

// descriptionPoints awards ceil(price * 0.2) for every item whose trimmed
// description length is a multiple of three
func descriptionPoints(r *Receipt) int {
	n := 0
	for _, item := range r.Items {
		length := len([]rune(strings.TrimSpace(item.ShortDescription)))
		if length%3 != 0 {
			continue
		}
		n += int(amount(item.Price).Mul(descriptionRate).Ceil().IntPart())
	}
	return n
}

func oddDayPoints(r *Receipt) int {
	day, err := strconv.Atoi(r.PurchaseDate[strings.LastIndex(r.PurchaseDate, "-")+1:])
	if err == nil && day%2 == 1 {
		return 6
	}
	return 0
}

func afternoonPoints(r *Receipt) int {
	hh, _, _ := strings.Cut(r.PurchaseTime, ":")
	hour, err := strconv.Atoi(hh)
	if err == nil && hour >= 14 && hour < 16 {
		return 10
	}
	return 0
}

// amount parses an amount that has passed the Validator's amount pattern
func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
