package billing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/divan/num2words"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Dan9191/rental-service/internal/models"
)

// MaxAmount is the largest amount that can be billed and spelled out in words
const MaxAmount int64 = 999_999_999_999

// ErrAmountOutOfRange is returned when a charge or total falls outside 0..MaxAmount
var ErrAmountOutOfRange = errors.New("amount out of billable range")

// Totals is the itemized result of an invoice calculation
type Totals struct {
	Rent          int64
	UEDCLUnits    int64
	UEDCLCost     int64
	NSWCUnits     int64
	NSWCCost      int64
	SecurityFee   int64
	GarbageFee    int64
	Total         int64
	AmountInWords string
}

// Compute prices a month's rent plus utilities for a tenant.
// A current reading below the previous one bills zero units for that meter.
// Any line item or total above MaxAmount yields ErrAmountOutOfRange.
func Compute(tenant models.Tenant, r models.MeterReadings, t Tariffs) (Totals, error) {
	uedclUnits := consumed(r.UEDCLPrev, r.UEDCLCurr)
	nswcUnits := consumed(r.NSWCPrev, r.NSWCCurr)

	uedclCost, err := charge(uedclUnits, t.UEDCLPerUnit)
	if err != nil {
		return Totals{}, fmt.Errorf("electricity: %w", err)
	}
	nswcCost, err := charge(nswcUnits, t.NSWCPerUnit)
	if err != nil {
		return Totals{}, fmt.Errorf("water: %w", err)
	}

	totals := Totals{
		Rent:        tenant.MonthlyRent,
		UEDCLUnits:  uedclUnits,
		UEDCLCost:   uedclCost,
		NSWCUnits:   nswcUnits,
		NSWCCost:    nswcCost,
		SecurityFee: t.SecurityFee,
		GarbageFee:  t.GarbageFee,
	}
	totals.Total, err = sum(totals.Rent, totals.UEDCLCost, totals.NSWCCost, totals.SecurityFee, totals.GarbageFee)
	if err != nil {
		return Totals{}, fmt.Errorf("total: %w", err)
	}
	if totals.AmountInWords, err = AmountInWords(totals.Total, t.CurrencyPhrase); err != nil {
		return Totals{}, err
	}
	return totals, nil
}

func consumed(prev, curr int64) int64 {
	return max(0, curr-prev)
}

func charge(units, rate int64) (int64, error) {
	if units < 0 || rate < 0 {
		return 0, ErrAmountOutOfRange
	}
	if units != 0 && rate > MaxAmount/units {
		return 0, ErrAmountOutOfRange
	}
	return units * rate, nil
}

func sum(amounts ...int64) (int64, error) {
	var total int64
	for _, a := range amounts {
		if a < 0 || a > MaxAmount-total {
			return 0, ErrAmountOutOfRange
		}
		total += a
	}
	return total, nil
}

// AmountInWords spells out an amount as title-cased English followed by the currency phrase,
// e.g. 595000 -> "Five Hundred And Ninety-Five Thousand Shillings Only".
func AmountInWords(amount int64, phrase string) (string, error) {
	if amount < 0 || amount > MaxAmount {
		return "", fmt.Errorf("cannot spell %d: %w", amount, ErrAmountOutOfRange)
	}
	words := cases.Title(language.English).String(num2words.ConvertAnd(int(amount)))
	if phrase = strings.TrimSpace(phrase); phrase == "" {
		return words, nil
	}
	return words + " " + phrase, nil
}
