package billing

import "sync"

// Tariffs are the per-unit utility prices and flat monthly fees applied to every invoice
type Tariffs struct {
	UEDCLPerUnit   int64
	NSWCPerUnit    int64
	SecurityFee    int64
	GarbageFee     int64
	CurrencyPhrase string
}

// DefaultTariffs returns the standard billing rates
func DefaultTariffs() Tariffs {
	return Tariffs{
		UEDCLPerUnit:   1200,
		NSWCPerUnit:    7000,
		SecurityFee:    20000,
		GarbageFee:     5000,
		CurrencyPhrase: "Shillings Only",
	}
}

// TariffBook holds the tariffs in effect. It is safe for concurrent use.
type TariffBook struct {
	mu      sync.RWMutex
	current Tariffs
}

// NewTariffBook creates a book seeded with the given tariffs
func NewTariffBook(initial Tariffs) *TariffBook {
	return &TariffBook{current: initial}
}

// Current returns a copy of the tariffs in effect
func (b *TariffBook) Current() Tariffs {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.current
}

// Update replaces the tariffs in effect
func (b *TariffBook) Update(t Tariffs) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = t
}
