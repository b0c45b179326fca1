package domain

import "github.com/shopspring/decimal"

type ClientID uint16

// MaxBalance bounds every balance component, mirroring a 96-bit decimal mantissa.
var MaxBalance = decimal.RequireFromString("79228162514264337593543950335")

// MaxScale is the most fractional digits a balance can carry.
const MaxScale = 28

// ValidateAmount rejects amounts a balance could not hold. The exponent is checked
// before any arithmetic so an extreme one never gets rescaled.
func ValidateAmount(amount decimal.Decimal) error {
	if exceedsRange(amount) {
		return ErrBalanceOverflow
	}
	return nil
}

type Account struct {
	ClientID  ClientID
	Available decimal.Decimal
	Held      decimal.Decimal
	Locked    bool
}

func NewAccount(clientID ClientID) Account {
	return Account{
		ClientID:  clientID,
		Available: decimal.Zero,
		Held:      decimal.Zero,
	}
}

func (a Account) Total() decimal.Decimal {
	return a.Available.Add(a.Held)
}

// Credit moves amount into available funds.
func (a *Account) Credit(amount decimal.Decimal) error {
	available := a.Available.Add(amount)
	if exceedsRange(available) {
		return ErrBalanceOverflow
	}

	a.Available = available
	return nil
}

// Debit removes amount from available funds. Locked accounts and overdrafts are rejected.
func (a *Account) Debit(amount decimal.Decimal) error {
	if a.Locked {
		return ErrAccountLocked
	}
	if a.Available.LessThan(amount) {
		return ErrInsufficientMoney
	}

	a.Available = a.Available.Sub(amount)
	return nil
}

// Hold freezes amount. Available may go negative when the held funds were already spent.
func (a *Account) Hold(amount decimal.Decimal) error {
	available := a.Available.Sub(amount)
	held := a.Held.Add(amount)
	if exceedsRange(available) || exceedsRange(held) {
		return ErrBalanceOverflow
	}

	a.Available = available
	a.Held = held
	return nil
}

func (a *Account) Release(amount decimal.Decimal) error {
	if a.Held.LessThan(amount) {
		return ErrInsufficientMoney
	}

	available := a.Available.Add(amount)
	if exceedsRange(available) {
		return ErrBalanceOverflow
	}

	a.Held = a.Held.Sub(amount)
	a.Available = available
	return nil
}

// Reverse drops held funds out of the account and locks it for good.
func (a *Account) Reverse(amount decimal.Decimal) error {
	if a.Held.LessThan(amount) {
		return ErrInsufficientMoney
	}

	a.Held = a.Held.Sub(amount)
	a.Locked = true
	return nil
}

// Validate checks the invariants every committed account state must satisfy.
func (a Account) Validate() error {
	if a.Held.IsNegative() {
		return ErrInsufficientMoney
	}
	if exceedsRange(a.Available) || exceedsRange(a.Held) || exceedsRange(a.Total()) {
		return ErrBalanceOverflow
	}

	return nil
}

func exceedsRange(value decimal.Decimal) bool {
	if exp := value.Exponent(); exp < -MaxScale || exp > MaxScale {
		return true
	}
	return value.Abs().GreaterThan(MaxBalance)
}
