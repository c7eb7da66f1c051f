package core

import (
	"errors"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// DateLayout is the ISO calendar date format used on the wire and in storage.
const DateLayout = "2006-01-02"

const maxCustomerNameLength = 100

// MonthKeyLayout formats a date into the key used for monthly aggregation.
const MonthKeyLayout = "2006-01"

type (
	// Date is a calendar date without a time component, always UTC midnight.
	Date struct {
		time.Time
	}

	// Transaction is a single purchase made by a customer.
	Transaction struct {
		ID           int64
		CustomerID   int64
		CustomerName string
		Amount       Money
		Date         Date
	}

	// DateRange is an inclusive window of calendar dates.
	DateRange struct {
		Start Date
		End   Date
	}
)

var (
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidTransaction  = errors.New("invalid transaction id")
	ErrInvalidCustomer     = errors.New("invalid customer id")
	ErrEmptyCustomerName   = errors.New("empty customer name")
	ErrCustomerNameTooLong = errors.New("customer name too long (max 100 characters)")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MonthKey returns the "YYYY-MM" bucket the date falls into.
func (d Date) MonthKey() string {
	return d.Format(MonthKeyLayout)
}

func (t Transaction) Validate() error {
	if t.ID <= 0 {
		return ErrInvalidTransaction
	}
	if t.CustomerID <= 0 {
		return ErrInvalidCustomer
	}
	if strings.TrimSpace(t.CustomerName) == "" {
		return ErrEmptyCustomerName
	}
	if utf8.RuneCountInString(t.CustomerName) > maxCustomerNameLength {
		return ErrCustomerNameTooLong
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	return t.Date.Validate()
}

// NewDateRange builds an inclusive range, rejecting start dates after the end date.
func NewDateRange(start, end Date) (*DateRange, error) {
	r := &DateRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r DateRange) Validate() error {
	if r.Start.After(r.End.Time) {
		return &InvalidDateRangeError{Start: r.Start, End: r.End}
	}
	return nil
}

// Contains reports whether d falls inside the range, bounds included.
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start.Time) && !d.After(r.End.Time)
}

// SortTransactions orders txs by date, then by ID.
func SortTransactions(txs []Transaction) {
	sort.Slice(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date.Time) {
			return txs[i].Date.Before(txs[j].Date.Time)
		}
		return txs[i].ID < txs[j].ID
	})
}
