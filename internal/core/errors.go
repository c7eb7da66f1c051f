package core

import (
	"errors"
	"fmt"
)

var (
	// ErrCustomerNotFound matches any *CustomerNotFoundError via errors.Is.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrInvalidDateRange matches any *InvalidDateRangeError via errors.Is.
	ErrInvalidDateRange = errors.New("invalid date range")
)

// CustomerNotFoundError is returned when a customer has no transactions
// in the requested window.
type CustomerNotFoundError struct {
	CustomerID int64
}

func (e *CustomerNotFoundError) Error() string {
	return fmt.Sprintf("Customer with ID %d not found.", e.CustomerID)
}

func (e *CustomerNotFoundError) Is(target error) bool {
	return target == ErrCustomerNotFound
}

// InvalidDateRangeError is returned when a start date falls after the end date.
type InvalidDateRangeError struct {
	Start Date
	End   Date
}

func (e *InvalidDateRangeError) Error() string {
	return fmt.Sprintf("Invalid date range: startDate (%s) must be before or equal to endDate (%s)", e.Start, e.End)
}

func (e *InvalidDateRangeError) Is(target error) bool {
	return target == ErrInvalidDateRange
}
