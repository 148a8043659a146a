package domain

import "fmt"

// Category is the closed set of outcome kinds a wheel slice can resolve
// to. Keeping it closed means the selector and settlement code can never
// produce an unrecognized reward type.
type Category string

const (
	CategoryCash     Category = "cash"
	CategoryDiscount Category = "discount"
	CategoryFreeSpin Category = "free_spin"
	CategoryLose     Category = "lose"
	CategoryCustom   Category = "custom"
)

// ParseCategory validates a free-form category string against the closed
// set. Anything else is an error, never a silent pass-through.
func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryCash, CategoryDiscount, CategoryFreeSpin, CategoryLose, CategoryCustom:
		return c, nil
	default:
		return "", fmt.Errorf("unknown outcome category %q", s)
	}
}

// Paid reports whether outcomes of this category carry value for the user
// and therefore trigger a payout notification.
func (c Category) Paid() bool {
	return c != CategoryLose
}
