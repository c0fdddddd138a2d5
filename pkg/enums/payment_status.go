package enums

import "fmt"

// PaymentStatus tracks where an order's escrowed funds currently sit.
type PaymentStatus string

const (
	PaymentStatusReserved PaymentStatus = "reserved"
	PaymentStatusSettled  PaymentStatus = "settled"
	PaymentStatusRefunded PaymentStatus = "refunded"
	PaymentStatusSplit    PaymentStatus = "split"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusReserved,
	PaymentStatusSettled,
	PaymentStatusRefunded,
	PaymentStatusSplit,
}

func (p PaymentStatus) String() string {
	return string(p)
}

func (p PaymentStatus) IsValid() bool {
	for _, candidate := range validPaymentStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

func ParsePaymentStatus(value string) (PaymentStatus, error) {
	for _, candidate := range validPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment status %q", value)
}
