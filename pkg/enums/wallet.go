package enums

import "fmt"

// WalletRole identifies which side of the marketplace a wallet belongs to.
type WalletRole string

const (
	WalletRoleBuyer       WalletRole = "buyer"
	WalletRolePublisher   WalletRole = "publisher"
	WalletRoleContributor WalletRole = "contributor"
)

var validWalletRoles = []WalletRole{
	WalletRoleBuyer,
	WalletRolePublisher,
	WalletRoleContributor,
}

func (w WalletRole) String() string {
	return string(w)
}

func (w WalletRole) IsValid() bool {
	for _, candidate := range validWalletRoles {
		if candidate == w {
			return true
		}
	}
	return false
}

func ParseWalletRole(value string) (WalletRole, error) {
	for _, candidate := range validWalletRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid wallet role %q", value)
}

// TransactionType classifies a wallet journal entry.
type TransactionType string

const (
	TransactionTypeDeposit     TransactionType = "deposit"
	TransactionTypeWithdrawal  TransactionType = "withdrawal"
	TransactionTypePurchase    TransactionType = "purchase"
	TransactionTypeEarning     TransactionType = "earning"
	TransactionTypeRefund      TransactionType = "refund"
	TransactionTypeRelease     TransactionType = "release"
	TransactionTypeAdjustment  TransactionType = "adjustment"
	TransactionTypeContributor TransactionType = "contributor_payout"
)

var validTransactionTypes = []TransactionType{
	TransactionTypeDeposit,
	TransactionTypeWithdrawal,
	TransactionTypePurchase,
	TransactionTypeEarning,
	TransactionTypeRefund,
	TransactionTypeRelease,
	TransactionTypeAdjustment,
	TransactionTypeContributor,
}

func (tt TransactionType) String() string {
	return string(tt)
}

func (tt TransactionType) IsValid() bool {
	for _, candidate := range validTransactionTypes {
		if candidate == tt {
			return true
		}
	}
	return false
}

func ParseTransactionType(value string) (TransactionType, error) {
	for _, candidate := range validTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction type %q", value)
}
