package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOrdersMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_orders.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"CHECK (total_cents = base_price_cents + platform_fee_cents)",
		"CHECK (rating IS NULL OR (rating >= 1 AND rating <= 5))",
		"status_before_dispute order_status",
		"DROP TABLE IF EXISTS orders",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestWalletsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_wallets.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS wallets",
		"CHECK (available_cents >= 0)",
		"CHECK (reserved_cents >= 0)",
		"FOREIGN KEY (wallet_id) REFERENCES wallets(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS wallet_transactions",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestDisputesMigrationEnforcesSingleOpenDispute(t *testing.T) {
	content := readMigration(t, "*_create_disputes.sql")

	checks := []string{
		"CHECK (char_length(description) >= 20)",
		"CREATE UNIQUE INDEX ux_disputes_one_open_per_order ON disputes (order_id)",
		"WHERE status = 'open'",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration file matching %q found", pattern)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
