package mailer

import (
	"github.com/crossingstv/sales-report/config"
	"github.com/crossingstv/sales-report/report"
)

// Route resolves the recipient list for a report category. In test mode
// every category collapses to the configured test address so that a dry run
// can never reach a real recipient. In production the management category
// routes to the management distribution list and each account executive
// category routes to that executive's configured addresses.
func Route(cfg *config.Config, category string) ([]string, error) {
	if cfg.Mode() == config.Test {
		return []string{cfg.TestAddress()}, nil
	}

	recipients := []string{}
	if category == report.Management {
		recipients = cfg.ManagementRecipients()
	} else {
		recipients = cfg.Recipients(category)
	}

	if len(recipients) == 0 {
		return nil, config.Errorf("no recipients configured for category '%s'", category)
	}

	return dedupe(recipients), nil
}

// dedupe removes duplicate addresses, preserving first-seen order.
func dedupe(addresses []string) []string {
	seen := map[string]bool{}
	list := []string{}
	for _, address := range addresses {
		if !seen[address] {
			seen[address] = true
			list = append(list, address)
		}
	}

	return list
}
