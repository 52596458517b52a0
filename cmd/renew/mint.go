package main

import (
	"flag"
	"fmt"
)

func mint(args []string) error {
	fs := flag.NewFlagSet("mint", flag.ExitOnError)
	dbPath := fs.String("db", "renew.db", "Ledger database file")
	account := fs.String("account", "", "Account to mint to")
	amountStr := fs.String("amount", "", "Amount to mint")
	fs.Parse(args)

	if *account == "" {
		return fmt.Errorf("-account is required")
	}
	amount, err := parseAmount("amount", *amountStr)
	if err != nil {
		return err
	}

	s, err := openState(*dbPath)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.tok.Ledger().Mint(*account, amount); err != nil {
		return err
	}

	bal, err := s.tok.Ledger().BalanceOf(*account)
	if err != nil {
		return err
	}
	fmt.Printf("Minted %s to %s (balance: %s)\n", amount.Dec(), *account, bal.Dec())
	return nil
}
