package main

import (
	"flag"
	"fmt"
)

func showAllowance(args []string) error {
	fs := flag.NewFlagSet("allowance", flag.ExitOnError)
	dbPath := fs.String("db", "renew.db", "Ledger database file")
	owner := fs.String("owner", "", "Owner account")
	spender := fs.String("spender", "", "Spender account")
	now := fs.Int64("now", -1, "Clock override (unix seconds)")
	fs.Parse(args)

	if *owner == "" || *spender == "" {
		return fmt.Errorf("-owner and -spender are required")
	}

	s, err := openState(*dbPath)
	if err != nil {
		return err
	}
	defer s.close()

	t := resolveNow(*now)
	remaining, err := s.tok.Allowance(*owner, *spender, t)
	if err != nil {
		return err
	}
	fmt.Printf("Allowance %s -> %s at t=%d: %s\n", *owner, *spender, t, remaining.Dec())
	return nil
}

func showTerms(args []string) error {
	fs := flag.NewFlagSet("terms", flag.ExitOnError)
	dbPath := fs.String("db", "renew.db", "Ledger database file")
	owner := fs.String("owner", "", "Owner account")
	spender := fs.String("spender", "", "Spender account")
	fs.Parse(args)

	if *owner == "" || *spender == "" {
		return fmt.Errorf("-owner and -spender are required")
	}

	s, err := openState(*dbPath)
	if err != nil {
		return err
	}
	defer s.close()

	max, rate, expires, err := s.tok.RenewableAllowance(*owner, *spender)
	if err != nil {
		return err
	}

	fmt.Printf("Terms %s -> %s: max=%s rate=%s/s", *owner, *spender, max.Dec(), rate.Dec())
	if expires > 0 {
		fmt.Printf(" expires=%d", expires)
	}
	fmt.Println()
	return nil
}

func showBalance(args []string) error {
	fs := flag.NewFlagSet("balance", flag.ExitOnError)
	dbPath := fs.String("db", "renew.db", "Ledger database file")
	account := fs.String("account", "", "Account to query")
	fs.Parse(args)

	if *account == "" {
		return fmt.Errorf("-account is required")
	}

	s, err := openState(*dbPath)
	if err != nil {
		return err
	}
	defer s.close()

	bal, err := s.tok.Ledger().BalanceOf(*account)
	if err != nil {
		return err
	}
	supply, err := s.tok.Ledger().TotalSupply()
	if err != nil {
		return err
	}
	fmt.Printf("Balance of %s: %s (total supply: %s)\n", *account, bal.Dec(), supply.Dec())
	return nil
}
