package main

import (
	"flag"
	"fmt"
)

func spend(args []string) error {
	fs := flag.NewFlagSet("spend", flag.ExitOnError)
	dbPath := fs.String("db", "renew.db", "Ledger database file")
	spender := fs.String("spender", "", "Spender account (the caller)")
	owner := fs.String("owner", "", "Owner whose allowance is consumed")
	to := fs.String("to", "", "Destination account")
	amountStr := fs.String("amount", "", "Amount to transfer")
	now := fs.Int64("now", -1, "Clock override (unix seconds)")
	fs.Parse(args)

	if *spender == "" || *owner == "" || *to == "" {
		return fmt.Errorf("-spender, -owner and -to are required")
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

	t := resolveNow(*now)
	if err := s.tok.TransferFrom(*spender, *owner, *to, amount, t); err != nil {
		return err
	}

	remaining, err := s.tok.Allowance(*owner, *spender, t)
	if err != nil {
		return err
	}
	fmt.Printf("Transferred %s from %s to %s via %s (allowance remaining: %s)\n",
		amount.Dec(), *owner, *to, *spender, remaining.Dec())
	return nil
}
