package main

import (
	"flag"
	"fmt"
)

func approve(args []string) error {
	fs := flag.NewFlagSet("approve", flag.ExitOnError)
	dbPath := fs.String("db", "renew.db", "Ledger database file")
	owner := fs.String("owner", "", "Owner account")
	spender := fs.String("spender", "", "Spender account")
	valueStr := fs.String("value", "", "Static allowance value")
	now := fs.Int64("now", -1, "Clock override (unix seconds)")
	fs.Parse(args)

	if *owner == "" || *spender == "" {
		return fmt.Errorf("-owner and -spender are required")
	}
	value, err := parseAmount("value", *valueStr)
	if err != nil {
		return err
	}

	s, err := openState(*dbPath)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.tok.Approve(*owner, *spender, value, resolveNow(*now)); err != nil {
		return err
	}

	fmt.Printf("Approved %s -> %s: %s (static)\n", *owner, *spender, value.Dec())
	return nil
}
