package main

import (
	"flag"
	"fmt"
)

func grant(args []string) error {
	fs := flag.NewFlagSet("grant", flag.ExitOnError)
	dbPath := fs.String("db", "renew.db", "Ledger database file")
	owner := fs.String("owner", "", "Owner account")
	spender := fs.String("spender", "", "Spender account")
	maxStr := fs.String("max", "", "Allowance ceiling")
	rateStr := fs.String("rate", "0", "Recovery rate per second")
	expires := fs.Uint64("expires", 0, "Absolute expiration (unix seconds, 0 for none)")
	now := fs.Int64("now", -1, "Clock override (unix seconds)")
	fs.Parse(args)

	if *owner == "" || *spender == "" {
		return fmt.Errorf("-owner and -spender are required")
	}
	max, err := parseAmount("max", *maxStr)
	if err != nil {
		return err
	}
	rate, err := parseAmount("rate", *rateStr)
	if err != nil {
		return err
	}

	s, err := openState(*dbPath)
	if err != nil {
		return err
	}
	defer s.close()

	t := resolveNow(*now)
	if *expires > 0 {
		err = s.tok.ApproveRenewableUntil(*owner, *spender, max, rate, *expires, t)
	} else {
		err = s.tok.ApproveRenewable(*owner, *spender, max, rate, t)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Granted %s -> %s: max=%s rate=%s/s", *owner, *spender, max.Dec(), rate.Dec())
	if *expires > 0 {
		fmt.Printf(" expires=%d", *expires)
	}
	fmt.Println()
	return nil
}
