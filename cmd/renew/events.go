package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/pflow-xyz/go-renew/token"
)

func showEvents(args []string) error {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
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

	entries, err := token.History(context.Background(), s.events, *owner, *spender)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Printf("No events for %s -> %s\n", *owner, *spender)
		return nil
	}

	for _, e := range entries {
		switch {
		case e.Granted != nil:
			fmt.Printf("%3d  %s  granted   max=%s rate=%s/s\n",
				e.Version, e.Time.Format("2006-01-02 15:04:05"), e.Granted.Max, e.Granted.RecoveryRate)
		case e.Consumed != nil:
			fmt.Printf("%3d  %s  consumed  amount=%s to=%s\n",
				e.Version, e.Time.Format("2006-01-02 15:04:05"), e.Consumed.Amount, e.Consumed.To)
		default:
			fmt.Printf("%3d  %s  %s\n", e.Version, e.Time.Format("2006-01-02 15:04:05"), e.Type)
		}
	}
	return nil
}
