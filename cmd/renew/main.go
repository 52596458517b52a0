package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "mint":
		if err := mint(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "grant":
		if err := grant(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "approve":
		if err := approve(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "spend":
		if err := spend(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "allowance":
		if err := showAllowance(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "terms":
		if err := showTerms(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "balance":
		if err := showBalance(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "events":
		if err := showEvents(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Println("renew version 1.0.0")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`renew - renewable allowance ledger tool

Usage:
  renew <command> [options]

Commands:
  mint       Mint tokens to an account
  grant      Install a renewable allowance (optionally expiring)
  approve    Install a static allowance
  spend      Transfer via a spender's allowance
  allowance  Show the currently spendable amount for a pair
  terms      Show the grant terms for a pair
  balance    Show an account balance and total supply
  events     Show the event history for a pair
  help       Show this help
  version    Show version

All commands take -db <path> (default renew.db) and time-dependent
commands take -now <unix seconds> to pin the clock; omit -now to use
the wall clock.

Examples:
  renew mint -account alice -amount 5000
  renew grant -owner alice -spender bob -max 1000 -rate 10
  renew spend -spender bob -owner alice -to carol -amount 400
  renew allowance -owner alice -spender bob`)
}
