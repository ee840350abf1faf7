package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"atm-system/config"
	"atm-system/internal/adapter/http/gateway"
	"atm-system/internal/client"
	"atm-system/internal/core/domain"
	"atm-system/pkg/apperror"
	"atm-system/pkg/logger"
)

const helpText = `Commands:
  login <account-number>   start a session
  balance                  show the last known balance
  refresh                  fetch the balance from the server
  deposit <amount>         deposit money
  withdraw <amount>        withdraw money
  logout                   end the session
  help                     show this help
  quit                     exit`

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr; stdout belongs to the terminal UI.
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	gw := gateway.New(cfg.Client.BaseURL, &http.Client{Timeout: cfg.Client.Timeout}, log)
	sessions, store, orchestrator := client.NewCore(gw, log)

	fmt.Println("ATM client. Type 'help' for commands.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		prompt(sessions, store)
		if !scanner.Scan() {
			break
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := strings.ToLower(fields[0]), fields[1:]

		switch cmd {
		case "login":
			if len(args) != 1 {
				fmt.Println("usage: login <account-number>")
				continue
			}
			session, err := sessions.Begin(args[0])
			if err != nil {
				printErr(err)
				continue
			}
			fmt.Printf("Logged in as account %s\n", session.AccountNumber)
			refresh(orchestrator)

		case "balance":
			if snap, ok := store.Current(); ok {
				fmt.Printf("Balance: $%s\n", snap.Balance.StringFixed(2))
				continue
			}
			refresh(orchestrator)

		case "refresh":
			refresh(orchestrator)

		case "deposit":
			transact(orchestrator, domain.TransactionDeposit, args)

		case "withdraw":
			transact(orchestrator, domain.TransactionWithdraw, args)

		case "logout":
			sessions.End()
			fmt.Println("Logged out")

		case "help":
			fmt.Println(helpText)

		case "quit", "exit":
			return

		default:
			fmt.Printf("unknown command %q; type 'help'\n", cmd)
		}
	}
}

func prompt(sessions *client.SessionManager, store *client.SnapshotStore) {
	session, ok := sessions.Current()
	if !ok {
		fmt.Print("atm> ")
		return
	}
	if snap, ok := store.Current(); ok {
		fmt.Printf("atm[%s $%s]> ", session.AccountNumber, snap.Balance.StringFixed(2))
		return
	}
	fmt.Printf("atm[%s]> ", session.AccountNumber)
}

func refresh(orchestrator *client.Orchestrator) {
	snap, err := orchestrator.RefreshBalance(context.Background())
	if err != nil {
		printErr(err)
		return
	}
	fmt.Printf("Balance: $%s\n", snap.Balance.StringFixed(2))
}

func transact(orchestrator *client.Orchestrator, kind domain.TransactionKind, args []string) {
	if len(args) != 1 {
		fmt.Printf("usage: %s <amount>\n", strings.ToLower(string(kind)))
		return
	}
	outcome, err := orchestrator.RequestTransaction(context.Background(), kind, args[0])
	if err != nil {
		printErr(err)
		return
	}
	fmt.Printf("%s\nBalance: $%s\n", outcome.Message, outcome.Balance.StringFixed(2))
}

func printErr(err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		fmt.Println(appErr.Message)
		return
	}
	fmt.Printf("error: %v\n", err)
}
