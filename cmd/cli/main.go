package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// apiClient talks to the ledger HTTP API.
type apiClient struct {
	baseURL string
	http    *http.Client
	out     io.Writer
}

// apiError is a non-2xx response.
type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("request failed (status %d): %s", e.Status, strings.TrimSpace(e.Body))
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var (
		baseURL string
		timeout time.Duration
	)

	client := &apiClient{out: out}

	rootCmd := &cobra.Command{
		Use:           "opledger-cli",
		Short:         "Operation ledger CLI tool",
		Long:          `A command line interface for posting to and querying the operation ledger API.`,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			client.baseURL = strings.TrimRight(baseURL, "/")
			client.http = &http.Client{Timeout: timeout}
		},
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the ledger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		entriesCmd(client),
		accountsCmd(client),
		operationsCmd(client),
		ledgerCmd(client),
		&cobra.Command{
			Use:   "health",
			Short: "Check service readiness",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return client.do(cmd.Context(), http.MethodGet, "/ready", nil)
			},
		},
	)

	return rootCmd
}

func entriesCmd(client *apiClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "Post and inspect entries",
	}

	var single struct {
		accountID     int64
		entryType     string
		amount        string
		currency      string
		referenceType string
		referenceID   string
		key           string
	}
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Post a single entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.do(cmd.Context(), http.MethodPost, "/api/v1/entries", map[string]any{
				"accountId":      single.accountID,
				"entryType":      strings.ToUpper(single.entryType),
				"amount":         single.amount,
				"currency":       strings.ToUpper(single.currency),
				"referenceType":  strings.ToUpper(single.referenceType),
				"referenceId":    single.referenceID,
				"idempotencyKey": single.key,
			})
		},
	}
	createCmd.Flags().Int64Var(&single.accountID, "account", 0, "Account id")
	createCmd.Flags().StringVar(&single.entryType, "type", "", "Entry type (DEBIT or CREDIT)")
	createCmd.Flags().StringVar(&single.amount, "amount", "", "Positive decimal amount")
	createCmd.Flags().StringVar(&single.currency, "currency", "", "ISO 4217 currency code")
	createCmd.Flags().StringVar(&single.referenceType, "ref-type", "", "Reference type")
	createCmd.Flags().StringVar(&single.referenceID, "ref-id", "", "Reference id")
	createCmd.Flags().StringVar(&single.key, "key", "", "Idempotency key")
	markRequired(createCmd, "account", "type", "amount", "currency", "ref-type", "ref-id", "key")

	var composite struct {
		debitAccountID  int64
		creditAccountID int64
		amount          string
		currency        string
		referenceType   string
		referenceID     string
		key             string
	}
	compositeCmd := &cobra.Command{
		Use:   "composite",
		Short: "Move funds between two accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.do(cmd.Context(), http.MethodPost, "/api/v1/entries/composite", map[string]any{
				"debitAccountId":  composite.debitAccountID,
				"creditAccountId": composite.creditAccountID,
				"amount":          composite.amount,
				"currency":        strings.ToUpper(composite.currency),
				"referenceType":   strings.ToUpper(composite.referenceType),
				"referenceId":     composite.referenceID,
				"idempotencyKey":  composite.key,
			})
		},
	}
	compositeCmd.Flags().Int64Var(&composite.debitAccountID, "debit", 0, "Account to debit")
	compositeCmd.Flags().Int64Var(&composite.creditAccountID, "credit", 0, "Account to credit")
	compositeCmd.Flags().StringVar(&composite.amount, "amount", "", "Positive decimal amount")
	compositeCmd.Flags().StringVar(&composite.currency, "currency", "", "ISO 4217 currency code")
	compositeCmd.Flags().StringVar(&composite.referenceType, "ref-type", "", "Reference type")
	compositeCmd.Flags().StringVar(&composite.referenceID, "ref-id", "", "Reference id")
	compositeCmd.Flags().StringVar(&composite.key, "key", "", "Idempotency key")
	markRequired(compositeCmd, "debit", "credit", "amount", "currency", "ref-type", "ref-id", "key")

	getCmd := &cobra.Command{
		Use:   "get <entry-id>",
		Short: "Show an entry with its operation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.do(cmd.Context(), http.MethodGet, "/api/v1/entries/"+url.PathEscape(args[0]), nil)
		},
	}

	cmd.AddCommand(createCmd, compositeCmd, getCmd)
	return cmd
}

func accountsCmd(client *apiClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Query account balances and entries",
	}

	var upTo string
	balanceCmd := &cobra.Command{
		Use:   "balance <account-id>",
		Short: "Show the account balance, optionally as of a point in time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAccountArg(args[0])
			if err != nil {
				return err
			}
			path := "/api/v1/accounts/" + id + "/balance"
			if upTo != "" {
				if _, err := time.Parse(time.RFC3339Nano, upTo); err != nil {
					return fmt.Errorf("invalid --up-to: %w", err)
				}
				path += "/history?" + url.Values{"upToDate": {upTo}}.Encode()
			}
			return client.do(cmd.Context(), http.MethodGet, path, nil)
		},
	}
	balanceCmd.Flags().StringVar(&upTo, "up-to", "", "RFC 3339 cutoff for a historical balance")

	var page, size int
	listCmd := &cobra.Command{
		Use:   "entries <account-id>",
		Short: "List account entries, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAccountArg(args[0])
			if err != nil {
				return err
			}
			query := url.Values{
				"page": {strconv.Itoa(page)},
				"size": {strconv.Itoa(size)},
			}
			return client.do(cmd.Context(), http.MethodGet, "/api/v1/accounts/"+id+"/entries?"+query.Encode(), nil)
		},
	}
	listCmd.Flags().IntVar(&page, "page", 0, "Zero-based page number")
	listCmd.Flags().IntVar(&size, "size", 20, "Page size")

	cmd.AddCommand(balanceCmd, listCmd)
	return cmd
}

func operationsCmd(client *apiClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "operations",
		Short: "Inspect and reverse operations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get <operation-id>",
			Short: "Show an operation with its entries",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return client.do(cmd.Context(), http.MethodGet, "/api/v1/operations/"+url.PathEscape(args[0]), nil)
			},
		},
		&cobra.Command{
			Use:   "by-key <idempotency-key>",
			Short: "Find an operation by idempotency key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return client.do(cmd.Context(), http.MethodGet, "/api/v1/operations/by-key/"+url.PathEscape(args[0]), nil)
			},
		},
		&cobra.Command{
			Use:   "reverse <operation-id>",
			Short: "Reverse an operation",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return client.do(cmd.Context(), http.MethodPost, "/api/v1/operations/"+url.PathEscape(args[0])+"/reversal", nil)
			},
		},
	)

	return cmd
}

func ledgerCmd(client *apiClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger-wide checks",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "integrity",
		Short: "Check ledger integrity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.do(cmd.Context(), http.MethodGet, "/api/v1/ledger/integrity", nil)
		},
	})

	return cmd
}

// do sends the request and prints the JSON response indented.
func (c *apiClient) do(ctx context.Context, method, path string, payload any) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &apiError{Status: resp.StatusCode, Body: string(raw)}
	}

	return printJSON(c.out, raw)
}

func printJSON(out io.Writer, raw []byte) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		_, err = fmt.Fprintln(out, string(raw))
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(out)
	return err
}

func parseAccountArg(arg string) (string, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return "", fmt.Errorf("invalid account id %q", arg)
	}
	return strconv.FormatInt(id, 10), nil
}

func markRequired(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		_ = cmd.MarkFlagRequired(name)
	}
}
