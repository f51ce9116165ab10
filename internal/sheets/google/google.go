package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"expensetracker/internal/core"
	ports "expensetracker/internal/sheets"
)

var (
	_ ports.ProgressWriter = (*Client)(nil)
	_ ports.ProgressReader = (*Client)(nil)
)

// Options selects the spreadsheet and credentials. A saved OAuth user token
// (see trackerctl sheets-auth) wins over service account credentials.
// CredentialsJSON wins over CredentialsFile; with neither set
// GOOGLE_APPLICATION_CREDENTIALS is used.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string

	OAuthClientJSON string
	OAuthClientFile string
	OAuthTokenJSON  string
	OAuthTokenFile  string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	progressSheet string
	now           func() time.Time
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	base := strings.TrimSpace(opts.SheetName)
	if base == "" {
		base = "Budget Progress"
	}

	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		progressSheet: yearPrefixedName(base, time.Now().Year()),
		now:           time.Now,
	}, nil
}

func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	tokenJSON, err := inlineOrFile(opts.OAuthTokenJSON, opts.OAuthTokenFile, "OAuth token")
	if err != nil {
		return nil, err
	}
	if tokenJSON != nil {
		ts, err := oauthTokenSource(ctx, opts, tokenJSON)
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "Using OAuth user credentials")
		return newService(ctx, goption.WithTokenSource(ts))
	}

	credsFile := opts.CredentialsFile
	if strings.TrimSpace(opts.CredentialsJSON) == "" && strings.TrimSpace(credsFile) == "" {
		credsFile = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	}
	data, err := inlineOrFile(opts.CredentialsJSON, credsFile, "service account")
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, errors.New("missing service account credentials")
	}
	slog.InfoContext(ctx, "Using service account credentials")
	return newService(ctx,
		goption.WithCredentialsJSON(data),
		goption.WithScopes(gsheet.SpreadsheetsScope))
}

func newService(ctx context.Context, opts ...goption.ClientOption) (*gsheet.Service, error) {
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// OAuthConfig parses an OAuth client secret for the Sheets scope.
func OAuthConfig(clientJSON []byte) (*oauth2.Config, error) {
	cfg, err := goauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse OAuth client: %w", err)
	}
	return cfg, nil
}

func oauthTokenSource(ctx context.Context, opts Options, tokenJSON []byte) (oauth2.TokenSource, error) {
	clientJSON, err := inlineOrFile(opts.OAuthClientJSON, opts.OAuthClientFile, "OAuth client")
	if err != nil {
		return nil, err
	}
	if clientJSON == nil {
		return nil, errors.New("OAuth token given without an OAuth client")
	}
	cfg, err := OAuthConfig(clientJSON)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(tokenJSON, &tok); err != nil {
		return nil, fmt.Errorf("parse OAuth token: %w", err)
	}
	return cfg.TokenSource(ctx, &tok), nil
}

// inlineOrFile returns inline when set, else the contents of path, else nil.
func inlineOrFile(inline, path, what string) ([]byte, error) {
	if inline = strings.TrimSpace(inline); inline != "" {
		return []byte(inline), nil
	}
	if path = strings.TrimSpace(path); path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s file: %w", what, err)
	}
	return data, nil
}

// AppendProgress appends one row: timestamp, budget id, name, currency,
// spent, amount, percent.
func (c *Client) AppendProgress(ctx context.Context, p core.BudgetProgress) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:G", c.progressSheet)
	vr := &gsheet.ValueRange{Values: [][]any{progressRow(p, c.now())}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append progress to %s: %w", c.progressSheet, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	return ref, nil
}

// ListProgress reads every progress row back, skipping a header row and
// rows that do not parse.
func (c *Client) ListProgress(ctx context.Context) ([]core.BudgetProgress, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:G", c.progressSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return parseProgressRows(resp.Values), nil
}

func progressRow(p core.BudgetProgress, at time.Time) []any {
	return []any{
		at.UTC().Format(time.RFC3339),
		p.BudgetID,
		p.Name,
		p.Currency,
		core.FormatCents(p.Spent.Cents),
		core.FormatCents(p.Amount.Cents),
		p.Percent.StringFixed(2),
	}
}

func parseProgressRows(values [][]any) []core.BudgetProgress {
	var out []core.BudgetProgress
	for _, row := range values {
		cols := toStrings(row)
		if len(cols) < 7 {
			continue
		}
		id, err := strconv.ParseInt(cols[1], 10, 64)
		if err != nil {
			continue
		}
		spent, err := core.ParseBalanceToCents(cols[4])
		if err != nil {
			continue
		}
		amount, err := core.ParseBalanceToCents(cols[5])
		if err != nil {
			continue
		}
		pct, err := decimal.NewFromString(cols[6])
		if err != nil {
			continue
		}
		out = append(out, core.BudgetProgress{
			BudgetID: id,
			Name:     cols[2],
			Currency: cols[3],
			Spent:    core.Money{Cents: spent},
			Amount:   core.Money{Cents: amount},
			Percent:  pct,
		})
	}
	return out
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
