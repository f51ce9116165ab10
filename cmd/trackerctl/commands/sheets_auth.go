package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	gsheet "expensetracker/internal/sheets/google"
)

// callbackHandler forwards the authorization code of the redirect whose state
// matches. It answers at most one request with a code.
func callbackHandler(state string, codeCh chan<- string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if errStr := q.Get("error"); errStr != "" {
			http.Error(w, "OAuth error: "+errStr, http.StatusBadRequest)
			return
		}
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "You may close this window and return to the terminal.")
		select {
		case codeCh <- code:
		default:
		}
	})
}

func writeToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open token file: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

func sheetsAuthCmd() *cobra.Command {
	var (
		clientFile string
		tokenFile  string
		port       string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "sheets-auth",
		Short: "Authorize Google Sheets export with a user account",
		Long: `Run the OAuth consent flow for an installed-app client and save the token
for GOOGLE_OAUTH_TOKEN_FILE. The client must allow the redirect URI
http://localhost:PORT/callback.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			clientJSON := []byte(os.Getenv("GOOGLE_OAUTH_CLIENT_JSON"))
			if len(clientJSON) == 0 {
				if clientFile == "" {
					return errors.New("set --client, GOOGLE_OAUTH_CLIENT_FILE or GOOGLE_OAUTH_CLIENT_JSON")
				}
				var err error
				if clientJSON, err = os.ReadFile(clientFile); err != nil {
					return fmt.Errorf("read client file: %w", err)
				}
			}

			cfg, err := gsheet.OAuthConfig(clientJSON)
			if err != nil {
				return err
			}
			cfg.RedirectURL = "http://localhost:" + port + "/callback"

			ln, err := net.Listen("tcp", "localhost:"+port)
			if err != nil {
				return fmt.Errorf("listen for callback: %w", err)
			}
			state := uuid.NewString()
			codeCh := make(chan string, 1)
			mux := http.NewServeMux()
			mux.Handle("/callback", callbackHandler(state, codeCh))
			srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
			go func() { _ = srv.Serve(ln) }()
			defer srv.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Open this URL to authorize:\n%s\n", cfg.AuthCodeURL(state, oauth2.AccessTypeOffline))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			select {
			case code := <-codeCh:
				tok, err := cfg.Exchange(ctx, code)
				if err != nil {
					return fmt.Errorf("token exchange: %w", err)
				}
				if err := writeToken(tokenFile, tok); err != nil {
					return err
				}
				printSaved(out, tokenFile)
				return nil
			case <-ctx.Done():
				return fmt.Errorf("authorization not completed: %w", ctx.Err())
			}
		},
	}

	cmd.Flags().StringVar(&clientFile, "client", os.Getenv("GOOGLE_OAUTH_CLIENT_FILE"), "OAuth client secret JSON file")
	cmd.Flags().StringVar(&tokenFile, "token", envOr("GOOGLE_OAUTH_TOKEN_FILE", "token.json"), "where to save the token")
	cmd.Flags().StringVar(&port, "port", envOr("OAUTH_REDIRECT_PORT", "8085"), "local callback port")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "how long to wait for consent")
	return cmd
}

func printSaved(w io.Writer, path string) {
	fmt.Fprintf(w, "Saved token to %s\n", path)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
