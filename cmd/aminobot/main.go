// Command aminobot runs a minimal Amino bot: it logs in, opens the realtime
// socket and answers "<prefix>ping" with "pong".
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	amino "github.com/k-amino/amino-go"
	"github.com/k-amino/amino-go/bot"
	"github.com/k-amino/amino-go/events"
	"github.com/k-amino/amino-go/wire"
)

var (
	configFile string
	email      string
	password   string
	sid        string
	secret     string
	traceFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "aminobot",
	Short: "Run an Amino chat bot",
	Long:  "Log in to Amino, keep the realtime socket open and answer prefixed chat commands.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := amino.DefaultConfig()
		if configFile != "" {
			loaded, err := amino.LoadConfig(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg = *loaded
		}
		cfg.Bot = true
		if traceFlag {
			cfg.Trace = true
		}

		client, err := amino.New(cfg)
		if err != nil {
			return err
		}
		register(client)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		switch {
		case sid != "":
			info, err := client.LoginSID(ctx, sid)
			if err != nil {
				return fmt.Errorf("sid login: %w", err)
			}
			slog.Info("logged in", "uid", info.UserID)
		case secret != "":
			res, err := client.LoginSecret(ctx, secret)
			if err != nil {
				return fmt.Errorf("secret login: %w", err)
			}
			slog.Info("logged in", "uid", res.UserID)
		case email != "" && password != "":
			res, err := client.Login(ctx, email, password)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			slog.Info("logged in", "uid", res.UserID)
		default:
			return fmt.Errorf("one of --sid, --secret or --email and --password is required")
		}

		<-ctx.Done()
		slog.Info("shutting down")
		return client.Close()
	},
}

func register(client *amino.Client) {
	client.Command([]string{"ping"}, func(c *bot.Context) error {
		return c.Reply(context.Background(), "pong")
	})

	events.Subscribe(client.Events(), events.TextMessage, func(ev *wire.Event) error {
		slog.Debug("message", "chat", ev.Message.ThreadID, "author", ev.Message.Author.Nickname)
		return nil
	})
	events.Subscribe(client.Events(), events.ReconnectError, func(err error) error {
		slog.Error("socket gave up reconnecting", "error", err)
		return nil
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func init() {
	rootCmd.Flags().StringVar(&configFile, "config", "", "Configuration file (YAML)")
	rootCmd.Flags().StringVar(&email, "email", "", "Account email")
	rootCmd.Flags().StringVar(&password, "password", "", "Account password")
	rootCmd.Flags().StringVar(&sid, "sid", "", "Session id to resume instead of logging in")
	rootCmd.Flags().StringVar(&secret, "secret", "", "Login secret from an earlier password login")
	rootCmd.Flags().BoolVar(&traceFlag, "trace", false, "Log socket traffic in colour")
}
