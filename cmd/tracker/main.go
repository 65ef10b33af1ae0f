// Personal investment ledger CLI.
//
// Records buys and sells per ticker, keeps a weighted-average cost basis,
// refreshes market prices and maintains a portfolio summary.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/volodymyr-data/investment-tracker/internal/adapter/pricesource/yahoo"
	"github.com/volodymyr-data/investment-tracker/internal/adapter/repository/postgres"
	"github.com/volodymyr-data/investment-tracker/internal/config"
	"github.com/volodymyr-data/investment-tracker/internal/domain"
	"github.com/volodymyr-data/investment-tracker/internal/logging"
	"github.com/volodymyr-data/investment-tracker/internal/scheduler"
	"github.com/volodymyr-data/investment-tracker/internal/usecase/ledger"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
)

var (
	cfg *config.Config
	log *logrus.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tracker",
	Short: "Personal investment ledger",
	Long: `tracker maintains a personal investment ledger: it records buy and
sell transactions per ticker, derives a weighted-average cost basis,
refreshes market prices and keeps a portfolio-wide summary.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; real env vars win either way
		_ = godotenv.Load()

		configPath, _ := cmd.Flags().GetString("config")
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		log = logging.New(cfg.LogLevel)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "directory containing config.yaml (default: working directory)")

	rootCmd.AddCommand(buyCmd)
	rootCmd.AddCommand(sellCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)

	buyCmd.Flags().StringP("ticker", "t", "", "ticker symbol (required)")
	buyCmd.Flags().StringP("date", "d", "", "purchase date, YYYY-MM-DD (required)")
	buyCmd.Flags().StringP("shares", "n", "", "number of shares bought (required)")
	_ = buyCmd.MarkFlagRequired("ticker")
	_ = buyCmd.MarkFlagRequired("date")
	_ = buyCmd.MarkFlagRequired("shares")

	sellCmd.Flags().StringP("ticker", "t", "", "ticker symbol (required)")
	sellCmd.Flags().StringP("shares", "n", "", "number of shares sold (required)")
	_ = sellCmd.MarkFlagRequired("ticker")
	_ = sellCmd.MarkFlagRequired("shares")
}

// wire connects the ledger service to its postgres store and price
// source. The returned cleanup closes the database connection.
func wire(ctx context.Context) (*ledger.Service, func(), error) {
	db, err := postgres.NewDB(cfg.Database.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := postgres.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}

	holdingRepo := postgres.NewHoldingRepository(db)
	summaryRepo := postgres.NewSummaryRepository(db)
	prices := yahoo.NewClient(cfg.PriceSource.BaseURL, cfg.PriceSource.Timeout(), log)

	svc := ledger.NewService(holdingRepo, summaryRepo, prices, log)
	return svc, func() { db.Close() }, nil
}

var buyCmd = &cobra.Command{
	Use:   "buy",
	Short: "Record a purchase of shares",
	RunE: func(cmd *cobra.Command, args []string) error {
		ticker, _ := cmd.Flags().GetString("ticker")
		dateStr, _ := cmd.Flags().GetString("date")
		sharesStr, _ := cmd.Flags().GetString("shares")

		purchaseDate, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return fmt.Errorf("invalid purchase date %q, expected YYYY-MM-DD", dateStr)
		}
		shares, err := decimal.NewFromString(sharesStr)
		if err != nil {
			return fmt.Errorf("invalid share count %q", sharesStr)
		}

		ctx := cmd.Context()
		svc, cleanup, err := wire(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		h, err := svc.Buy(ctx, ticker, purchaseDate, shares)
		if err != nil {
			return userError(err)
		}

		fmt.Printf("Bought %s %s at %s; position is now %s shares, cost basis %s\n",
			shares, h.Ticker, h.LastKnownPrice.StringFixed(2), h.SharesOwned, h.CostBasis.StringFixed(2))
		return printHoldings(ctx, svc)
	},
}

var sellCmd = &cobra.Command{
	Use:   "sell",
	Short: "Record a sale of shares",
	RunE: func(cmd *cobra.Command, args []string) error {
		ticker, _ := cmd.Flags().GetString("ticker")
		sharesStr, _ := cmd.Flags().GetString("shares")

		shares, err := decimal.NewFromString(sharesStr)
		if err != nil {
			return fmt.Errorf("invalid share count %q", sharesStr)
		}

		ctx := cmd.Context()
		svc, cleanup, err := wire(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		h, err := svc.Sell(ctx, ticker, shares)
		if err != nil {
			return userError(err)
		}

		if h.SharesOwned.IsZero() {
			fmt.Printf("Sold the entire %s position\n", h.Ticker)
		} else {
			fmt.Printf("Sold %s %s; %s shares remain at cost basis %s\n",
				shares, h.Ticker, h.SharesOwned, h.CostBasis.StringFixed(2))
		}
		return printHoldings(ctx, svc)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Refresh every holding with the latest market price",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, cleanup, err := wire(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		if _, err := svc.Refresh(ctx); err != nil {
			return userError(err)
		}
		return printHoldings(ctx, svc)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the current holdings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, cleanup, err := wire(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		return printHoldings(ctx, svc)
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the portfolio summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, cleanup, err := wire(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		sum, err := svc.GetSummary(ctx)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "Holdings\t%d\n", sum.HoldingCount)
		fmt.Fprintf(w, "Total invested\t%s\n", sum.TotalInvested.StringFixed(2))
		fmt.Fprintf(w, "Total shares\t%s\n", sum.TotalShares)
		fmt.Fprintf(w, "Average price per share\t%s\n", sum.AveragePricePerShare.StringFixed(2))
		fmt.Fprintf(w, "Overall growth\t%s%%\n", sum.OverallPercentGrowth.StringFixed(2))
		if !sum.UpdatedAt.IsZero() {
			fmt.Fprintf(w, "Updated\t%s\n", sum.UpdatedAt.Format(time.RFC3339))
		}
		return w.Flush()
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Refresh prices on a schedule until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, cleanup, err := wire(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		refresher, err := scheduler.NewRefresher(cfg.Refresh.Schedule, svc, log)
		if err != nil {
			return err
		}

		refresher.Start()
		log.WithField("schedule", cfg.Refresh.Schedule).Info("watching; press Ctrl-C to stop")

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
		sig := <-sigChan
		log.WithField("signal", sig.String()).Info("shutting down")

		refresher.Stop()
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tracker %s (%s)\n", version, commit)
	},
}

// userError keeps recoverable ledger errors readable on the terminal;
// anything else passes through untouched.
func userError(err error) error {
	switch {
	case errors.Is(err, domain.ErrNoSuchHolding),
		errors.Is(err, domain.ErrInsufficientShares),
		errors.Is(err, domain.ErrInvalidTransaction),
		errors.Is(err, domain.ErrPriceUnavailable):
		return fmt.Errorf("nothing recorded: %w", err)
	default:
		return err
	}
}

func printHoldings(ctx context.Context, svc *ledger.Service) error {
	holdings, err := svc.ListHoldings(ctx)
	if err != nil {
		return err
	}

	if len(holdings) == 0 {
		fmt.Println("The ledger is empty.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TICKER\tSHARES\tCOST BASIS\tLAST PRICE\t% CHANGE")
	for _, h := range holdings {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s%%\n",
			h.Ticker,
			h.SharesOwned,
			h.CostBasis.StringFixed(2),
			h.LastKnownPrice.StringFixed(2),
			h.PercentChange.StringFixed(2),
		)
	}
	return w.Flush()
}
