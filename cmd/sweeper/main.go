package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gympay/config"
	"gympay/internal/auth"
	"gympay/internal/domain"
	"gympay/internal/repository"
	"gympay/internal/service"
	"gympay/pkg/payment"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "gympay-sweeper",
		Short:   "Reconcile payments the backend still lists as pending",
		Version: Version,
	}
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Sweep outstanding payments once, or every --interval",
		Long: `Lists the backend's PENDING payments, looks each one up at Mercado Pago
and records the ones that were approved. With --interval the sweep repeats
until interrupted.`,
		RunE: runSweep,
	}
	cmd.Flags().DurationP("interval", "i", 0, "Repeat the sweep at this interval (0 runs once)")
	cmd.Flags().BoolP("json", "j", false, "Print the sweep report as JSON")
	return cmd
}

func runSweep(cmd *cobra.Command, args []string) error {
	interval, _ := cmd.Flags().GetDuration("interval")
	asJSON, _ := cmd.Flags().GetBool("json")

	cfg := config.Load()
	gateway := payment.NewMercadoPagoClient(cfg.MercadoPago.BaseURL, cfg.MercadoPago.AccessToken, cfg.MercadoPago.Timeout)
	payments := repository.NewPaymentRepository(&cfg.Backend)
	reconciler := service.NewReconciler(gateway, payments, nil, cfg.Reconcile.MembershipPeriod)
	sweeper := service.NewSweeper(payments, reconciler, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if interval > 0 {
		sweeper.Run(ctx, interval)
		return nil
	}
	report, err := sweeper.Sweep(ctx)
	if report != nil {
		printReport(report, asJSON)
	}
	return err
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for the HTTP sweep and event-log endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dni, _ := cmd.Flags().GetInt64("dni")
			email, _ := cmd.Flags().GetString("email")
			role, _ := cmd.Flags().GetString("role")

			cfg := config.Load()
			tok, err := auth.GenerateAccessToken(&cfg.JWT, dni, email, role)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().Int64("dni", 0, "Subject DNI")
	cmd.Flags().String("email", "", "Subject email")
	cmd.Flags().String("role", domain.RoleAdmin, "Role claim")
	return cmd
}

func printReport(r *service.SweepReport, asJSON bool) {
	if asJSON {
		out, _ := json.MarshalIndent(r, "", "  ")
		fmt.Println(string(out))
		return
	}
	fmt.Printf("Checked:   %d\n", r.Checked)
	fmt.Printf("Processed: %d\n", r.Processed)
	fmt.Printf("Unchanged: %d\n", r.Unchanged)
	fmt.Printf("Skipped:   %d\n", r.Skipped)
	fmt.Printf("Failed:    %d\n", r.Failed)
	fmt.Printf("Took:      %s\n", r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	for _, item := range r.Items {
		if item.Outcome == service.SweepFailed {
			fmt.Printf("  payment %d (%s): %s\n", item.PaymentID, item.ConfNumber, item.Error)
		}
	}
}
