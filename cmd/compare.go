package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/tripcost/app"
	"github.com/kilianp07/tripcost/core/compare"
	"github.com/kilianp07/tripcost/core/controller"
)

var compareDestinations []string

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Quote the suggested destinations with the same trip parameters",
	RunE:  runCompare,
}

func init() {
	addTripFlags(compareCmd)
	compareCmd.Flags().StringArrayVar(&compareDestinations, "destinations", nil, "destinations to quote instead of the suggestions")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sess, err := app.New(cfg, app.WithInitialRequest(tripFlags))
	if err != nil {
		return err
	}
	sess.Start(ctx)
	defer func() { _ = sess.Close() }()

	dests := compareDestinations
	if len(dests) == 0 {
		dests = sess.Suggestions(ctx)
	}
	quotes, err := compare.Run(ctx, sess.Controller, dests)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, q := range quotes {
		if q.Result == nil {
			fmt.Fprintf(out, "  %-24s %10s  %s\n", q.Destination, "-", q.Message)
			continue
		}
		fmt.Fprintf(out, "  %-24s %10s\n", q.Destination, controller.FormatCurrency(q.Result.Total()))
	}
	s := compare.Summarize(quotes)
	if s.Quoted == 0 {
		return fmt.Errorf("no destination could be quoted")
	}
	fmt.Fprintf(out, "mean %s, std dev %s, cheapest %s (%s), priciest %s (%s)\n",
		controller.FormatCurrency(s.Mean), controller.FormatCurrency(s.StdDev),
		s.Cheapest, controller.FormatCurrency(s.Min),
		s.Priciest, controller.FormatCurrency(s.Max))
	return nil
}
