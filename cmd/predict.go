package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/tripcost/app"
	"github.com/kilianp07/tripcost/core/controller"
	"github.com/kilianp07/tripcost/core/model"
)

var (
	tripFlags  = model.DefaultTripRequest()
	predictOut string
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Estimate the cost of one trip",
	RunE:  runPredict,
}

func init() {
	addTripFlags(predictCmd)
	predictCmd.Flags().StringVarP(&predictOut, "output", "o", "text", "output format: text or json")
	rootCmd.AddCommand(predictCmd)
}

func addTripFlags(c *cobra.Command) {
	f := c.Flags()
	f.StringVar(&tripFlags.Destination, string(model.FieldDestination), tripFlags.Destination, "city, country")
	f.StringVar(&tripFlags.Duration, string(model.FieldDuration), tripFlags.Duration, "trip length in days")
	f.StringVar(&tripFlags.Age, string(model.FieldAge), tripFlags.Age, "traveler age")
	f.StringVar(&tripFlags.Gender, string(model.FieldGender), tripFlags.Gender, optionsHelp(model.FieldGender))
	f.StringVar(&tripFlags.Nationality, string(model.FieldNationality), tripFlags.Nationality, "traveler nationality")
	f.StringVar(&tripFlags.Accommodation, string(model.FieldAccommodation), tripFlags.Accommodation, optionsHelp(model.FieldAccommodation))
	f.StringVar(&tripFlags.Transportation, string(model.FieldTransportation), tripFlags.Transportation, optionsHelp(model.FieldTransportation))
}

func optionsHelp(f model.Field) string {
	return "one of " + strings.Join(model.Options(f), ", ")
}

func runPredict(cmd *cobra.Command, _ []string) error {
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

	c := sess.Controller
	if bad := c.Form().InvalidFields(); len(bad) > 0 {
		return fmt.Errorf("invalid trip: check %v", bad)
	}
	done, ok := c.Submit(ctx)
	if !ok {
		return fmt.Errorf("submit rejected")
	}
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	st := c.State()
	if st.Phase == controller.PhaseFailed {
		return fmt.Errorf("prediction failed: %s", st.Message)
	}
	b, _ := c.Breakdown()
	if predictOut == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Trip      model.TripRequest    `json:"trip"`
			Breakdown controller.Breakdown `json:"breakdown"`
		}{c.Form().Request(), b})
	}
	printBreakdown(cmd.OutOrStdout(), c.Form().Request(), b)
	return nil
}

func printBreakdown(w io.Writer, req model.TripRequest, b controller.Breakdown) {
	fmt.Fprintf(w, "%s, %d days, %s + %s\n", req.Destination, b.DurationDays, req.Accommodation, req.Transportation)
	for _, l := range b.Lines() {
		fmt.Fprintf(w, "  %-24s %10s  %s\n", l.Label, l.Amount, l.Note)
	}
}
