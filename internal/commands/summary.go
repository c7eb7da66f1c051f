package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"rewards/internal/backend"
	"rewards/internal/core"
	apphttp "rewards/internal/http"
	"rewards/internal/services"
)

func newSummaryCommand(root *rootOptions) *cobra.Command {
	var (
		all       bool
		startDate string
		endDate   string
	)

	cmd := &cobra.Command{
		Use:   "summary [customerId]",
		Short: "Print reward summaries as JSON from the configured backend",
		Args: func(cmd *cobra.Command, args []string) error {
			if all && len(args) > 0 {
				return errors.New("--all takes no customer ID")
			}
			if !all && len(args) != 1 {
				return errors.New("pass a customer ID or --all")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			dateRange, err := rangeFromFlags(startDate, endDate)
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			backendCfg, err := backend.FromAppConfig(cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			be, err := backend.NewFactory(root.logger).CreateBackend(ctx, backendCfg)
			if err != nil {
				return err
			}
			defer be.Close()

			svc := services.NewRewardService(be.Source, cfg.BatchWorkers)

			var out any
			if all {
				summaries, err := svc.AllCustomerRewards(ctx, dateRange)
				if err != nil {
					return err
				}
				out = apphttp.NewCustomerRewardResponses(summaries)
			} else {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid customer ID %q: must be an integer", args[0])
				}
				summary, err := svc.CustomerRewards(ctx, id, dateRange)
				if err != nil {
					return err
				}
				out = apphttp.NewCustomerRewardResponse(summary)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "summarise every customer")
	cmd.Flags().StringVar(&startDate, "start", "", "first day of the window (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end", "", "last day of the window (YYYY-MM-DD)")
	cmd.MarkFlagsRequiredTogether("start", "end")

	return cmd
}

func rangeFromFlags(start, end string) (*core.DateRange, error) {
	if start == "" && end == "" {
		return nil, nil
	}
	s, err := core.ParseDate(start)
	if err != nil {
		return nil, fmt.Errorf("invalid --start %q: expected YYYY-MM-DD", start)
	}
	e, err := core.ParseDate(end)
	if err != nil {
		return nil, fmt.Errorf("invalid --end %q: expected YYYY-MM-DD", end)
	}
	return core.NewDateRange(s, e)
}
