package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vzahanych/weather-bot-app/internal/aggregator"
	"github.com/vzahanych/weather-bot-app/internal/config"
	"github.com/vzahanych/weather-bot-app/internal/render"
)

const maxForecastDays = 5

func forecastCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   `forecast "<city>, <city>"`,
		Short: "Print text forecasts for a list of cities",
		Long:  `Print the same text forecasts the bot sends. Cities are separated by a comma and a space.`,
		Example: `  weather forecast "Москва, Сочи, Мурманск"
  weather forecast --days 5 Казань`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 || days > maxForecastDays {
				return fmt.Errorf("--days must be between 1 and %d", maxForecastDays)
			}

			cfg := *config.GetConfig()
			// no bot here, so no token needed
			cfg.Bot.Enabled = false
			if err := cfg.Validate(); err != nil {
				return err
			}

			agg, err := newAggregator(&cfg)
			if err != nil {
				return err
			}

			cities := aggregator.SplitCities(strings.Join(args, " "))
			result, err := agg.GetForecasts(cmd.Context(), cities, days)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), render.ErrorMessage(err))
				return err
			}

			for _, cf := range result {
				if cf.Err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), render.ErrorMessage(cf.Err))
					continue
				}
				fmt.Fprint(cmd.OutOrStdout(), render.FormatText(cf.City, days, cf.Days))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 3, "number of forecast days")

	return cmd
}
