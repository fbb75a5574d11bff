// Command genetropica generates synthetic dengue observations, forecasts monthly cases and
// backtests the forecaster from JSON files.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/RyoungJKT/genetropica"
	"github.com/RyoungJKT/genetropica/forecast"
	"github.com/RyoungJKT/genetropica/panel"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

const (
	formatObservations = "observations"
	formatPanel        = "panel"
)

// modelFlags are shared by the forecast and backtest subcommands.
type modelFlags struct {
	input      string
	format     string
	provinces  []string
	lag        int
	confidence float64
	table      bool
}

func (m *modelFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&m.input, "input", "i", "-", "JSON input file, - for stdin")
	cmd.Flags().StringVar(&m.format, "format", formatObservations, "input layout: observations or panel")
	cmd.Flags().StringSliceVarP(&m.provinces, "province", "p", nil, "only use these provinces (observations input)")
	cmd.Flags().IntVar(&m.lag, "lag", forecast.DefaultRainfallLag, "rainfall lag in months")
	cmd.Flags().Float64Var(&m.confidence, "confidence", forecast.DefaultConfidenceLevel, "prediction interval coverage")
	cmd.Flags().BoolVar(&m.table, "table", false, "print an aligned table instead of JSON")
}

func (m *modelFlags) forecaster(parallelization int) (*genetropica.Forecaster, error) {
	opt := &genetropica.Options{
		ForecastOptions: &forecast.Options{
			RainfallLag:     m.lag,
			ConfidenceLevel: m.confidence,
		},
		Parallelization: parallelization,
		Provinces:       m.provinces,
	}
	return genetropica.New(opt)
}

// loadPanel reads the input as a panel, aggregating raw observations when needed.
func (m *modelFlags) loadPanel(cmd *cobra.Command, f *genetropica.Forecaster) (*panel.Panel, error) {
	data, err := readInput(cmd, m.input)
	if err != nil {
		return nil, err
	}

	switch m.format {
	case formatPanel:
		p := new(panel.Panel)
		if err := json.Unmarshal(data, p); err != nil {
			return nil, fmt.Errorf("unable to decode panel, %w", err)
		}
		return p, nil
	case formatObservations:
		var obs []panel.Observation
		if err := json.Unmarshal(data, &obs); err != nil {
			return nil, fmt.Errorf("unable to decode observations, %w", err)
		}
		slog.Debug("loaded observations", "count", len(obs))
		return f.Panel(obs)
	default:
		return nil, fmt.Errorf("unknown input format %q", m.format)
	}
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read input, %w", err)
	}
	return data, nil
}

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", out)
	return err
}

func newRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "genetropica",
		Short:         "Monthly dengue case forecasting from rainfall and seasonality",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
			slog.SetDefault(slog.New(handler))
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(mockCmd())
	rootCmd.AddCommand(forecastCmd())
	rootCmd.AddCommand(backtestCmd())
	return rootCmd
}

func mockCmd() *cobra.Command {
	opt := panel.NewDefaultSimulateOptions()
	var start string
	var output string

	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Generate reproducible synthetic province observations",
		RunE: func(cmd *cobra.Command, args []string) error {
			startMonth, err := time.Parse(panel.MonthLayout, start)
			if err != nil {
				return fmt.Errorf("invalid start month %q, %w", start, err)
			}
			opt.Start = startMonth

			obs := panel.Simulate(opt)
			slog.Info("generated observations", "count", len(obs), "months", opt.Months, "seed", opt.Seed)

			if output == "" || output == "-" {
				return writeJSON(cmd.OutOrStdout(), obs)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("unable to create output, %w", err)
			}
			if err := writeJSON(f, obs); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("unable to close output, %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", opt.Start.Format(panel.MonthLayout), "first month, YYYY-MM")
	cmd.Flags().IntVar(&opt.Months, "months", opt.Months, "number of months")
	cmd.Flags().Uint64Var(&opt.Seed, "seed", opt.Seed, "random seed")
	cmd.Flags().StringSliceVarP(&opt.Provinces, "province", "p", opt.Provinces, "provinces to simulate")
	cmd.Flags().IntVar(&opt.ResponseLag, "response-lag", opt.ResponseLag, "months between rainfall and case response")
	cmd.Flags().Float64Var(&opt.NoiseScale, "noise", opt.NoiseScale, "std-dev of added noise")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file, - for stdout")
	return cmd
}

func forecastCmd() *cobra.Command {
	var flags modelFlags
	var horizon int
	var showModel bool

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast the months following the input panel",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := flags.forecaster(1)
			if err != nil {
				return err
			}
			p, err := flags.loadPanel(cmd, f)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if showModel {
				model, err := f.Fit(p)
				if err != nil {
					return err
				}
				if err := model.TablePrint(w, "", "  "); err != nil {
					return err
				}
			}

			res, err := f.Forecast(p, horizon)
			if err != nil {
				return err
			}
			slog.Debug("forecast complete", "months", p.Len(), "horizon", horizon)

			if flags.table {
				return res.TablePrint(w)
			}
			return writeJSON(w, res)
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVarP(&horizon, "horizon", "n", 3, "months to forecast")
	cmd.Flags().BoolVar(&showModel, "show-model", false, "print the fitted model before the forecast")
	return cmd
}

func backtestCmd() *cobra.Command {
	var flags modelFlags
	var testMonths int
	var parallelization int

	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Score one-step-ahead forecasts over the last months of the input panel",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := flags.forecaster(parallelization)
			if err != nil {
				return err
			}
			p, err := flags.loadPanel(cmd, f)
			if err != nil {
				return err
			}

			m := f.Backtest(p, testMonths)
			if !m.Valid() {
				slog.Warn("backtest produced no scored forecasts", "months", p.Len(), "test_months", testMonths)
			}

			w := cmd.OutOrStdout()
			if flags.table {
				return m.TablePrint(w)
			}
			return writeJSON(w, m)
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVarP(&testMonths, "test-months", "t", 6, "months held out for scoring")
	cmd.Flags().IntVar(&parallelization, "parallel", 1, "concurrent backtest iterations")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
