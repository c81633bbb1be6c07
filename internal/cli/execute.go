// Package cli implements the measure command line tool.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"MeasureInGoods/internal/calculator"
	"MeasureInGoods/internal/catalog"
	"MeasureInGoods/internal/chart"
	"MeasureInGoods/internal/collector"
	"MeasureInGoods/internal/model"
	"MeasureInGoods/internal/page"
	"MeasureInGoods/internal/recorder"
	"MeasureInGoods/internal/selection"
)

// Exit codes.
const (
	ExitSuccess      = 0
	ExitRuntimeError = 1
	ExitInvalidUsage = 2
)

const (
	plotWidth  = 60
	plotHeight = 15
)

// History lists recorded fetches.
type History interface {
	RecentFetches(limit int) ([]recorder.FetchRow, error)
}

// Deps are the collaborators the commands run against.
type Deps struct {
	Fetcher collector.Fetcher
	History History // nil when no database is configured
	Timeout time.Duration
}

// Event is one unit of output. With --json each event is a JSON line.
type Event struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Execute runs the CLI with the provided args.
func Execute(args []string, deps Deps, out, errOut io.Writer) int {
	cmd := NewRootCommand(deps, out, errOut)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(errOut, "Error:", err)
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			return ExitInvalidUsage
		}
		return ExitRuntimeError
	}
	return ExitSuccess
}

// NewRootCommand builds the root CLI command tree.
func NewRootCommand(deps Deps, out, errOut io.Writer) *cobra.Command {
	if deps.Timeout <= 0 {
		deps.Timeout = collector.DefaultTimeout
	}
	root := &cobra.Command{
		Use:           "measure",
		Short:         "price assets in goods from the terminal",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().Bool("json", false, "output JSONL")

	root.AddCommand(newCapabilitiesCommand(deps))
	root.AddCommand(newChartCommand(deps))
	root.AddCommand(newRatioCommand(deps))
	root.AddCommand(newHistoryCommand(deps))

	return root
}

type usageError struct {
	err error
}

func (u *usageError) Error() string {
	if u.err == nil {
		return "invalid usage"
	}
	return u.err.Error()
}

type runtimeError struct {
	err error
}

func (r *runtimeError) Error() string {
	if r.err == nil {
		return "runtime error"
	}
	return r.err.Error()
}

func requireArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return &usageError{err: fmt.Errorf("requires %d argument(s)", n)}
		}
		return nil
	}
}

func maxArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > n {
			return &usageError{err: fmt.Errorf("accepts at most %d argument(s)", n)}
		}
		return nil
	}
}

// capabilities fetches the catalog, falling back to the built-in one.
func capabilities(cmd *cobra.Command, deps Deps) *model.Capabilities {
	ctx, cancel := context.WithTimeout(cmd.Context(), deps.Timeout)
	defer cancel()
	caps, err := deps.Fetcher.FetchCapabilities(ctx)
	if err == nil && len(caps.Assets) > 0 {
		return caps
	}
	if err == nil {
		err = errors.New("catalog lists no assets")
	}
	fmt.Fprintln(cmd.ErrOrStderr(), catalog.FallbackNotice(err))
	return catalog.Fallback()
}

func newCapabilitiesCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities",
		Short: "list assets and the units they can be priced in",
		Args:  requireArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			caps := capabilities(cmd, deps)
			if jsonOutput(cmd) {
				return writeEvent(cmd, Event{Type: "result", Data: caps})
			}
			w := cmd.OutOrStdout()
			for _, a := range caps.Assets {
				fmt.Fprintf(w, "%-8s %s\n", a.ID, a.Label)
				for _, u := range a.Units {
					fmt.Fprintf(w, "  %-8s %s\n", u.ID, u.Label)
					for _, v := range u.Variants {
						marker := " "
						if v.ID == u.DefaultVariantID {
							marker = "*"
						}
						fmt.Fprintf(w, "    %s %-8s %s\n", marker, v.ID, v.Label)
					}
				}
			}
			return nil
		},
	}
}

func newChartCommand(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart [asset] [unit]",
		Short: "plot an asset priced in a unit",
		Args:  maxArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if len(args) > 0 {
				q.Set(selection.ParamAsset, args[0])
			}
			if len(args) > 1 {
				q.Set(selection.ParamUnit, args[1])
			}
			for _, name := range []string{
				selection.ParamVariant, selection.ParamIndex, selection.ParamRange,
				selection.ParamStart, selection.ParamEnd, selection.ParamBasket,
			} {
				if v, _ := cmd.Flags().GetString(name); v != "" {
					q.Set(name, v)
				}
			}

			caps := capabilities(cmd, deps)
			sel := selection.FromQuery(q, caps, "")
			res, err := catalog.Resolve(caps, sel)
			if err != nil {
				return writeError(cmd, err)
			}
			if res.Idle != "" {
				return &usageError{err: errors.New(res.Idle)}
			}

			series, err := load(cmd, deps, collector.Request{Path: res.Endpoint, Name: res.Title})
			if err != nil {
				return writeError(cmd, err)
			}
			pts := page.Pipeline(series.Points, sel)
			if base, _ := cmd.Flags().GetFloat64("rebase"); base > 0 && len(pts) > 0 {
				if pts, err = calculator.Rebase(pts, base); err != nil {
					return writeError(cmd, err)
				}
			}
			if err := plot(cmd, res.Title, pts); err != nil {
				return err
			}

			if x, _ := cmd.Flags().GetFloat64("hover-x"); x >= 0 {
				g := chart.Build(pts, model.Size{Width: 720, Height: 360})
				if pt, i, ok := g.Nearest(x); ok {
					return writeEvent(cmd, Event{
						Type:    "hover",
						Message: fmt.Sprintf("hover #%d %s: %s", i, pt.Timestamp, chart.FormatValue(pt.Value)),
						Data:    pt,
					})
				}
			}
			return nil
		},
	}
	cmd.Flags().String(selection.ParamVariant, "", "unit variant, e.g. kilogram")
	cmd.Flags().String(selection.ParamIndex, "", "reference index, e.g. sp500-gold")
	cmd.Flags().String(selection.ParamRange, "", "range window: 3m, 6m, 1y, 5y, 10y or max")
	cmd.Flags().String(selection.ParamStart, "", "first date, YYYY-MM-DD")
	cmd.Flags().String(selection.ParamEnd, "", "last date, YYYY-MM-DD")
	cmd.Flags().String(selection.ParamBasket, "", "custom basket as id:weight,... (with unit custom)")
	cmd.Flags().Float64("rebase", 0, "rescale so the first point equals this value")
	cmd.Flags().Float64("hover-x", -1, "report the point nearest this offset on a 720x360 canvas")
	return cmd
}

func newRatioCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "ratio <numerator-path> <denominator-path>",
		Short: "divide one series by another on matching dates",
		Args:  requireArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			num, err := load(cmd, deps, collector.Request{Path: args[0], Name: args[0]})
			if err != nil {
				return writeError(cmd, err)
			}
			den, err := load(cmd, deps, collector.Request{Path: args[1], Name: args[1]})
			if err != nil {
				return writeError(cmd, err)
			}
			title := fmt.Sprintf("%s / %s", num.Name, den.Name)
			return plot(cmd, title, calculator.Ratio(num.Points, den.Points))
		},
	}
}

func newHistoryCommand(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "show recent series fetches",
		Args:  requireArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if deps.History == nil {
				return writeError(cmd, errors.New("history requires database.sqlite_path"))
			}
			limit, _ := cmd.Flags().GetInt("limit")
			rows, err := deps.History.RecentFetches(limit)
			if err != nil {
				return writeError(cmd, err)
			}
			if jsonOutput(cmd) {
				return writeEvent(cmd, Event{Type: "result", Data: rows})
			}
			w := cmd.OutOrStdout()
			for _, r := range rows {
				fmt.Fprintf(w, "%s  %-10s %3d  %5d pts  %8s  %s\n",
					r.Time.Format(time.DateTime), r.Outcome, r.StatusCode, r.Points,
					r.Duration.Round(time.Millisecond), r.Path)
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "number of fetches to show")
	return cmd
}

// load runs one request through a loader so failures read the same as on
// the page.
func load(cmd *cobra.Command, deps Deps, req collector.Request) (*model.Series, error) {
	loader := collector.NewLoader(deps.Fetcher, nil, deps.Timeout)
	defer loader.Close()
	status, _ := loader.Load(cmd.Context(), req)
	switch s := status.(type) {
	case model.Loaded:
		return s.Series(), nil
	case model.Failed:
		return nil, errors.New(s.Message)
	default:
		return nil, fmt.Errorf("unexpected status %s", model.StatusState(status))
	}
}

func plot(cmd *cobra.Command, title string, pts []model.Observation) error {
	if jsonOutput(cmd) {
		return writeEvent(cmd, Event{Type: "result", Message: title, Data: pts})
	}
	if !calculator.Drawable(pts) {
		msg := catalog.MsgNoData
		if len(pts) == 1 {
			msg = page.MsgTooFewPoints
		}
		return writeError(cmd, errors.New(msg))
	}
	values := make([]float64, len(pts))
	for i, o := range pts {
		values[i] = o.Value
	}
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, asciigraph.Plot(values,
		asciigraph.Width(plotWidth),
		asciigraph.Height(plotHeight),
		asciigraph.Caption(title),
	))

	first, last := pts[0], pts[len(pts)-1]
	low, high, _ := calculator.Extent(pts)
	pos, _ := calculator.Position(last.Value, low, high)
	fmt.Fprintf(w, "%s .. %s  latest %s  low %s  high %s  at %s of range\n",
		first.Timestamp, last.Timestamp, chart.FormatValue(last.Value),
		chart.FormatValue(low), chart.FormatValue(high), strconv.Itoa(int(pos*100+0.5))+"%")
	return nil
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func writeError(cmd *cobra.Command, err error) error {
	if jsonOutput(cmd) {
		_ = writeEvent(cmd, Event{Type: "error", Message: err.Error()})
	}
	return &runtimeError{err: err}
}

func writeEvent(cmd *cobra.Command, event Event) error {
	if err := cmd.Context().Err(); err != nil {
		return err
	}
	if jsonOutput(cmd) {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(event)
	}
	if event.Message != "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), event.Message)
		return err
	}
	return nil
}
