// Command xbtprofile processes a single XBT cast offline. Temperatures are
// read as whitespace separated numbers from a file or standard input.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/spencer-p/xbtdash/pkg/cast"
	"github.com/spencer-p/xbtdash/pkg/fallrate"
	"github.com/spencer-p/xbtdash/pkg/instruments"
	"github.com/spencer-p/xbtdash/pkg/log"
	"github.com/spencer-p/xbtdash/pkg/profile"
)

type options struct {
	input     string
	probe     int
	recorder  int
	a, b      float64
	frequency float64
	maxPoints int
	debug     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "xbtprofile",
		Short:         "Convert an XBT temperature series into depth profiles",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return log.Init(opts.debug)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			log.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.input, "input", "i", "-", "File of temperatures, - for stdin")
	flags.IntVar(&opts.probe, "probe", int(instruments.SippicanT7New), "WMO 1770 probe type")
	flags.IntVar(&opts.recorder, "recorder", int(instruments.SippicanMK21), "WMO 4770 recorder type")
	flags.Float64Var(&opts.a, "a", 0, "Fall-rate coefficient A, overrides --probe with --b")
	flags.Float64Var(&opts.b, "b", 0, "Fall-rate coefficient B")
	flags.Float64Var(&opts.frequency, "frequency", 10, "Sample frequency in Hz when giving coefficients")
	flags.IntVar(&opts.maxPoints, "max-points", profile.DefaultMaxInflectionPoints, "Maximum inflection points")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	root.AddCommand(newProfileCmd(opts), newInflectionsCmd(opts), newProbesCmd())
	return root
}

func newProfileCmd(opts *options) *cobra.Command {
	var resolution string
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Print the raw, 1m, 2m or smoothed profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.load(cmd)
			if err != nil {
				return err
			}

			var p profile.Profile
			switch resolution {
			case "raw":
				p = c.RawProfile()
			case "1":
				p, err = c.OneMeterProfile()
			case "2":
				p, err = c.TwoMeterProfile()
			case "smoothed":
				for _, t := range c.SmoothedTemperatures() {
					fmt.Fprintf(cmd.OutOrStdout(), "%.4f\n", t)
				}
				return nil
			default:
				return fmt.Errorf("unknown resolution %q", resolution)
			}
			if err != nil {
				return err
			}
			printProfile(cmd.OutOrStdout(), p)
			return nil
		},
	}
	cmd.Flags().StringVarP(&resolution, "resolution", "r", "1", "raw, 1, 2 or smoothed")
	return cmd
}

func newInflectionsCmd(opts *options) *cobra.Command {
	var method string
	cmd := &cobra.Command{
		Use:   "inflections",
		Short: "Print the inflection points of the cast",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.load(cmd)
			if err != nil {
				return err
			}

			var p profile.Profile
			switch method {
			case "acceleration":
				p = c.InflectionPoints()
			case "envelope":
				p, err = c.EnvelopeInflectionPoints()
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown method %q", method)
			}
			printProfile(cmd.OutOrStdout(), p)
			return nil
		},
	}
	cmd.Flags().StringVarP(&method, "method", "m", "acceleration", "acceleration or envelope")
	return cmd
}

func newProbesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probes",
		Short: "List the known probe types",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range instruments.Probes() {
				fmt.Fprintf(cmd.OutOrStdout(), "%03d\t%-34s\t%.3f\t%.3f\n", int(p.Code), p.Name, p.Coefficients.A, p.Coefficients.B)
			}
		},
	}
}

// load reads the temperatures and builds the cast the flags describe.
func (o *options) load(cmd *cobra.Command) (*cast.Cast, error) {
	in := cmd.InOrStdin()
	if o.input != "-" {
		f, err := os.Open(o.input)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in = f
	}
	temps, err := readTemperatures(in)
	if err != nil {
		return nil, err
	}
	log.Debugf("Read %d temperatures", len(temps))

	opt := cast.WithMaxInflectionPoints(o.maxPoints)
	if cmd.Flags().Changed("a") || cmd.Flags().Changed("b") {
		m, err := fallrate.New(fallrate.Coefficients{A: o.a, B: o.b}, o.frequency)
		if err != nil {
			return nil, err
		}
		return cast.NewWithModel(temps, m, opt), nil
	}
	return cast.New(temps, instruments.Recorder(o.recorder), instruments.Probe(o.probe), opt)
}

func readTemperatures(r io.Reader) ([]float64, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	var temps []float64
	for sc.Scan() {
		t, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", len(temps), err)
		}
		temps = append(temps, t)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read temperatures: %w", err)
	}
	return temps, nil
}

func printProfile(w io.Writer, p profile.Profile) {
	for _, pt := range p {
		fmt.Fprintf(w, "%.2f\t%.4f\n", pt.Depth, pt.Temperature)
	}
}
