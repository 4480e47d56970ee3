package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"Motorsize/internal/calc/bom"
	"Motorsize/internal/calc/importer"
	"Motorsize/internal/calc/lca"
	"Motorsize/internal/calc/motor"
	"Motorsize/internal/calc/report"
	"Motorsize/internal/calc/sizing"
	"Motorsize/internal/config"
	"Motorsize/internal/logging"
	"Motorsize/internal/server"

	"github.com/spf13/cobra"
)

type inputFlags struct {
	in       motor.Input
	topology string
}

func (f *inputFlags) bind(cmd *cobra.Command) {
	def := motor.DefaultInput()
	flags := cmd.Flags()
	flags.StringVarP(&f.topology, "topology", "t", def.Topology.String(), "x-motor, IPM, PMaSynREL or IM")
	flags.StringVar(&f.in.Name, "name", "", "design name (defaults to the topology)")
	flags.Float64Var(&f.in.DLRatio, "dl", 0, "rotor D/L ratio (0 selects the topology default)")
	flags.Float64Var(&f.in.AverageShearStress, "shear", def.AverageShearStress, "average airgap shear stress [kPa]")
	flags.Float64Var(&f.in.MaxRotorSpeed, "max-speed", def.MaxRotorSpeed, "maximum rotor speed [rpm]")
	flags.Float64Var(&f.in.MaxTorque, "torque", def.MaxTorque, "maximum torque [N·m]")
	flags.Float64Var(&f.in.BaseSpeed, "base-speed", def.BaseSpeed, "base speed [rpm]")
	flags.Float64Var(&f.in.AirgapFluxDensity, "flux", def.AirgapFluxDensity, "airgap flux density [T]")
}

func (f *inputFlags) calculate() (motor.Result, error) {
	top, err := sizing.ParseTopology(f.topology)
	if err != nil {
		return motor.Result{}, err
	}
	in := f.in
	in.Topology = top
	return motor.Calculate(in)
}

func sizeCmd() *cobra.Command {
	var f inputFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "size",
		Short: "Size a motor and print geometry, BOM and impact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := f.calculate()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	f.bind(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	return cmd
}

func impactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "impact [bom.json]",
		Short: "Evaluate production impact of a BOM read from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				file, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer file.Close()
				r = file
			}
			var b bom.BOM
			if err := json.NewDecoder(r).Decode(&b); err != nil {
				return fmt.Errorf("decode bom: %w", err)
			}
			if err := lca.Validate(b); err != nil {
				return err
			}
			printImpact(cmd.OutOrStdout(), lca.Evaluate(b))
			return nil
		},
	}
}

func importCmd() *cobra.Command {
	var out, template string

	cmd := &cobra.Command{
		Use:   "import [workbook.xlsx]",
		Short: "Size every row of a workbook",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if template != "" {
				return writeFile(template, func(w io.Writer) error {
					return importer.WriteInputs(w, []motor.Input{motor.DefaultInput()})
				})
			}
			if len(args) != 1 {
				return fmt.Errorf("workbook path required")
			}
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			records, rowErrs, err := importer.ReadInputs(file)
			if err != nil {
				return err
			}
			res := importer.Calculate(records)
			res.Errors = append(res.Errors, rowErrs...)

			w := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "name\ttopology\tOD [mm]\tL [mm]\tmass [kg]\tCO2 [kg]\tok")
			for _, r := range res.Results {
				fmt.Fprintf(tw, "%s\t%s\t%.1f\t%.1f\t%.2f\t%.1f\t%t\n", r.Name, r.Topology,
					r.Geometry.RotorOuterDiameterM*1000, r.Geometry.StackLengthM*1000,
					r.TotalMassKG, r.Impact.Get(lca.ClimateChange), r.OK)
			}
			tw.Flush()
			for _, e := range res.Errors {
				fmt.Fprintln(cmd.ErrOrStderr(), e.Error())
			}

			if out == "" {
				return nil
			}
			return writeFile(out, func(w io.Writer) error { return importer.WriteResults(w, res.Results) })
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write results workbook to this path")
	cmd.Flags().StringVar(&template, "template", "", "write an input template workbook to this path and exit")
	return cmd
}

func reportCmd() *cobra.Command {
	var f inputFlags
	var meta report.Meta
	var out string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Size a motor and write a PDF report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := f.calculate()
			if err != nil {
				return err
			}
			if err := writeFile(out, func(w io.Writer) error { return report.Render(w, meta, res) }); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	f.bind(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "report.pdf", "output path")
	cmd.Flags().StringVar(&meta.Project, "project", "", "project name")
	cmd.Flags().StringVar(&meta.Author, "author", "", "author")
	cmd.Flags().StringVar(&meta.Title, "title", "", "report title")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr, envFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return server.Run(ctx, cfg, log)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides ADDR)")
	cmd.Flags().StringVar(&envFile, "env", ".env", "dotenv file")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func printResult(w io.Writer, res motor.Result) {
	g := res.Geometry
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s (%s)\n", res.Name, res.Topology)
	fmt.Fprintf(tw, "rotor OD\t%.1f mm\n", g.RotorOuterDiameterM*1000)
	fmt.Fprintf(tw, "rotor ID\t%.1f mm\n", g.RotorInnerDiameterM*1000)
	fmt.Fprintf(tw, "shaft\t%.1f mm\n", g.ShaftDiameterM*1000)
	fmt.Fprintf(tw, "stack length\t%.1f mm\n", g.StackLengthM*1000)
	fmt.Fprintf(tw, "stator OD\t%.1f mm\n", g.StatorOuterDiameterM*1000)
	fmt.Fprintf(tw, "split ratio\t%.4f\n", g.SplitRatio)
	fmt.Fprintf(tw, "tip speed\t%.1f m/s\n", res.Derived.TipSpeed)
	fmt.Fprintf(tw, "power\t%.1f kW\n", res.Derived.Power/1000)
	fmt.Fprintln(tw)
	for _, c := range bom.Categories() {
		fmt.Fprintf(tw, "%s\t%.3f kg\n", c, res.BOM.Get(c))
	}
	fmt.Fprintf(tw, "Total\t%.3f kg\n", res.TotalMassKG)
	tw.Flush()
	fmt.Fprintln(w)
	printImpact(w, res.Impact)
	for _, n := range res.Notes {
		fmt.Fprintln(w, "note:", n)
	}
}

func printImpact(w io.Writer, impact lca.Impact) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range impact.Rows {
		fmt.Fprintf(tw, "%s\t%.4g\t%s\n", r.Category, r.Value, r.Unit)
	}
	tw.Flush()
}
