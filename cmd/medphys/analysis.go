package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"medphys/pkg/analysis"
)

func runAnalysis(params *analysis.Params) (*analysis.Report, error) {
	start := time.Now()
	report, err := analysis.NewAnalyzer(params, logger).Process()
	if err != nil {
		return nil, err
	}
	logger.Debugf("Analysis completed in %.2f seconds", time.Since(start).Seconds())
	return report, nil
}

func newDepthDoseCommand() *cobra.Command {
	var dosePath, planPath string
	var depths []string

	cmd := &cobra.Command{
		Use:   "depth-dose",
		Short: "Dose along the central axis of a gantry-zero beam",
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseFloats("depths", depths)
			if err != nil {
				return err
			}

			report, err := runAnalysis(&analysis.Params{
				DosePath: dosePath,
				PlanPath: planPath,
				Depths:   values,
			})
			if err != nil {
				return err
			}

			fmt.Printf("%10s %12s\n", "Depth (mm)", "Dose (Gy)")
			for i, d := range report.Depths {
				fmt.Printf("%10.2f %12.4f\n", d, report.DepthDose[i])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dosePath, "dose", "", "RT Dose file")
	cmd.Flags().StringVar(&planPath, "plan", "", "RT Plan file")
	cmd.Flags().StringSliceVar(&depths, "depths", nil, "Depths in mm below the surface, comma separated")
	return cmd
}

func newProfileCommand() *cobra.Command {
	var dosePath, planPath string
	var displacements []string
	var depth float64

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Dose across a gantry-zero beam at a fixed depth",
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseFloats("displacements", displacements)
			if err != nil {
				return err
			}

			report, err := runAnalysis(&analysis.Params{
				DosePath:      dosePath,
				PlanPath:      planPath,
				Displacements: values,
				ProfileDepth:  depth,
				Direction:     cfg.Profile.Direction,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Profile (%s) at depth %.2f mm\n", report.Direction, depth)
			fmt.Printf("%17s %12s\n", "Displacement (mm)", "Dose (Gy)")
			for i, d := range report.Displacements {
				fmt.Printf("%17.2f %12.4f\n", d, report.Profile[i])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dosePath, "dose", "", "RT Dose file")
	cmd.Flags().StringVar(&planPath, "plan", "", "RT Plan file")
	cmd.Flags().StringSliceVar(&displacements, "displacements", nil, "Displacements in mm from the beam axis, comma separated")
	cmd.Flags().Float64Var(&depth, "depth", 0, "Depth in mm below the surface")
	cmd.Flags().String("direction", "", "inplane, inline, crossplane or crossline")
	bindSetting("profile.direction", cmd, "direction")
	return cmd
}

func newDVHCommand() *cobra.Command {
	var dosePath, structPath string
	var structures []string

	cmd := &cobra.Command{
		Use:   "dvh",
		Short: "Cumulative dose-volume histograms of named structures",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := runAnalysis(&analysis.Params{
				DosePath:   dosePath,
				StructPath: structPath,
				Structures: structures,
				Bins:       cfg.DVH.Bins,
			})
			if err != nil {
				return err
			}

			for _, result := range report.Structures {
				s := result.Summary
				fmt.Printf("\n%s: %d voxels, min %.4f Gy, mean %.4f Gy, max %.4f Gy\n",
					result.DVH.Name, s.Voxels, s.Min, s.Mean, s.Max)
				fmt.Printf("%12s %12s\n", "Dose (Gy)", "Volume (%)")
				for i, d := range result.DVH.Dose {
					fmt.Printf("%12.4f %12.2f\n", d, result.DVH.Volume[i])
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dosePath, "dose", "", "RT Dose file")
	cmd.Flags().StringVar(&structPath, "struct", "", "RT Structure Set file")
	cmd.Flags().StringSliceVar(&structures, "structures", nil, "ROI names, comma separated")
	cmd.Flags().Int("bins", 0, "Number of dose bins")
	bindSetting("dvh.bins", cmd, "bins")
	return cmd
}

func bindSetting(key string, cmd *cobra.Command, flag string) {
	if err := settings.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
		panic(err)
	}
}
