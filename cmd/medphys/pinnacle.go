package main

import (
	"github.com/spf13/cobra"

	"medphys/pkg/pinnacle"
)

func newPinnacleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pinnacle",
		Short: "Inspect Pinnacle datasets rendered as YAML records",
	}

	var images, plans, trials bool
	list := &cobra.Command{
		Use:   "list <dataset-dir>",
		Short: "Log the patient, images, plans and trials of a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds := pinnacle.New(args[0], pinnacle.YAMLRecordReader{}, nil, logger)

			info, err := ds.PatientInfo()
			if err != nil {
				return err
			}
			logger.Infof("Patient %v (DOB %v)", info["FullName"], info["DOB"])

			all := !images && !plans && !trials
			if images || all {
				if err := ds.LogImages(); err != nil {
					return err
				}
			}
			if trials || all {
				return ds.LogTrialNames()
			}
			if plans {
				return ds.LogPlanNames()
			}
			return nil
		},
	}
	list.Flags().BoolVar(&images, "images", false, "Log image sets")
	list.Flags().BoolVar(&plans, "plans", false, "Log plan names")
	list.Flags().BoolVar(&trials, "trials", false, "Log plans with their trials")

	cmd.AddCommand(list)
	return cmd
}
