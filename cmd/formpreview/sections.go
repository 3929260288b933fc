package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formpreview/pkg/sections"
)

func newSectionsCmd(a *app) *cobra.Command {
	var (
		in     inputs
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "sections",
		Short: "List the field sections and their colors",
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := a.load(cmd.Context(), in)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				payload := doc.sections
				if payload == nil {
					payload = []sections.Section{}
				}
				return enc.Encode(payload)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), sections.Legend(doc.sections))
			return err
		},
	}
	in.bind(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print sections as JSON")
	return cmd
}
