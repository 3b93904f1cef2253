package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/ericfitz/personnel/api"
	"github.com/spf13/cobra"
)

var includeInactive bool

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "Inspect custom field definitions",
}

var fieldsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List custom field definitions in schema order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		gormDB, err := openDatabase()
		if err != nil {
			return err
		}
		defer func() { _ = gormDB.Close() }()

		defs, err := api.NewGormFieldDefinitionStore(gormDB.DB()).List(cmd.Context(), includeInactive)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(defs)
		}
		if len(defs) == 0 {
			fmt.Fprintln(out, "No field definitions")
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ORDER\tNAME\tTYPE\tREQUIRED\tACTIVE\tLABEL")
		for _, d := range defs {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%t\t%s\n", d.Order, d.Name, d.Kind, d.Required, d.Active, d.Label)
		}
		return tw.Flush()
	},
}

func init() {
	fieldsListCmd.Flags().BoolVar(&includeInactive, "include-inactive", false, "include deactivated definitions")
	fieldsCmd.AddCommand(fieldsListCmd)
}
