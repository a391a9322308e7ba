package main

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/cilium/ebpf"
	"github.com/leodido/structcli"
	"github.com/lockc-project/lockc"
	"github.com/spf13/cobra"
)

// ProgramsOptions defines flags for the programs subcommand.
type ProgramsOptions struct {
	JSON bool `flag:"json" flagshort:"j" flagdescr:"Output in JSON format"`
}

func (o *ProgramsOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

type programRow struct {
	Name     string `json:"name"`
	Hook     string `json:"hook"`
	Required bool   `json:"required"`
	Section  string `json:"section,omitempty"`
	Embedded bool   `json:"embedded"`
}

func programsCmd() *cobra.Command {
	opts := &ProgramsOptions{}

	cmd := &cobra.Command{
		Use:   "programs",
		Short: "List the programs attached by run, in order",
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			rows, err := programRows(lockc.Object())
			if err != nil {
				return err
			}

			if opts.JSON {
				return printJSON(c.OutOrStdout(), rows)
			}

			tw := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tHOOK\tREQUIRED\tSECTION")
			for _, r := range rows {
				section := r.Section
				if !r.Embedded {
					section = "(missing)"
				}
				fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", r.Name, r.Hook, r.Required, section)
			}
			return tw.Flush()
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

// programRows pairs the attach sequence with the sections found in object.
func programRows(object []byte) ([]programRow, error) {
	spec, err := ebpf.LoadCollectionSpecFromReader(bytes.NewReader(object))
	if err != nil {
		return nil, fmt.Errorf("parse embedded object: %w", err)
	}

	programs := lockc.Programs()
	rows := make([]programRow, 0, len(programs))
	for _, p := range programs {
		row := programRow{Name: p.Name, Hook: p.Hook.String(), Required: p.Required}
		if ps, ok := spec.Programs[p.Name]; ok {
			row.Section = ps.SectionName
			row.Embedded = true
		}
		rows = append(rows, row)
	}
	return rows, nil
}
