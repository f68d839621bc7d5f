package main

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newSitesCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "sites",
		Short: "列出支持的站点",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			reg, err := newRegistry()
			if err != nil {
				return err
			}

			t := newTable(stdout)
			t.AppendHeader(table.Row{"Site", "Description", "Scope", "Format"})
			for _, name := range reg.Names() {
				s, _ := reg.Get(name)
				scope := "year"
				if !s.Dated() {
					scope = "current"
				}
				t.AppendRow(table.Row{s.Name(), s.Title(), scope, s.DefaultFormat()})
			}
			t.Render()
			return nil
		},
	}
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}
