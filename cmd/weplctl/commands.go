package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wtpceo/dashbord-wiple/internal/exporter"
	"github.com/wtpceo/dashbord-wiple/internal/model"
	"github.com/wtpceo/dashbord-wiple/internal/service/dashboard"
	"github.com/wtpceo/dashbord-wiple/internal/store"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Print document summary and report counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withManager(cmd.Context(), func(m *dashboard.Manager) error {
				doc, err := m.Load(cmd.Context())
				if err != nil {
					return err
				}
				printSummary(cmd, m, doc)
				return nil
			})
		},
	}
}

func printSummary(cmd *cobra.Command, m *dashboard.Manager, doc *model.Document) {
	out := cmd.OutOrStdout()
	ae, sales := doc.ReportCount()
	fmt.Fprintf(out, "key:            %s\n", m.Key())
	fmt.Fprintf(out, "remote store:   %t\n", m.RemoteConfigured())
	fmt.Fprintf(out, "state:          %s\n", m.State())
	fmt.Fprintf(out, "target revenue: %.0f\n", doc.TargetRevenue)
	fmt.Fprintf(out, "reports:        ae=%d sales=%d\n", ae, sales)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROLE\tNAME\tREPORTS\tLATEST")
	for _, c := range doc.AEData {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", model.RoleAE, c.Name, len(c.Reports), latestAE(c))
	}
	for _, c := range doc.SalesData {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", model.RoleSales, c.Name, len(c.Reports), latestSales(c))
	}
	_ = w.Flush()
}

// 报告按周期倒序，首个即最新
func latestAE(c model.AEContributor) string {
	if len(c.Reports) == 0 {
		return "-"
	}
	return c.Reports[0].Period
}

func latestSales(c model.SalesContributor) string {
	if len(c.Reports) == 0 {
		return "-"
	}
	return c.Reports[0].Period
}

func newResetReportsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset-reports",
		Short: "Clear every AE and sales report, keeping baselines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := confirmed(cmd); err != nil {
				return err
			}
			return a.withManager(cmd.Context(), func(m *dashboard.Manager) error {
				doc, err := m.ResetReports(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "reports cleared")
				printSummary(cmd, m, doc)
				return nil
			})
		},
	}
	cmd.Flags().Bool("yes", false, "confirm")
	return cmd
}

func newWipeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Replace the document with bootstrap defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := confirmed(cmd); err != nil {
				return err
			}
			return a.withManager(cmd.Context(), func(m *dashboard.Manager) error {
				doc, err := m.Wipe(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "document reset to defaults")
				printSummary(cmd, m, doc)
				return nil
			})
		},
	}
	cmd.Flags().Bool("yes", false, "confirm")
	return cmd
}

func newSnapshotCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage monthly snapshots",
	}

	var order string
	list := &cobra.Command{
		Use:   "list",
		Short: "List snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withManager(cmd.Context(), func(m *dashboard.Manager) error {
				snaps, err := m.ListSnapshots(cmd.Context(), store.ParseOrder(order))
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tSNAPSHOT DATE\tAE REPORTS\tSALES REPORTS")
				for _, s := range snaps {
					ae, sales := s.Data.ReportCount()
					fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", s.ID, s.SnapshotDate, ae, sales)
				}
				return w.Flush()
			})
		},
	}
	list.Flags().StringVar(&order, "order", "desc", "asc or desc")

	save := &cobra.Command{
		Use:   "save",
		Short: "Save the current month's snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withManager(cmd.Context(), func(m *dashboard.Manager) error {
				snap, err := m.SaveSnapshot(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "snapshot %s saved\n", snap.ID)
				return nil
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := confirmed(cmd); err != nil {
				return err
			}
			return a.withManager(cmd.Context(), func(m *dashboard.Manager) error {
				if err := m.DeleteSnapshot(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "snapshot %s deleted\n", args[0])
				return nil
			})
		},
	}
	del.Flags().Bool("yes", false, "confirm")

	restore := &cobra.Command{
		Use:   "restore <id>",
		Short: "Replace the current document with a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := confirmed(cmd); err != nil {
				return err
			}
			return a.withManager(cmd.Context(), func(m *dashboard.Manager) error {
				doc, err := m.RestoreSnapshot(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "restored from snapshot %s\n", args[0])
				printSummary(cmd, m, doc)
				return nil
			})
		},
	}
	restore.Flags().Bool("yes", false, "confirm")

	diff := &cobra.Command{
		Use:   "diff <id>",
		Short: "Show changes between the current document and a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withManager(cmd.Context(), func(m *dashboard.Manager) error {
				if _, err := m.Load(cmd.Context()); err != nil {
					return err
				}
				d, err := m.DiffSnapshot(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), d)
				return nil
			})
		},
	}

	cmd.AddCommand(list, save, del, restore, diff)
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export monthly history to xlsx",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withManager(cmd.Context(), func(m *dashboard.Manager) error {
				snaps, err := m.ListSnapshots(cmd.Context(), store.Ascending)
				if err != nil {
					return err
				}
				f, err := exporter.ExportHistory(exporter.FromSnapshots(snaps), func(p exporter.ProgressEvent) {
					fmt.Fprintf(cmd.ErrOrStderr(), "[%3d%%] %s\n", p.Percent, p.Stage)
				})
				if err != nil {
					return err
				}
				defer f.Close()
				if err := f.SaveAs(output); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d snapshots to %s\n", len(snaps), output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "wiple-history.xlsx", "output file")
	return cmd
}
