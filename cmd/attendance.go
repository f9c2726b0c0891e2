package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var attendanceCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Attendance reports",
}

var attendanceTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show who is present, late or absent today",
	RunE:  runAttendanceToday,
}

var attendanceStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Monthly attendance statistics",
	Long: `Aggregate a month of attendance per staff member.

Example:
  staff-clock attendance stats --month 2026-03
  staff-clock attendance stats --month 2026-03 --staff-id 6a1e1b0c-0000-4000-8000-000000007c01`,
	RunE: runAttendanceStats,
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show the most recent audit log entries",
	RunE:  runAudit,
}

func init() {
	rootCmd.AddCommand(attendanceCmd)
	rootCmd.AddCommand(auditCmd)
	attendanceCmd.AddCommand(attendanceTodayCmd)
	attendanceCmd.AddCommand(attendanceStatsCmd)

	attendanceStatsCmd.Flags().String("month", "", "Month as YYYY-MM (default: current month)")
	attendanceStatsCmd.Flags().String("staff-id", "", "Only this staff member")

	auditCmd.Flags().Int("limit", 50, "Number of entries to show")
}

func formatClock(t *time.Time, loc *time.Location) string {
	if t == nil {
		return "-"
	}
	return t.In(loc).Format("15:04")
}

func runAttendanceToday(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	b, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer b.Close()

	report, err := b.service.Today(ctx)
	if err != nil {
		return fmt.Errorf("building today's report: %w", err)
	}
	if jsonOutput {
		return outputJSON(report)
	}

	loc := b.service.CurrentPolicy(ctx).Location
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NUMBER\tNAME\tSTATE\tIN\tOUT\tLATE\tMETHOD")
	for _, e := range report.Entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%v\t%s\n",
			e.StaffNumber, e.StaffName, e.State, formatClock(e.CheckInTime, loc), formatClock(e.CheckOutTime, loc), e.IsLate, e.Method)
	}
	w.Flush()
	fmt.Printf("\n%s: %d present, %d late, %d checked out, %d absent\n",
		report.Date, report.Present, report.Late, report.CheckedOut, report.Absent)
	return nil
}

func runAttendanceStats(cmd *cobra.Command, args []string) error {
	month := mustGetString(cmd, "month")
	staffID := mustGetString(cmd, "staff-id")

	ctx := context.Background()
	b, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer b.Close()

	stats, err := b.service.Stats(ctx, month, staffID)
	if err != nil {
		return fmt.Errorf("building stats: %w", err)
	}
	if jsonOutput {
		return outputJSON(stats)
	}

	fmt.Printf("Attendance for %s\n\n", stats.Month)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPRESENT\tLATE\tCHECKED OUT\tAVG IN\tHOURS\tID")
	for _, s := range stats.Staff {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\t%.2f\t%s\n",
			s.StaffName, s.DaysPresent, s.DaysLate, s.DaysCheckedOut, s.AverageCheckIn, s.HoursWorked, s.StaffID)
	}
	w.Flush()
	return nil
}

func runAudit(cmd *cobra.Command, args []string) error {
	limit := mustGetInt(cmd, "limit")

	ctx := context.Background()
	b, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer b.Close()

	entries, err := b.audit.ListAudit(ctx, limit)
	if err != nil {
		return fmt.Errorf("reading audit log: %w", err)
	}
	if jsonOutput {
		return outputJSON(entries)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tACTION\tSTAFF\tDETAILS")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Action, e.StaffID, e.Details)
	}
	w.Flush()
	return nil
}
