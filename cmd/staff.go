package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/kozaktomas/staff-clock/internal/database"
	"github.com/kozaktomas/staff-clock/internal/pin"
	"github.com/spf13/cobra"
)

var staffCmd = &cobra.Command{
	Use:   "staff",
	Short: "List and manage staff",
	Long:  `List the staff roster. Use subcommands to sync it from the school system, set PINs or deactivate staff.`,
	RunE:  runStaffList,
}

var staffListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the staff roster",
	RunE:  runStaffList,
}

var staffSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Copy the roster from the school management system (ROSTER_DATABASE_URL)",
	RunE:  runStaffSync,
}

var staffSetPinCmd = &cobra.Command{
	Use:   "set-pin <staff-id> [pin]",
	Short: "Set the fallback PIN of a staff member (a random 6-digit PIN when omitted)",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runStaffSetPin,
}

var staffDeactivateCmd = &cobra.Command{
	Use:   "deactivate <staff-id>",
	Short: "Deactivate a staff member and remove their face enrollment",
	Args:  cobra.ExactArgs(1),
	RunE:  runStaffDeactivate,
}

func init() {
	rootCmd.AddCommand(staffCmd)
	staffCmd.AddCommand(staffListCmd)
	staffCmd.AddCommand(staffSyncCmd)
	staffCmd.AddCommand(staffSetPinCmd)
	staffCmd.AddCommand(staffDeactivateCmd)

	for _, c := range []*cobra.Command{staffCmd, staffListCmd} {
		c.Flags().String("query", "", "Filter by name (accents ignored) or staff number")
		c.Flags().Bool("all", false, "Include inactive staff")
	}
}

type staffRow struct {
	ID          string `json:"id"`
	StaffNumber string `json:"staff_number"`
	FullName    string `json:"full_name"`
	Department  string `json:"department,omitempty"`
	HasPin      bool   `json:"has_pin"`
	IsActive    bool   `json:"is_active"`
}

func runStaffList(cmd *cobra.Command, args []string) error {
	query := mustGetString(cmd, "query")
	all := mustGetBool(cmd, "all")

	ctx := context.Background()
	b, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer b.Close()

	members, err := b.service.ListStaff(ctx, query, !all)
	if err != nil {
		return fmt.Errorf("listing staff: %w", err)
	}

	rows := make([]staffRow, len(members))
	for i, m := range members {
		rows[i] = staffRow{
			ID:          m.ID,
			StaffNumber: m.StaffNumber,
			FullName:    m.FullName,
			Department:  m.Department,
			HasPin:      m.PinHash != "",
			IsActive:    m.IsActive,
		}
	}
	if jsonOutput {
		return outputJSON(rows)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NUMBER\tNAME\tDEPARTMENT\tPIN\tACTIVE\tID")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%v\t%s\n", r.StaffNumber, r.FullName, r.Department, r.HasPin, r.IsActive, r.ID)
	}
	w.Flush()
	fmt.Printf("\nTotal: %d staff\n", len(rows))
	return nil
}

func runStaffSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	b, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer b.Close()

	roster, err := openRoster(b.cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to roster database: %w", err)
	}
	if roster == nil {
		return errors.New("ROSTER_DATABASE_URL environment variable is required")
	}
	defer roster.Close()

	members, err := roster.ListRoster(ctx)
	if err != nil {
		return fmt.Errorf("reading roster: %w", err)
	}
	bar := newProgressBar(len(members), "Syncing staff", "staff")

	synced, err := b.service.SyncRoster(ctx, staticRoster(members), progressFunc(bar))
	if err != nil {
		return fmt.Errorf("syncing roster after %d staff: %w", synced, err)
	}
	if jsonOutput {
		return outputJSON(map[string]int{"synced": synced, "total": len(members)})
	}
	fmt.Printf("Synced %d of %d staff\n", synced, len(members))
	return nil
}

func runStaffSetPin(cmd *cobra.Command, args []string) error {
	staffID := args[0]
	generated := len(args) == 1
	var p string
	if generated {
		var err error
		if p, err = pin.Generate(); err != nil {
			return fmt.Errorf("generating PIN: %w", err)
		}
	} else {
		p = args[1]
	}

	ctx := context.Background()
	b, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer b.Close()

	if err := b.service.SetPin(ctx, staffID, p); err != nil {
		return fmt.Errorf("setting PIN: %w", err)
	}
	if jsonOutput {
		out := map[string]any{"staff_id": staffID, "has_pin": true}
		if generated {
			out["pin"] = p
		}
		return outputJSON(out)
	}
	if generated {
		fmt.Printf("PIN for %s: %s\n", staffID, p)
		return nil
	}
	fmt.Printf("PIN set for %s\n", staffID)
	return nil
}

func runStaffDeactivate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	b, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer b.Close()

	if err := b.service.DeactivateStaff(ctx, args[0]); err != nil {
		return fmt.Errorf("deactivating %s: %w", args[0], err)
	}
	if jsonOutput {
		return outputJSON(map[string]any{"staff_id": args[0], "is_active": false})
	}
	fmt.Printf("Deactivated %s\n", args[0])
	return nil
}

// staticRoster serves an already fetched roster, so the progress bar knows the total up front.
type staticRoster []database.StaffMember

func (r staticRoster) ListRoster(ctx context.Context) ([]database.StaffMember, error) {
	return r, nil
}
