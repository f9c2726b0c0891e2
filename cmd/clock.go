package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/kozaktomas/staff-clock/internal/attendance"
	"github.com/spf13/cobra"
)

var clockCmd = &cobra.Command{
	Use:   "clock",
	Short: "Record a clock event from an embedding or a photo",
	Long: `Match a face against the enrolled staff and record a check-in or
check-out for the matched staff member. Useful for testing a terminal setup.

Example:
  staff-clock clock --type check_in --image frame.jpg
  staff-clock clock --type check_out --embedding-file probe.json --nearest 3`,
	RunE: runClock,
}

func init() {
	rootCmd.AddCommand(clockCmd)

	clockCmd.Flags().String("type", string(attendance.ClockIn), "Clock type: check_in or check_out")
	clockCmd.Flags().String("embedding-file", "", "JSON file with the probe embedding")
	clockCmd.Flags().String("image", "", "Camera frame to extract the probe from (requires EMBEDDING_URL)")
	clockCmd.Flags().String("device-id", "cli", "Device identifier recorded with the event")
	clockCmd.Flags().Int("nearest", 0, "Also print the N nearest enrollments found by PostgreSQL (embedding file only)")
}

func runClock(cmd *cobra.Command, args []string) error {
	embeddingFile := mustGetString(cmd, "embedding-file")
	imagePath := mustGetString(cmd, "image")
	deviceID := mustGetString(cmd, "device-id")
	nearest := mustGetInt(cmd, "nearest")

	ct, err := attendance.ParseClockType(mustGetString(cmd, "type"))
	if err != nil {
		return err
	}
	if (embeddingFile == "") == (imagePath == "") {
		return errors.New("exactly one of --embedding-file or --image is required")
	}

	ctx := context.Background()
	b, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer b.Close()

	var result *attendance.ClockResult
	if imagePath != "" {
		data, rerr := os.ReadFile(imagePath)
		if rerr != nil {
			return fmt.Errorf("reading image: %w", rerr)
		}
		result, err = b.service.ClockFaceImage(ctx, data, ct, deviceID)
	} else {
		probe, rerr := readEmbeddingFile(embeddingFile)
		if rerr != nil {
			return rerr
		}
		if nearest > 0 && !jsonOutput {
			if perr := printNearest(ctx, b, probe, nearest); perr != nil {
				fmt.Printf("Warning: nearest lookup failed: %v\n", perr)
			}
		}
		result, err = b.service.ClockFace(ctx, probe, ct, deviceID)
	}

	if jsonOutput {
		out := map[string]any{"result": result}
		if err != nil {
			out["error"] = err.Error()
		}
		if jerr := outputJSON(out); jerr != nil {
			return jerr
		}
		return err
	}

	if result != nil && result.Match != nil {
		fmt.Printf("Match: %s (distance %.4f, score %.2f, %d candidates)\n",
			result.Match.Decision, result.Match.Distance, result.Match.Score, result.Match.Candidates)
	}
	if err != nil {
		return fmt.Errorf("clock %s: %w", ct, err)
	}
	fmt.Printf("Recorded %s for %s (%s)\n", ct, result.StaffName, result.StaffID)
	if result.Day != nil && ct == attendance.ClockIn && result.Day.IsLate {
		fmt.Println("Marked late")
	}
	return nil
}

// printNearest shows what the database ranks closest, independent of the in-memory matcher.
func printNearest(ctx context.Context, b *backend, probe []float32, limit int) error {
	list, distances, err := b.enrollments.NearestEnrollments(ctx, probe, limit)
	if err != nil {
		return err
	}
	fmt.Println("Nearest enrollments:")
	for i, e := range list {
		fmt.Printf("  %d. %s  distance %.4f\n", i+1, e.StaffID, distances[i])
	}
	return nil
}
