package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <staff-id>",
	Short: "Enroll a staff member's face",
	Long: `Store the reference face embedding of a staff member, replacing any
previous enrollment. The embedding comes from a JSON file or is extracted
from a photo by the embedding service.

Example:
  staff-clock enroll 6a1e1b0c-0000-4000-8000-000000007c01 --image portrait.jpg
  staff-clock enroll 6a1e1b0c-0000-4000-8000-000000007c01 --embedding-file face.json`,
	Args: cobra.ExactArgs(1),
	RunE: runEnroll,
}

var unenrollCmd = &cobra.Command{
	Use:   "unenroll <staff-id>",
	Short: "Remove a staff member's face enrollment",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnenroll,
}

var enrollmentsCmd = &cobra.Command{
	Use:   "enrollments",
	Short: "List face enrollments",
	RunE:  runEnrollmentsList,
}

var enrollmentsRebuildCmd = &cobra.Command{
	Use:   "rebuild-index",
	Short: "Reload enrollments and rebuild the HNSW look-alike index",
	RunE:  runEnrollmentsRebuild,
}

func init() {
	rootCmd.AddCommand(enrollCmd)
	rootCmd.AddCommand(unenrollCmd)
	rootCmd.AddCommand(enrollmentsCmd)
	enrollmentsCmd.AddCommand(enrollmentsRebuildCmd)

	enrollCmd.Flags().String("embedding-file", "", "JSON file with the embedding as an array of floats")
	enrollCmd.Flags().String("image", "", "Photo to extract the embedding from (requires EMBEDDING_URL)")
	enrollCmd.Flags().String("model", "", "Embedding model name recorded with an --embedding-file enrollment")
}

func runEnroll(cmd *cobra.Command, args []string) error {
	staffID := args[0]
	embeddingFile := mustGetString(cmd, "embedding-file")
	imagePath := mustGetString(cmd, "image")
	model := mustGetString(cmd, "model")

	if (embeddingFile == "") == (imagePath == "") {
		return errors.New("exactly one of --embedding-file or --image is required")
	}

	ctx := context.Background()
	b, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer b.Close()

	if imagePath != "" {
		data, err := os.ReadFile(imagePath)
		if err != nil {
			return fmt.Errorf("reading image: %w", err)
		}
		if err := b.service.EnrollFromImage(ctx, staffID, data); err != nil {
			return fmt.Errorf("enrolling %s: %w", staffID, err)
		}
	} else {
		embedding, err := readEmbeddingFile(embeddingFile)
		if err != nil {
			return err
		}
		if err := b.service.Enroll(ctx, staffID, embedding, model); err != nil {
			return fmt.Errorf("enrolling %s: %w", staffID, err)
		}
	}

	if jsonOutput {
		return outputJSON(map[string]any{"staff_id": staffID, "enrolled": true})
	}
	fmt.Printf("Enrolled %s\n", staffID)
	return nil
}

func runUnenroll(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	b, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer b.Close()

	if err := b.service.Unenroll(ctx, args[0]); err != nil {
		return fmt.Errorf("unenrolling %s: %w", args[0], err)
	}
	if jsonOutput {
		return outputJSON(map[string]any{"staff_id": args[0], "enrolled": false})
	}
	fmt.Printf("Removed enrollment of %s\n", args[0])
	return nil
}

func runEnrollmentsList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	b, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer b.Close()

	list, err := b.service.ListEnrollments(ctx)
	if err != nil {
		return fmt.Errorf("listing enrollments: %w", err)
	}
	if jsonOutput {
		return outputJSON(map[string]any{"enrollments": list, "count": len(list)})
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STAFF ID\tMODEL\tENROLLED AT")
	for _, e := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.StaffID, e.Model, e.EnrolledAt.Format("2006-01-02 15:04"))
	}
	w.Flush()
	fmt.Printf("\nTotal: %d enrollments\n", len(list))
	return nil
}

func runEnrollmentsRebuild(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	b, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer b.Close()

	status, err := b.service.RebuildIndex(ctx)
	if err != nil {
		return fmt.Errorf("rebuilding index: %w", err)
	}
	if jsonOutput {
		return outputJSON(status)
	}
	fmt.Printf("Loaded %d enrollments (look-alike index: %v)\n", status.Enrollments, status.HNSWActive)
	return nil
}
