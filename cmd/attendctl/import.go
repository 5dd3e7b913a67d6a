package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"attendance/internal/service/enrollment"
)

var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Enroll every photo in a directory",
	Long: `Enroll one student per .jpg, .jpeg or .png file in a directory. The
display name comes from the file name with underscores turned into spaces,
so Asha_Rao.jpg enrolls "Asha Rao". Names that are already enrolled are skipped.

Example:
  attendctl import ./photos --stream "Grade 10"`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().String("stream", "", "Stream label given to every imported student")
	importCmd.Flags().Bool("quiet", false, "Hide the progress bar")
}

func runImport(cmd *cobra.Command, args []string) error {
	stream, _ := cmd.Flags().GetString("stream")
	quiet, _ := cmd.Flags().GetBool("quiet")

	env, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer env.Close()

	files, err := photoFiles(args[0])
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No photos found")
		return nil
	}

	var bar *progressbar.ProgressBar
	if !quiet {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription("Enrolling"),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionShowCount(),
			progressbar.OptionSetItsString("photos"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionFullWidth(),
		)
	}

	res := importPhotos(cmd.Context(), env.enrollment, files, stream, bar)
	if bar != nil {
		bar.Finish()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nEnrolled %d, skipped %d, failed %d\n", res.enrolled, res.skipped, len(res.failures))
	printFailures(out, res.failures)
	return nil
}

type importResult struct {
	enrolled int
	skipped  int
	failures map[string]error
}

// importPhotos enrolls each file, skipping names that are already enrolled.
// bar may be nil.
func importPhotos(ctx context.Context, svc *enrollment.Service, files []string, stream string, bar *progressbar.ProgressBar) importResult {
	res := importResult{failures: map[string]error{}}

	for _, path := range files {
		if bar != nil {
			bar.Add(1)
		}
		name := displayName(path)

		_, err := svc.FindByName(ctx, name)
		if err == nil {
			res.skipped++
			continue
		}
		if !errors.Is(err, enrollment.ErrNotFound) {
			res.failures[path] = err
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			res.failures[path] = err
			continue
		}
		if _, err := svc.EnrollImage(ctx, name, stream, data); err != nil {
			res.failures[path] = err
			continue
		}
		res.enrolled++
	}
	return res
}

func printFailures(out io.Writer, failures map[string]error) {
	paths := make([]string, 0, len(failures))
	for p := range failures {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		fmt.Fprintf(out, "  %s: %v\n", p, failures[p])
	}
}

// photoFiles lists the photos in dir, sorted by name.
func photoFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// displayName turns "Asha_Rao.jpg" into "Asha Rao".
func displayName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.Join(strings.Fields(strings.ReplaceAll(base, "_", " ")), " ")
}
