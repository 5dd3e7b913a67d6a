package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"attendance/internal/model"
)

var studentsCmd = &cobra.Command{
	Use:   "students",
	Short: "List enrolled students",
	Args:  cobra.NoArgs,
	RunE:  runStudents,
}

var attendanceCmd = &cobra.Command{
	Use:   "attendance",
	Short: "List the students present on a day",
	Args:  cobra.NoArgs,
	RunE:  runAttendance,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a student with its photo and attendance",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(studentsCmd, attendanceCmd, deleteCmd)
	attendanceCmd.Flags().String("date", "", "Day to list as YYYY-MM-DD (default today)")
}

func runStudents(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer env.Close()

	students, err := env.enrollment.List(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTREAM\tPHOTO")
	for _, s := range students {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.ID, s.Name, s.Stream, s.ImageURL)
	}
	return w.Flush()
}

func runAttendance(cmd *cobra.Command, args []string) error {
	date, _ := cmd.Flags().GetString("date")
	if date == "" {
		date = model.FormatDate(time.Now())
	}

	env, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer env.Close()

	day, err := env.recorder.Day(cmd.Context(), date)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d present\n", day.Date, day.Count)
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, e := range day.Entries {
		fmt.Fprintf(w, "%d\t%s\t%s\n", e.StudentID, e.Name, e.Stream)
	}
	return w.Flush()
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid student id %q", args[0])
	}

	env, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.enrollment.Delete(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted student %d\n", id)
	return nil
}
