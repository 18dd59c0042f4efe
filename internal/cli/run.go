package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/qbridge-labs/qbridge/pkg/core"
)

func newRunCommand() *cobra.Command {
	var shots int

	cmd := &cobra.Command{
		Use:   "run <program.json>",
		Short: "Execute a program file and print the measurement counts",
		Long: `Execute a single program against the configured backend without starting
the server. The argument is a JSON file holding the operation list. Counts
are printed to stdout as JSON, sorted by bitstring.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgram(cmd, args[0], shots)
		},
	}

	cmd.Flags().IntVar(&shots, "shots", 1024, "number of shots to sample")
	return cmd
}

func runProgram(cmd *cobra.Command, path string, shots int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read program file: %w", err)
	}
	var program core.Program
	if err := json.Unmarshal(data, &program); err != nil {
		return fmt.Errorf("failed to parse program file %s: %w", path, err)
	}

	rt, err := buildRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	job := core.NewJob(uuid.New().String(), shots, program)
	job = rt.pipeline.Run(cmd.Context(), job, nil)
	if job.State == core.JobFailed {
		return fmt.Errorf("job %s failed (%s): %s", job.ID, job.ErrorKind(), job.Err)
	}

	keys := make([]string, 0, len(job.Histogram))
	for k := range job.Histogram {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "{")
	for i, k := range keys {
		sep := ","
		if i == len(keys)-1 {
			sep = ""
		}
		fmt.Fprintf(out, "  %q: %d%s\n", k, job.Histogram[k], sep)
	}
	fmt.Fprintln(out, "}")
	return nil
}
