package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bloch-labs/bloch/cmd/bloch/examples"
	"github.com/bloch-labs/bloch/pkg/bloch"
	"github.com/spf13/cobra"
)

var (
	shotsFlag  int
	configFlag string
	noQASM     bool
)

var runCmd = &cobra.Command{
	Use:   "run <example-name>",
	Short: "Run one of the built-in example programs",
	Long: fmt.Sprintf(`Run a pre-built Bloch example program, print its tracked-outcome
histogram (if any), and print its QASM transcript.

Available examples:
  %s`, strings.Join(examples.Names(), ", ")),
	Args: cobra.ExactArgs(1),
	RunE: runExample,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVar(&shotsFlag, "shots", 0, "override the program's @shots(N) count (0 uses the program's own annotation, or 1 if absent)")
	runCmd.Flags().StringVar(&configFlag, "config", "", "path to a YAML EngineConfig file")
	runCmd.Flags().BoolVar(&noQASM, "no-qasm", false, "suppress QASM transcript output")
}

func runExample(_ *cobra.Command, args []string) error {
	name := args[0]
	program, ok := examples.Get(name)
	if !ok {
		return fmt.Errorf("unknown example %q (available: %s)", name, strings.Join(examples.Names(), ", "))
	}

	var opts []bloch.Option
	if configFlag != "" {
		cfg, err := bloch.LoadConfig(configFlag)
		if err != nil {
			return fmt.Errorf("failed to load config %s: %w", configFlag, err)
		}
		opts = append(opts, bloch.WithConfig(cfg))
	}
	if noQASM {
		opts = append(opts, bloch.WithTranscript(false))
	}
	engine := bloch.New(opts...)

	shots := shotsFlag
	if shots <= 0 {
		shots = 1
		if main := program.Main(); main != nil {
			if anno, ok := main.HasAnnotation("shots"); ok {
				shots = anno.IntArg
			}
		}
	}

	if shots > 1 {
		result, err := engine.RunShots(program, shots)
		if err != nil {
			return fmt.Errorf("execution failed: %w", err)
		}
		printTracked(result.Tracked)
	} else {
		if err := engine.Run(program); err != nil {
			return fmt.Errorf("execution failed: %w", err)
		}
		printTracked(engine.TrackedCounts())
	}

	if !noQASM {
		fmt.Fprint(os.Stdout, engine.QASM())
	}
	return nil
}

func printTracked(counts map[string]map[string]int) {
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		outcomes := counts[label]
		keys := make([]string, 0, len(outcomes))
		for k := range outcomes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%d", k, outcomes[k]))
		}
		fmt.Fprintf(os.Stdout, "%s: %s\n", label, strings.Join(parts, ", "))
	}
}
