package main

import (
	"fmt"
	"os"
	"time"

	"github.com/oisee/sim8086/internal/asmtext"
	"github.com/oisee/sim8086/internal/conform"
	"github.com/oisee/sim8086/internal/loader"
	"github.com/oisee/sim8086/internal/report"
	"github.com/oisee/sim8086/internal/sim"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sim8086",
		Short: "8086 instruction decoder and simulator",
	}

	rootCmd.AddCommand(newDecodeCmd())
	rootCmd.AddCommand(newConformCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newDecodeCmd() *cobra.Command {
	var (
		doExec bool
		dump   bool
		output string
		quiet  bool
	)

	cmd := &cobra.Command{
		Use:   "decode <file>",
		Short: "Decode (and optionally execute) an 8086 binary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dump && !doExec {
				return fmt.Errorf("decode: --dump requires --exec")
			}

			path := args[0]
			code, err := loader.ReadCode(path)
			if err != nil {
				return err
			}

			listing, err := sim.Run(code, doExec)
			if err != nil {
				return err
			}

			outPath := output
			if outPath == "" {
				outPath = loader.OutputName(path)
			}
			if err := loader.WriteListing(outPath, listing.Lines); err != nil {
				return err
			}

			if !quiet {
				fmt.Println("bits 16")
				for _, line := range listing.Lines {
					fmt.Println(line)
				}
			}

			if doExec {
				fmt.Print(asmtext.FinalState(listing.State))
				if dump {
					dumpPath := "sim86_memory_0.data"
					if err := loader.DumpMemory(dumpPath, listing.State.Mem[:], listing.State.MemUsed); err != nil {
						return err
					}
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&doExec, "exec", false, "execute the decoded program")
	cmd.Flags().BoolVar(&dump, "dump", false, "write sim86_memory_0.data (requires --exec)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "override the listing output path")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "suppress echoing the listing to stdout")

	return cmd
}

func newConformCmd() *cobra.Command {
	var (
		iterations int
		workers    int
		seed       int64
		checkpoint string
		reportPath string
	)

	cmd := &cobra.Command{
		Use:   "conform",
		Short: "Fuzz the decoder and executor against the documented conformance properties",
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			table := conform.Run(conform.Config{
				Iterations: iterations,
				NumWorkers: workers,
				Seed:       seed,
			})

			failures := table.Failures()
			fmt.Printf("conform: %d failures, %s elapsed\n", len(failures), time.Since(start).Round(time.Millisecond))
			for _, f := range failures {
				fmt.Printf("  [%s] %s\n", f.Property, f.Description)
			}

			if checkpoint != "" {
				ckpt := &report.Checkpoint{Completed: iterations, Seed: seed, Failures: failures}
				if err := report.SaveCheckpoint(checkpoint, ckpt); err != nil {
					return err
				}
			}

			if reportPath != "" {
				if err := report.WriteJSON(reportPath, failures); err != nil {
					return err
				}
			}

			if len(failures) > 0 {
				return fmt.Errorf("conform: %d property violations found", len(failures))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&iterations, "iterations", 1000, "number of randomly generated programs to check")
	cmd.Flags().IntVar(&workers, "workers", 0, "number of workers (0 = NumCPU)")
	cmd.Flags().Int64Var(&seed, "seed", 1, "seed for the random program generator")
	cmd.Flags().StringVar(&checkpoint, "checkpoint", "", "checkpoint file to write on completion")
	cmd.Flags().StringVar(&reportPath, "report", "", "JSON output path for any failures found")

	return cmd
}
