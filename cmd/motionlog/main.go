package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"example.com/motionlog/internal/domain"
	"example.com/motionlog/internal/events"
	"example.com/motionlog/internal/live"
	"example.com/motionlog/internal/sensor"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "motionlog",
		Short:         "Offline tools for motionlog sessions and samples",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newClassifyCmd())
	root.AddCommand(newIconCmd())
	return root
}

func newClassifyCmd() *cobra.Command {
	var summaryOnly bool

	cmd := &cobra.Command{
		Use:   "classify [file]",
		Short: "Classify JSON-lines accelerometer samples (reads stdin when file is - or omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return classify(in, cmd.OutOrStdout(), summaryOnly)
		},
	}
	cmd.Flags().BoolVar(&summaryOnly, "summary", false, "print only per-category counts")
	return cmd
}

func classify(in io.Reader, out io.Writer, summaryOnly bool) error {
	classifier := live.NewClassifier()
	counts := make(map[live.MotionCategory]int)

	scanner := bufio.NewScanner(in)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var msg events.SampleMessage
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		ev := sensor.FromMessage(msg)
		if ev.Type != sensor.Accelerometer {
			continue
		}

		reading := classifier.Observe(live.Sample{X: ev.Values[0], Y: ev.Values[1], Z: ev.Values[2]})
		counts[reading.Category]++
		if !summaryOnly {
			_, _ = fmt.Fprintf(out, "%d\tmagnitude=%.3f\tintensity=%.3f\t%s\n", line, reading.Magnitude, reading.Intensity, reading.Category)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if summaryOnly {
		for _, c := range []live.MotionCategory{live.NoMovement, live.Walking, live.Running, live.Intense} {
			_, _ = fmt.Fprintf(out, "%s\t%d\n", c.Key(), counts[c])
		}
	}
	return nil
}

func newIconCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "icon <name...>",
		Short: "Resolve activity names to icons",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range args {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, domain.ResolveIcon(name))
			}
			return nil
		},
	}
}
