package cmd

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/investiq/internal/llm"
	"github.com/abhisek/investiq/internal/store"
	"github.com/spf13/cobra"
)

var purposes = []string{llm.PurposeQuestionGen, llm.PurposeExplain, llm.PurposeWeakness}

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect logged AI requests (generation, explanations, analysis)",
}

// withStore opens only the database; the llm commands need no session.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, s *store.Store) error) error {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer s.Close()
	return fn(cmd.Context(), s)
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent AI requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		since, _ := cmd.Flags().GetDuration("since")

		if purpose != "" && !slices.Contains(purposes, purpose) {
			return fmt.Errorf("unknown purpose %q (want one of %s)", purpose, strings.Join(purposes, ", "))
		}

		opts := store.QueryOpts{Limit: limit, Purpose: purpose}
		if since > 0 {
			opts.From = time.Now().Add(-since)
		}
		return withStore(cmd, func(ctx context.Context, s *store.Store) error {
			events, err := s.EventRepo().QueryLLMEvents(ctx, opts)
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}
			printEvents(cmd.OutOrStdout(), events)
			return nil
		})
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full prompt and reply of one AI request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q", args[0])
		}
		return withStore(cmd, func(ctx context.Context, s *store.Store) error {
			e, err := s.EventRepo().GetLLMEvent(ctx, id)
			if err != nil {
				return fmt.Errorf("get event: %w", err)
			}
			if e == nil {
				return fmt.Errorf("event %d not found", id)
			}
			printEvent(cmd.OutOrStdout(), e)
			return nil
		})
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show AI token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, s *store.Store) error {
			usage, err := s.EventRepo().LLMUsageByPurpose(ctx)
			if err != nil {
				return fmt.Errorf("query usage: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(usage) == 0 {
				fmt.Fprintln(out, "No AI usage recorded yet.")
				return nil
			}
			printPurposeUsage(out, usage)

			models, err := s.EventRepo().LLMUsageByModel(ctx)
			if err != nil {
				return fmt.Errorf("query model usage: %w", err)
			}
			if len(models) > 0 {
				fmt.Fprintln(out)
				printModelCosts(out, models)
			}
			return nil
		})
	},
}

func rule(w io.Writer, n int) {
	fmt.Fprintln(w, strings.Repeat("─", n))
}

func printEvents(w io.Writer, events []store.LLMEvent) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No AI requests found.")
		return
	}
	fmt.Fprintf(w, "%-5s  %-16s  %-12s  %-24s  %6s  %6s  %6s  %s\n",
		"ID", "Time", "Purpose", "Model", "In", "Out", "Ms", "OK")
	rule(w, 96)
	for _, e := range events {
		ok := "✓"
		if !e.Success {
			ok = "✗"
		}
		fmt.Fprintf(w, "%-5d  %-16s  %-12s  %-24s  %6d  %6d  %6d  %s\n",
			e.ID,
			e.Timestamp.Local().Format("2006-01-02 15:04"),
			e.Purpose,
			truncate(e.Model, 24),
			e.InputTokens,
			e.OutputTokens,
			e.LatencyMs,
			ok,
		)
	}
}

func printEvent(w io.Writer, e *store.LLMEvent) {
	fmt.Fprintf(w, "ID:        %d\n", e.ID)
	fmt.Fprintf(w, "Time:      %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Provider:  %s (%s)\n", e.Provider, e.Model)
	fmt.Fprintf(w, "Purpose:   %s\n", e.Purpose)
	fmt.Fprintf(w, "Tokens:    %d in / %d out\n", e.InputTokens, e.OutputTokens)
	fmt.Fprintf(w, "Latency:   %dms\n", e.LatencyMs)
	if e.Success {
		fmt.Fprintln(w, "Status:    ok")
	} else {
		fmt.Fprintf(w, "Status:    failed: %s\n", e.ErrorMessage)
	}

	section := func(name, body string) {
		fmt.Fprintln(w)
		fmt.Fprintln(w, name)
		rule(w, 60)
		if body == "" {
			body = "(not captured)"
		}
		fmt.Fprintln(w, body)
	}
	section("PROMPT", e.RequestBody)
	section("REPLY", e.ResponseBody)
}

func printPurposeUsage(w io.Writer, usage []store.PurposeUsage) {
	fmt.Fprintln(w, "Usage by Purpose")
	rule(w, 72)
	fmt.Fprintf(w, "%-16s  %6s  %5s  %10s  %10s  %8s\n",
		"Purpose", "Calls", "Fail", "Input", "Output", "Avg Ms")
	rule(w, 72)

	var calls, fails, in, out int
	for _, u := range usage {
		fmt.Fprintf(w, "%-16s  %6d  %5d  %10d  %10d  %8d\n",
			u.Purpose, u.Calls, u.Failures, u.InputTokens, u.OutputTokens, u.AvgLatencyMs)
		calls += u.Calls
		fails += u.Failures
		in += u.InputTokens
		out += u.OutputTokens
	}
	rule(w, 72)
	fmt.Fprintf(w, "%-16s  %6d  %5d  %10d  %10d\n", "TOTAL", calls, fails, in, out)
}

func printModelCosts(w io.Writer, models []store.ModelUsage) {
	fmt.Fprintln(w, "Estimated Cost (USD)")
	rule(w, 72)
	fmt.Fprintf(w, "%-32s  %6s  %10s  %10s  %9s\n", "Model", "Calls", "Input", "Output", "Cost")
	rule(w, 72)

	var total float64
	var unknown []string
	for _, m := range models {
		cost := "?"
		if c := llm.LookupCost(m.Model); c != nil {
			usd := c.Cost(m.InputTokens, m.OutputTokens)
			total += usd
			cost = formatCost(usd)
		} else {
			unknown = append(unknown, m.Model)
		}
		fmt.Fprintf(w, "%-32s  %6d  %10d  %10d  %9s\n",
			truncate(m.Model, 32), m.Calls, m.InputTokens, m.OutputTokens, cost)
	}
	rule(w, 72)

	label := "TOTAL"
	if len(unknown) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Fprintf(w, "%-32s  %6s  %10s  %10s  %9s\n", label, "", "", "", formatCost(total))
	if len(unknown) > 0 {
		fmt.Fprintf(w, "\nPricing unavailable for: %s\n", strings.Join(unknown, ", "))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().Duration("since", 0, "Only show requests newer than this (e.g. 24h)")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose ("+strings.Join(purposes, ", ")+")")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
