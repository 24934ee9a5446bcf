package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fieldscope/fieldscope/internal/model"
	"github.com/fieldscope/fieldscope/internal/session"
)

// sessionCmd represents the interactive session command
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Run an interactive field session",
	Long: `Session starts a long-running interactive loop against the configured
frame spool. Commands:

  scan                 run a safety check on the current frame
  diagnose [context]   diagnose the likely fault (blocked while DANGER/UNCERTAIN)
  repair [context]     request repair guidance (requires SAFE)
  state                print the current safety state
  log                  print the session event log
  report               assemble an incident report
  quit                 end the session`,
	RunE: runSession,
}

func init() {
	rootCmd.AddCommand(sessionCmd)
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	deps, cleanup, err := buildDeps(cfg, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	orch := session.New(cfg, deps)
	ctx := cmd.Context()

	fmt.Printf("fieldscope session %s\n", orch.SessionID())
	fmt.Println("type 'scan' to begin, 'quit' to end")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("[%s] > ", orch.State())
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		verb, rest, _ := strings.Cut(line, " ")
		switch verb {
		case "scan":
			runTrigger(ctx, orch, model.ModeSafetyCheck, rest)
		case "diagnose":
			runTrigger(ctx, orch, model.ModeDiagnosis, rest)
		case "repair":
			runTrigger(ctx, orch, model.ModeRepairGuide, rest)
		case "state":
			fmt.Printf("safety state: %s\n", orch.State())
		case "log":
			printLog(orch.Log())
		case "report":
			doc, err := orch.GenerateReport(ctx)
			if err != nil {
				fmt.Printf("report failed: %v\n", err)
				continue
			}
			if doc == "" {
				fmt.Println("nothing to report yet")
				continue
			}
			fmt.Println(doc)
		case "quit", "exit":
			return nil
		case "help":
			fmt.Println(cmd.Long)
		default:
			fmt.Printf("unknown command %q (try 'help')\n", verb)
		}
	}
	return scanner.Err()
}

func runTrigger(ctx context.Context, orch *session.Orchestrator, mode model.OperatingMode, userText string) {
	result, err := orch.TriggerAnalysis(ctx, mode, userText)
	if err != nil {
		fmt.Printf("not analyzed: %v\n", err)
		return
	}
	printResult(result)
}

func printResult(result *model.AnalysisResult) {
	marker := ""
	if result.Synthetic {
		marker = " (synthetic)"
	}
	fmt.Printf("%s%s: %s\n", result.Status, marker, result.Headline)
	fmt.Printf("  %s\n", result.Reasoning)
	fmt.Printf("  action: %s\n", result.ActionRequired)
	for i, step := range result.RepairSteps {
		fmt.Printf("  %d. %s\n", i+1, step)
	}
}

func printLog(entries []model.LogEntry) {
	if len(entries) == 0 {
		fmt.Println("log is empty")
		return
	}
	for _, e := range entries {
		fmt.Printf("%s  [%s] %s\n", e.Timestamp.Local().Format("15:04:05"), e.Source, e.Message)
	}
}
