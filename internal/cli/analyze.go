package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fieldscope/fieldscope/internal/camera"
	"github.com/fieldscope/fieldscope/internal/model"
	"github.com/fieldscope/fieldscope/internal/session"
)

var (
	framePath   string
	userContext string
)

// analyzeCmd represents the one-shot analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <safety_check|diagnosis|repair_guide>",
	Short: "Analyze a single frame file and exit",
	Long: `Analyze runs one classification over a frame file instead of the live
spool. Mode gating still applies: a fresh invocation starts in the IDLE
state, so repair_guide is rejected (it needs a SAFE session).

Example:
  fieldscope analyze safety_check --frame shots/panel.jpg
  fieldscope analyze diagnosis --frame shots/pump.jpg --context "intermittent rattle"`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&framePath, "frame", "", "path to the encoded frame (required)")
	analyzeCmd.Flags().StringVar(&userContext, "context", "", "optional equipment/symptom description")
	_ = analyzeCmd.MarkFlagRequired("frame")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	mode := model.OperatingMode(args[0])
	if !model.ValidMode(mode) {
		return fmt.Errorf("unknown mode %q (supported: %s, %s, %s)",
			args[0], model.ModeSafetyCheck, model.ModeDiagnosis, model.ModeRepairGuide)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	deps, cleanup, err := buildDeps(cfg, camera.FileSource{Path: framePath})
	if err != nil {
		return err
	}
	defer cleanup()

	orch := session.New(cfg, deps)
	result, err := orch.TriggerAnalysis(cmd.Context(), mode, userContext)
	if err != nil {
		return err
	}

	printResult(result)
	return nil
}
