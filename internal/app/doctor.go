package app

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/xelth-com/ecksnap/internal/config"
	"github.com/xelth-com/ecksnap/internal/output"
	"github.com/xelth-com/ecksnap/internal/pathlist"
	"github.com/xelth-com/ecksnap/internal/skeleton"
	"github.com/xelth-com/ecksnap/internal/tokens"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check whether the ecksnap setup is healthy",
	Long: `Run a series of health checks against your ecksnap configuration and
environment. Prints a pass/fail line for each check and a summary of
how many checks passed.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// doctorCheck holds the result of a single health check.
type doctorCheck struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// doctorOutput is the JSON-serializable result of the doctor command.
type doctorOutput struct {
	Checks      []doctorCheck `json:"checks"`
	PassedCount int           `json:"passed"`
	TotalCount  int           `json:"total"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	if flagNoColor {
		output.SetNoColor(true)
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	var checks []doctorCheck

	// 1. Git — available for fast, gitignore-aware file discovery.
	checks = append(checks, checkGit())

	// 2. Config budgets — size and interval strings parse.
	checks = append(checks, checkBudgets(cfg))

	// 3. Output directory — exists or can be created, and is writable.
	checks = append(checks, checkOutputDir(cfg.OutputDir))

	// 4. History database — config.DBPath() exists.
	checks = append(checks, checkDatabase())

	// 5. Grammars — skeleton mode has its parsers compiled in.
	checks = append(checks, checkGrammars())

	// 6. Tokenizer — the token estimator loads its encoding.
	checks = append(checks, checkTokenizer())

	// 7. Clipboard — --clipboard has a system utility to talk to.
	checks = append(checks, checkClipboard())

	// 8. Watch daemon — PID file exists and process is running.
	checks = append(checks, checkWatchDaemon())

	// Count passes.
	passed := 0
	for _, c := range checks {
		if c.Passed {
			passed++
		}
	}

	if flagJSON {
		out := doctorOutput{
			Checks:      checks,
			PassedCount: passed,
			TotalCount:  len(checks),
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	// Render styled output.
	fmt.Println(output.Section("Doctor"))
	fmt.Println()

	for _, c := range checks {
		renderDoctorCheck(c)
	}

	fmt.Println()
	summary := fmt.Sprintf("%d/%d checks passed", passed, len(checks))
	if passed == len(checks) {
		fmt.Printf(" %s\n\n", output.StyleSuccess.Render(summary))
	} else {
		fmt.Printf(" %s\n\n", output.StyleWarning.Render(summary))
	}

	return nil
}

// renderDoctorCheck prints a single check result line.
func renderDoctorCheck(c doctorCheck) {
	var indicator string
	if c.Passed {
		indicator = output.StyleSuccess.Render("✓")
	} else {
		indicator = output.StyleWarning.Render("✗")
	}
	label := output.StyleBold.Render(c.Name)
	detail := output.StyleMuted.Render(c.Message)
	fmt.Printf("  %s  %-30s %s\n", indicator, label, detail)
}

// checkGit reports whether git is on PATH.
func checkGit() doctorCheck {
	if !pathlist.GitAvailable() {
		return doctorCheck{
			Name:    "Git",
			Passed:  false,
			Message: "not found on PATH, file discovery falls back to walking",
		}
	}
	return doctorCheck{
		Name:    "Git",
		Passed:  true,
		Message: "on PATH, repositories use git file discovery",
	}
}

// checkBudgets verifies that the configured size and interval strings parse.
func checkBudgets(cfg *config.Config) doctorCheck {
	if _, err := cfg.FileBudget(); err != nil {
		return doctorCheck{Name: "Config budgets", Passed: false, Message: err.Error()}
	}
	if _, err := cfg.TotalBudget(); err != nil {
		return doctorCheck{Name: "Config budgets", Passed: false, Message: err.Error()}
	}
	if _, err := cfg.WatchInterval(); err != nil {
		return doctorCheck{Name: "Config budgets", Passed: false, Message: err.Error()}
	}
	return doctorCheck{
		Name:    "Config budgets",
		Passed:  true,
		Message: fmt.Sprintf("max_file_size %s, max_total_size %s, watch.interval %s", cfg.MaxFileSize, cfg.MaxTotalSize, cfg.Watch.Interval),
	}
}

// checkOutputDir verifies the artifact directory can be created and written.
func checkOutputDir(dir string) doctorCheck {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return doctorCheck{
			Name:    "Output directory",
			Passed:  false,
			Message: fmt.Sprintf("cannot create %s: %v", dir, err),
		}
	}
	probe, err := os.CreateTemp(dir, ".ecksnap-probe-*")
	if err != nil {
		return doctorCheck{
			Name:    "Output directory",
			Passed:  false,
			Message: fmt.Sprintf("not writable: %v", err),
		}
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return doctorCheck{
		Name:    "Output directory",
		Passed:  true,
		Message: dir,
	}
}

// checkDatabase verifies that the run history database file exists.
func checkDatabase() doctorCheck {
	dbPath := config.DBPath()
	_, err := os.Stat(dbPath)
	if err != nil {
		return doctorCheck{
			Name:    "History database",
			Passed:  false,
			Message: fmt.Sprintf("not found at %s (run 'ecksnap create' to create)", dbPath),
		}
	}
	return doctorCheck{
		Name:    "History database",
		Passed:  true,
		Message: dbPath,
	}
}

// checkGrammars reports the compiled-in tree-sitter grammars.
func checkGrammars() doctorCheck {
	langs := skeleton.NewRegistry().Languages()
	if len(langs) == 0 {
		return doctorCheck{
			Name:    "Skeleton grammars",
			Passed:  false,
			Message: "no grammars compiled in, --skeleton passes files through",
		}
	}
	return doctorCheck{
		Name:    "Skeleton grammars",
		Passed:  true,
		Message: fmt.Sprintf("%d languages: %s", len(langs), strings.Join(langs, ", ")),
	}
}

// checkTokenizer verifies the token estimator can load its encoding.
func checkTokenizer() doctorCheck {
	n, err := tokens.Estimate("ecksnap doctor probe")
	if err != nil {
		return doctorCheck{
			Name:    "Tokenizer",
			Passed:  false,
			Message: fmt.Sprintf("encoding unavailable: %v", err),
		}
	}
	return doctorCheck{
		Name:    "Tokenizer",
		Passed:  true,
		Message: fmt.Sprintf("cl100k_base loaded (probe: %d tokens)", n),
	}
}

// checkClipboard reports whether --clipboard has a backend on this system.
func checkClipboard() doctorCheck {
	if clipboard.Unsupported {
		return doctorCheck{
			Name:    "Clipboard",
			Passed:  false,
			Message: "no clipboard utility found (install xclip or xsel on Linux)",
		}
	}
	return doctorCheck{
		Name:    "Clipboard",
		Passed:  true,
		Message: "available",
	}
}

// checkWatchDaemon checks whether the watch daemon PID file exists and the process is running.
func checkWatchDaemon() doctorCheck {
	pid, err := readPID()
	if err != nil {
		return doctorCheck{
			Name:    "Watch daemon",
			Passed:  false,
			Message: "not running (no PID file)",
		}
	}

	if !processExists(pid) {
		return doctorCheck{
			Name:    "Watch daemon",
			Passed:  false,
			Message: fmt.Sprintf("PID %d is not running (stale PID file)", pid),
		}
	}

	return doctorCheck{
		Name:    "Watch daemon",
		Passed:  true,
		Message: fmt.Sprintf("running (PID %d)", pid),
	}
}
