package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/castle-maze/game/config"
	"github.com/wricardo/castle-maze/game/engine"
)

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "check campaign files for structural errors and unwinnable levels",
		ArgsUsage: "[file ...]",
		Action:    runValidate,
	}
}

// ValidationResult captures the outcome of validating a single file.
// Notes holds per-level information for valid files; Errors holds what made
// the file invalid.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Notes  []string
}

func runValidate(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		var err error
		paths, err = campaignFiles(cmd.String("config-dir"))
		if err != nil {
			return err
		}
	}
	if len(paths) == 0 {
		return fmt.Errorf("no campaign files found in %s", cmd.String("config-dir"))
	}

	out := outWriter(cmd)
	failed := 0
	for _, path := range paths {
		result := validateFile(path)
		printValidation(out, result)
		if !result.Valid {
			failed++
		}
	}

	fmt.Fprintf(out, "\n%s\n", strings.Repeat("=", 40))
	if failed > 0 {
		fmt.Fprintln(out, "❌ Some campaigns have errors")
		return fmt.Errorf("%d of %d campaigns failed validation", failed, len(paths))
	}
	fmt.Fprintln(out, "✅ All campaigns are valid!")
	return nil
}

// campaignFiles lists the JSON and YAML files in dir
func campaignFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !config.IsCampaignFile(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// validateFile parses a campaign and flood-fills every level. A level that
// cannot be finished from its start cell makes the file invalid.
func validateFile(path string) ValidationResult {
	result := ValidationResult{File: filepath.Base(path), Valid: true}

	cfg, err := config.ParseFile(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	campaign, err := engine.NewCampaign(cfg)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	result.Notes = append(result.Notes, fmt.Sprintf("%s: %d levels, %d lives", campaign.Name, campaign.LevelCount(), campaign.MaxLives))
	for _, report := range engine.AnalyzeCampaign(campaign) {
		label := fmt.Sprintf("level %d (%s)", report.Level, report.Name)
		if !report.Winnable {
			result.Valid = false
			for _, problem := range report.Problems {
				result.Errors = append(result.Errors, label+": "+problem)
			}
			continue
		}
		note := fmt.Sprintf("%s: %d/%d coins reachable, %d required", label,
			report.ReachableCollectibles, report.Collectibles, report.RequiredCoins)
		for _, problem := range report.Problems {
			note += "; " + problem
		}
		result.Notes = append(result.Notes, note)
	}
	return result
}

func printValidation(w io.Writer, result ValidationResult) {
	fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)
	if result.Valid {
		fmt.Fprintln(w, "✅ VALID")
		for _, note := range result.Notes {
			fmt.Fprintln(w, "  "+note)
		}
		return
	}
	fmt.Fprintln(w, "❌ INVALID")
	for _, msg := range result.Errors {
		fmt.Fprintln(w, "  ❌ "+msg)
	}
}

func levelsCommand() *cli.Command {
	return &cli.Command{
		Name:  "levels",
		Usage: "summarise the levels of a campaign",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "campaign",
				Aliases: []string{"c"},
				Value:   config.DefaultConfigName,
				Usage:   "campaign name in the config directory",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print the reachability reports as JSON",
			},
		},
		Action: runLevels,
	}
}

func runLevels(ctx context.Context, cmd *cli.Command) error {
	configs, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		return err
	}
	cfg, err := configs.LoadConfig(cmd.String("campaign"))
	if err != nil {
		return err
	}
	campaign, err := engine.NewCampaign(cfg)
	if err != nil {
		return err
	}
	reports := engine.AnalyzeCampaign(campaign)

	out := outWriter(cmd)
	if cmd.Bool("json") {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}

	fmt.Fprintf(out, "%s: %s\n\n", campaign.Name, campaign.Description)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tSIZE\tCOINS\tTRAPS\tGUARD\tDARK\tEXIT\tSECRET")
	for i, report := range reports {
		lvl := campaign.Levels[i]
		fmt.Fprintf(tw, "%d\t%s\t%dx%d\t%d/%d\t%d\t%s\t%s\t%s\t%s\n",
			report.Level, report.Name,
			report.Rows, report.Cols,
			report.RequiredCoins, report.Collectibles,
			report.Traps,
			yesNo(report.HasHazard), yesNo(lvl.Dark),
			exitRoute(campaign, report.Level),
			secretRoute(campaign, report),
		)
	}
	return tw.Flush()
}

func exitRoute(c *engine.Campaign, level int) string {
	transition, next := c.ExitRoute(level)
	switch transition {
	case engine.TransitionWin:
		return "win"
	case engine.TransitionOverworld:
		return fmt.Sprintf("outside, then %d", next)
	case engine.TransitionShortcut:
		return fmt.Sprintf("shortcut to %d", next)
	default:
		return fmt.Sprintf("%d", next)
	}
}

func secretRoute(c *engine.Campaign, report engine.ReachabilityReport) string {
	if !report.HasSecret {
		return "-"
	}
	target, ok := c.SecretTarget()
	if !ok {
		return "dead end"
	}
	return fmt.Sprintf("to %d", target)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}
