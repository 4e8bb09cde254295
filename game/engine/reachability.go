package engine

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

// ReachabilityReport summarises whether a level can be finished from its start
type ReachabilityReport struct {
	Level                 int      `json:"level"`
	Name                  string   `json:"name"`
	Rows                  int      `json:"rows"`
	Cols                  int      `json:"cols"`
	Collectibles          int      `json:"collectibles"`
	ReachableCollectibles int      `json:"reachable_collectibles"`
	RequiredCoins         int      `json:"required_coins"`
	Traps                 int      `json:"traps"`
	HasHazard             bool     `json:"has_hazard"`
	ExitReachable         bool     `json:"exit_reachable"`
	SecretReachable       bool     `json:"secret_reachable,omitempty"`
	HasSecret             bool     `json:"has_secret,omitempty"`
	Winnable              bool     `json:"winnable"`
	Problems              []string `json:"problems,omitempty"`
}

// AnalyzeLevel flood-fills a level from its start cell over non-wall cells.
// Exits are never walked through, so collectibles behind an exit do not
// count as reachable.
func AnalyzeLevel(lvl *Level) ReachabilityReport {
	g := lvl.Grid
	start := lvl.Start()
	collectibles := ResolveCollectibles(g, lvl.DesiredCollectibles)
	traps := ResolveTraps(g, lvl.DesiredTraps, BuildBlockedSet(g, collectibles, start))

	report := ReachabilityReport{
		Level:         lvl.Number,
		Name:          lvl.Name,
		Rows:          g.Rows(),
		Cols:          g.Cols(),
		Collectibles:  len(collectibles),
		RequiredCoins: lvl.RequiredCoins,
		Traps:         len(traps),
		HasHazard:     lvl.HazardSpawn != nil,
		HasSecret:     len(g.Find(SecretPassage)) > 0,
	}

	visited := mapset.New[Coordinate]()
	visited.Put(start)
	queue := []Coordinate{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		switch kind, _ := g.At(cur); kind {
		case Exit:
			report.ExitReachable = true
			continue
		case SecretPassage:
			report.SecretReachable = true
			continue
		case Wall, Open:
		}

		for _, dir := range Directions {
			next := cur.Step(dir)
			if !g.Walkable(next) || visited.Has(next) {
				continue
			}
			visited.Put(next)
			queue = append(queue, next)
		}
	}

	for _, c := range collectibles {
		if visited.Has(c) {
			report.ReachableCollectibles++
		}
	}

	if !report.ExitReachable {
		report.Problems = append(report.Problems, "exit is not reachable from the start cell")
	}
	if report.ReachableCollectibles < report.RequiredCoins {
		report.Problems = append(report.Problems, fmt.Sprintf("only %d of %d required coins are reachable",
			report.ReachableCollectibles, report.RequiredCoins))
	}
	if report.HasSecret && !report.SecretReachable {
		report.Problems = append(report.Problems, "secret passage is not reachable from the start cell")
	}
	report.Winnable = report.ExitReachable && report.ReachableCollectibles >= report.RequiredCoins
	return report
}

// AnalyzeCampaign runs AnalyzeLevel on every level
func AnalyzeCampaign(c *Campaign) []ReachabilityReport {
	reports := make([]ReachabilityReport, 0, len(c.Levels))
	for _, lvl := range c.Levels {
		reports = append(reports, AnalyzeLevel(lvl))
	}
	return reports
}
