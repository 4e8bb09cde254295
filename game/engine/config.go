package engine

import (
	"errors"
	"fmt"
	"time"
)

// CampaignConfig is the authored campaign as read from a JSON or YAML file
type CampaignConfig struct {
	Name             string           `json:"name" yaml:"name"`
	Description      string           `json:"description" yaml:"description"`
	MaxLives         int              `json:"max_lives,omitempty" yaml:"max_lives,omitempty"`
	PatrolIntervalMS int              `json:"patrol_interval_ms,omitempty" yaml:"patrol_interval_ms,omitempty"`
	FlashDurationMS  int              `json:"flash_duration_ms,omitempty" yaml:"flash_duration_ms,omitempty"`
	Overworld        *OverworldConfig `json:"overworld,omitempty" yaml:"overworld,omitempty"`
	Routing          *RoutingConfig   `json:"routing,omitempty" yaml:"routing,omitempty"`
	Levels           []LevelConfig    `json:"levels" yaml:"levels"`
}

// LevelConfig is one authored level
type LevelConfig struct {
	Name          string       `json:"name,omitempty" yaml:"name,omitempty"`
	Layout        []string     `json:"layout" yaml:"layout"`
	RequiredCoins int          `json:"required_coins" yaml:"required_coins"`
	Collectibles  []Coordinate `json:"collectibles,omitempty" yaml:"collectibles,omitempty"`
	Traps         []Coordinate `json:"traps,omitempty" yaml:"traps,omitempty"`
	HazardSpawn   *Coordinate  `json:"hazard_spawn,omitempty" yaml:"hazard_spawn,omitempty"`
	Dark          bool         `json:"dark,omitempty" yaml:"dark,omitempty"`
}

// OverworldConfig describes the overworld scene geometry
type OverworldConfig struct {
	Start    Point `json:"start" yaml:"start"`
	Min      Point `json:"min" yaml:"min"`
	Max      Point `json:"max" yaml:"max"`
	DoorMin  Point `json:"door_min" yaml:"door_min"`
	DoorMax  Point `json:"door_max" yaml:"door_max"`
	Step     int   `json:"step" yaml:"step"`
	FastStep int   `json:"fast_step" yaml:"fast_step"`
}

// RoutingConfig names the levels with special end-of-level routing. A zero
// level number disables that rule.
type RoutingConfig struct {
	OverworldLevel int `json:"overworld_level" yaml:"overworld_level"`
	ShortcutLevel  int `json:"shortcut_level" yaml:"shortcut_level"`
	ShortcutTarget int `json:"shortcut_target,omitempty" yaml:"shortcut_target,omitempty"`
	SecretLevel    int `json:"secret_level" yaml:"secret_level"`
}

// DefaultOverworld is the overworld used when a campaign does not define one
func DefaultOverworld() OverworldConfig {
	return OverworldConfig{
		Start:    Point{X: 50, Y: 80},
		Min:      Point{X: 15, Y: 60},
		Max:      Point{X: 85, Y: 90},
		DoorMin:  Point{X: 46, Y: 63},
		DoorMax:  Point{X: 54, Y: 71},
		Step:     2,
		FastStep: 4,
	}
}

// DefaultRouting is the routing used when a campaign does not define one
func DefaultRouting() RoutingConfig {
	return RoutingConfig{
		OverworldLevel: 1,
		ShortcutLevel:  3,
		SecretLevel:    4,
	}
}

// ApplyDefaults fills unset optional fields in place
func (c *CampaignConfig) ApplyDefaults() {
	if c.MaxLives == 0 {
		c.MaxLives = DefaultMaxLives
	}
	if c.PatrolIntervalMS == 0 {
		c.PatrolIntervalMS = DefaultPatrolMS
	}
	if c.FlashDurationMS == 0 {
		c.FlashDurationMS = DefaultFlashMS
	}
	if c.Overworld == nil {
		ow := DefaultOverworld()
		c.Overworld = &ow
	}
	if c.Routing == nil {
		r := DefaultRouting()
		c.Routing = &r
	}
	if c.Routing.ShortcutTarget == 0 && c.Routing.ShortcutLevel > 0 {
		c.Routing.ShortcutTarget = c.Routing.SecretLevel + 1
	}
}

// ValidateCampaignConfig checks a campaign for structural correctness. It
// applies defaults first, so a nil section is never an error.
func ValidateCampaignConfig(config *CampaignConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	config.ApplyDefaults()

	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if config.Name == "" {
		fail("name is required")
	}
	if len(config.Levels) == 0 {
		fail("at least one level is required")
	}
	if config.MaxLives < 1 {
		fail("max_lives must be at least 1, got %d", config.MaxLives)
	}
	if config.PatrolIntervalMS < 0 {
		fail("patrol_interval_ms must be positive, got %d", config.PatrolIntervalMS)
	}
	if config.FlashDurationMS < 0 {
		fail("flash_duration_ms must be positive, got %d", config.FlashDurationMS)
	}

	ow := config.Overworld
	if ow.Min.X > ow.Max.X || ow.Min.Y > ow.Max.Y {
		fail("overworld min must not exceed max")
	}
	if ow.Step < 1 || ow.FastStep < 1 {
		fail("overworld step and fast_step must be at least 1")
	}
	if ow.DoorMin.X > ow.DoorMax.X || ow.DoorMin.Y > ow.DoorMax.Y {
		fail("overworld door_min must not exceed door_max")
	}
	if ow.AtDoorStart() {
		fail("overworld start must lie outside the door region")
	}

	for i := range config.Levels {
		for _, err := range validateLevel(&config.Levels[i]) {
			fail("level %d: %v", i+1, err)
		}
	}

	n := len(config.Levels)
	r := config.Routing
	for _, f := range []struct {
		name  string
		value int
	}{
		{"overworld_level", r.OverworldLevel},
		{"shortcut_level", r.ShortcutLevel},
		{"shortcut_target", r.ShortcutTarget},
		{"secret_level", r.SecretLevel},
	} {
		if f.value < 0 {
			fail("routing.%s must not be negative, got %d", f.name, f.value)
		}
	}
	if r.ShortcutLevel >= 1 && r.ShortcutLevel < n && (r.ShortcutTarget < 1 || r.ShortcutTarget > n) {
		fail("routing.shortcut_target must be between 1 and %d, got %d", n, r.ShortcutTarget)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// AtDoorStart reports whether the overworld start point is already at the door
func (o *OverworldConfig) AtDoorStart() bool {
	return o.settings().AtDoor(o.Start)
}

func (o *OverworldConfig) settings() OverworldSettings {
	return OverworldSettings{
		Start:    o.Start,
		Min:      o.Min,
		Max:      o.Max,
		DoorMin:  o.DoorMin,
		DoorMax:  o.DoorMax,
		Step:     o.Step,
		FastStep: o.FastStep,
	}
}

func validateLevel(lc *LevelConfig) []error {
	var errs []error

	if len(lc.Layout) < MinGridSize || len(lc.Layout) > MaxGridSize {
		errs = append(errs, fmt.Errorf("layout must have between %d and %d rows, got %d", MinGridSize, MaxGridSize, len(lc.Layout)))
		return errs
	}
	grid, err := ParseLayout(lc.Layout)
	if err != nil {
		return append(errs, err)
	}
	if grid.Cols() < MinGridSize || grid.Cols() > MaxGridSize {
		errs = append(errs, fmt.Errorf("layout must have between %d and %d columns, got %d", MinGridSize, MaxGridSize, grid.Cols()))
		return errs
	}

	start := grid.Start()
	if !grid.IsOpen(start) {
		errs = append(errs, fmt.Errorf("start cell %s must be open floor", start))
	}
	if len(grid.Find(Exit)) == 0 {
		errs = append(errs, fmt.Errorf("layout must contain at least one exit (E)"))
	}
	if lc.RequiredCoins < 0 || lc.RequiredCoins > len(lc.Collectibles) {
		errs = append(errs, fmt.Errorf("required_coins must be between 0 and %d, got %d", len(lc.Collectibles), lc.RequiredCoins))
	}
	if lc.HazardSpawn != nil {
		switch {
		case !grid.Walkable(*lc.HazardSpawn):
			errs = append(errs, fmt.Errorf("hazard_spawn %s must be a non-wall cell", *lc.HazardSpawn))
		case *lc.HazardSpawn == start:
			errs = append(errs, fmt.Errorf("hazard_spawn %s must differ from the start cell", *lc.HazardSpawn))
		}
	}
	return errs
}

// NewCampaign validates config and builds the runtime campaign
func NewCampaign(config *CampaignConfig) (*Campaign, error) {
	if err := ValidateCampaignConfig(config); err != nil {
		return nil, err
	}

	levels := make([]*Level, len(config.Levels))
	for i, lc := range config.Levels {
		grid, err := ParseLayout(lc.Layout)
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", i+1, err)
		}
		name := lc.Name
		if name == "" {
			name = fmt.Sprintf("Level %d", i+1)
		}
		levels[i] = &Level{
			Number:              i + 1,
			Name:                name,
			Grid:                grid,
			RequiredCoins:       lc.RequiredCoins,
			DesiredCollectibles: append([]Coordinate(nil), lc.Collectibles...),
			DesiredTraps:        append([]Coordinate(nil), lc.Traps...),
			HazardSpawn:         cloneCoord(lc.HazardSpawn),
			Dark:                lc.Dark,
		}
	}

	r := config.Routing
	return &Campaign{
		Name:           config.Name,
		Description:    config.Description,
		Levels:         levels,
		MaxLives:       config.MaxLives,
		PatrolInterval: time.Duration(config.PatrolIntervalMS) * time.Millisecond,
		FlashDuration:  time.Duration(config.FlashDurationMS) * time.Millisecond,
		Overworld:      config.Overworld.settings(),
		Routing: Routing{
			OverworldLevel: r.OverworldLevel,
			ShortcutLevel:  r.ShortcutLevel,
			ShortcutTarget: r.ShortcutTarget,
			SecretLevel:    r.SecretLevel,
		},
	}, nil
}
