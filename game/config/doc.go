// Package config provides campaign configuration management for the castle maze.
//
// The config package handles:
//   - Loading campaigns from JSON and YAML files
//   - Configuration validation and verification
//   - Default campaign management
//   - Campaign discovery and listing
//
// Configuration Format:
//
// Campaigns are stored as .json, .yaml or .yml files in the configs
// directory. Each campaign defines:
//   - An ordered list of levels, each a layout of '#' wall, '.' floor,
//     'E' exit and 'S' secret passage
//   - Desired collectible and trap cells, the coins needed to open the exit,
//     and an optional guard spawn per level
//   - Lives, patrol and flash timings
//   - The overworld rectangle and door region
//   - Level routing: which level returns to the overworld, which takes the
//     shortcut and where the secret passage leads
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		return err
//	}
//
//	campaign, err := manager.LoadConfig("castle")
//	defaultCampaign := manager.GetDefault()
//	configs, err := manager.ListConfigs()
//
// Validation:
//
// Every file is validated on load with engine.ValidateCampaignConfig. Files
// that fail are skipped by ListConfigs and reported as ErrInvalidConfig by
// LoadConfig.
package config
