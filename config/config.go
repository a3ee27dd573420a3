// Package config is for app wide settings that are unmarshalled
// from Viper (see: /cmd)
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// RootSettingsFile is the default settings file looked up in the working directory
const RootSettingsFile = "pudu.yaml"

// LabwareConfig holds the Opentrons load names of the labware on the deck
type LabwareConfig struct {
	// plate loaded on the thermocycler module
	Thermocycler string `mapstructure:"thermocycler"`

	// aluminum block loaded on the temperature module (or used as a plain tube rack)
	TubeRack string `mapstructure:"tube-rack"`

	// tip racks for the small and large pipettes
	TiprackSmall string `mapstructure:"tiprack-small"`
	TiprackLarge string `mapstructure:"tiprack-large"`

	// flat bottom plate for plate setup and calibration
	Plate string `mapstructure:"plate"`

	// rack for 50 mL falcon tubes
	FalconRack string `mapstructure:"falcon-rack"`
}

// DeckConfig holds the deck slots labware is loaded into
type DeckConfig struct {
	TemperatureModule int `mapstructure:"temperature-module"`
	TiprackSmall      int `mapstructure:"tiprack-small"`
	TiprackLarge      int `mapstructure:"tiprack-large"`
	Plate             int `mapstructure:"plate"`
	TubeRack          int `mapstructure:"tube-rack"`
	FalconRack        int `mapstructure:"falcon-rack"`
}

// PipetteConfig holds the instrument models and their mounts
type PipetteConfig struct {
	Small      string `mapstructure:"small"`
	SmallMount string `mapstructure:"small-mount"`
	Large      string `mapstructure:"large"`
	LargeMount string `mapstructure:"large-mount"`

	// volumes above this are moved with the large pipette
	SmallMax float64 `mapstructure:"small-max"`
}

// RateConfig is the aspiration and dispense flow rate multipliers
type RateConfig struct {
	Aspirate float64 `mapstructure:"aspirate"`
	Dispense float64 `mapstructure:"dispense"`
}

// AssemblyConfig is for settings of DNA assembly reactions (uL)
type AssemblyConfig struct {
	TotalVolume  float64 `mapstructure:"total-volume"`
	PartVolume   float64 `mapstructure:"part-volume"`
	EnzymeVolume float64 `mapstructure:"enzyme-volume"`
	LigaseVolume float64 `mapstructure:"ligase-volume"`
	BufferVolume float64 `mapstructure:"buffer-volume"`
	Replicates   int     `mapstructure:"replicates"`
	StartingWell int     `mapstructure:"starting-well"`
}

// TransformationConfig is for settings of chemical transformations (uL)
type TransformationConfig struct {
	DNAVolume    float64 `mapstructure:"dna-volume"`
	CellsVolume  float64 `mapstructure:"cells-volume"`
	CellsPerTube float64 `mapstructure:"cells-per-tube"`
	MediaVolume  float64 `mapstructure:"media-volume"`
	MediaPerTube float64 `mapstructure:"media-per-tube"`
	Replicates   int     `mapstructure:"replicates"`
	StartingWell int     `mapstructure:"starting-well"`
}

// Config is the root-level settings struct and is a mix
// of settings available in the settings file and those
// available from the command line
type Config struct {
	// Opentrons API level written to protocol metadata
	APILevel string `mapstructure:"api-level"`

	// Author written to protocol metadata
	Author string `mapstructure:"author"`

	Labware        LabwareConfig        `mapstructure:"labware"`
	Deck           DeckConfig           `mapstructure:"deck"`
	Pipettes       PipetteConfig        `mapstructure:"pipettes"`
	Rates          RateConfig           `mapstructure:"rates"`
	Assembly       AssemblyConfig       `mapstructure:"assembly"`
	Transformation TransformationConfig `mapstructure:"transformation"`
}

var defaults = map[string]interface{}{
	"api-level": "2.13",
	"author":    "pudu",

	"labware.thermocycler":  "nest_96_wellplate_100ul_pcr_full_skirt",
	"labware.tube-rack":     "opentrons_24_aluminumblock_nest_1.5ml_snapcap",
	"labware.tiprack-small": "opentrons_96_tiprack_20ul",
	"labware.tiprack-large": "opentrons_96_tiprack_300ul",
	"labware.plate":         "corning_96_wellplate_360ul_flat",
	"labware.falcon-rack":   "opentrons_6_tuberack_falcon_50ml_conical",

	"deck.temperature-module": 1,
	"deck.tiprack-small":      9,
	"deck.tiprack-large":      6,
	"deck.plate":              7,
	"deck.tube-rack":          4,
	"deck.falcon-rack":        2,

	"pipettes.small":       "p20_single_gen2",
	"pipettes.small-mount": "left",
	"pipettes.large":       "p300_single_gen2",
	"pipettes.large-mount": "right",
	"pipettes.small-max":   20.0,

	"rates.aspirate": 0.5,
	"rates.dispense": 1.0,

	"assembly.total-volume":  20.0,
	"assembly.part-volume":   2.0,
	"assembly.enzyme-volume": 2.0,
	"assembly.ligase-volume": 4.0,
	"assembly.buffer-volume": 2.0,
	"assembly.replicates":    1,
	"assembly.starting-well": 0,

	"transformation.dna-volume":     2.0,
	"transformation.cells-volume":   20.0,
	"transformation.cells-per-tube": 100.0,
	"transformation.media-volume":   60.0,
	"transformation.media-per-tube": 1200.0,
	"transformation.replicates":     2,
	"transformation.starting-well":  0,
}

// SetDefaults registers every default setting on a viper instance
func SetDefaults(v *viper.Viper) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// New returns a Config with only the default settings. It ignores the
// settings file and environment
func New() *Config {
	v := viper.New()
	SetDefaults(v)

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		// defaults alone always decode
		panic(err)
	}
	return &c
}

// Load returns a new Config populated by the defaults, a settings file and
// PUDU_ prefixed environment variables. The settings file is path or, if
// path is empty, RootSettingsFile when the working directory has one
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix("pudu")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path == "" {
		if _, err := os.Stat(RootSettingsFile); err == nil {
			path = RootSettingsFile
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to decode settings: %w", err)
	}

	return &c, c.validate()
}

// validate catches settings that can't produce a runnable protocol
func (c *Config) validate() error {
	if c.Rates.Aspirate <= 0 || c.Rates.Dispense <= 0 {
		return fmt.Errorf("flow rates must be positive, got aspirate=%v dispense=%v", c.Rates.Aspirate, c.Rates.Dispense)
	}
	if c.Pipettes.SmallMax <= 0 {
		return fmt.Errorf("pipettes.small-max must be positive, got %v", c.Pipettes.SmallMax)
	}
	return nil
}

// Pipette returns the name and mount of the pipette for a volume.
// Volumes above the small pipette's max go to the large pipette
func (c *Config) Pipette(volume float64) (name, mount string) {
	if volume > c.Pipettes.SmallMax {
		return c.Pipettes.Large, c.Pipettes.LargeMount
	}
	return c.Pipettes.Small, c.Pipettes.SmallMount
}
