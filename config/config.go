// Package config loads and validates the option surface that drives the
// collision map, landmark extractors, and EKF, the way
// drivers/lidar/config.go does for the teacher's LiDAR driver: a plain
// struct, a flag-or-YAML Load, and a Validate() error. Option names
// follow spec.md 6 exactly; unrecognized YAML keys are ignored.
package config

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every recognized CLI/YAML option.
type Config struct {
	CollisionMapScale   int `yaml:"collision_map_scale"`
	CollisionMapMaxDist int `yaml:"collision_map_max_dist"`

	SpikeThreshold float32 `yaml:"spike_threshold"`

	RansacMaxTries  int     `yaml:"ransac_max_tries"`
	RansacSamples   int     `yaml:"ransac_samples"`
	RansacRange     float32 `yaml:"ransac_range"`
	RansacError     float32 `yaml:"ransac_error"`
	RansacConsensus int     `yaml:"ransac_consensus"`

	EKFInitialUncertainty float32 `yaml:"ekf_initial_uncertainty"`
	EKFOdometryNoise      float32 `yaml:"ekf_odometry_noise"`
	EKFRangeNoise         float32 `yaml:"ekf_range_noise"`
	EKFBearingNoise       float32 `yaml:"ekf_bearing_noise"`
	EKFInnovationLambda   float32 `yaml:"ekf_innovation_lambda"`
	EKFLandmarkThreshold  int     `yaml:"ekf_landmark_threshold"`

	// ExplorerSize is the agent footprint used for travel-status checks.
	// Not named in spec.md 6's CLI surface but required to construct an
	// explorer.Explorer, whose New takes the size as an argument; the
	// default here is 1.
	ExplorerSize float32 `yaml:"explorer_size"`
}

// Default returns the configuration used when neither a YAML file nor a
// flag sets an option. The EKF values and the RANSAC tries, samples, range
// and error equal the zero-option defaults of ekfslam.New and
// landmark.NewRansacDetector; the spike threshold (0.2) and RANSAC
// consensus (8) differ from the zero-option defaults of
// landmark.NewSpikeDetector (0) and landmark.NewRansacDetector (6).
func Default() Config {
	return Config{
		CollisionMapScale:   10,
		CollisionMapMaxDist: 50,

		SpikeThreshold: 0.2,

		RansacMaxTries:  20,
		RansacSamples:   4,
		RansacRange:     0.35,
		RansacError:     0.2,
		RansacConsensus: 8,

		EKFInitialUncertainty: 0.95,
		EKFOdometryNoise:      0.05,
		EKFRangeNoise:         0.01,
		EKFBearingNoise:       0.0174533, // pi/180
		EKFInnovationLambda:   1,
		EKFLandmarkThreshold:  5,

		ExplorerSize: 1,
	}
}

// Validate reports the first invalid field it finds. Non-positive scale,
// max_dist, RANSAC tries, RANSAC consensus or explorer size and a negative
// EKF landmark threshold are rejected; the float thresholds and noise
// values are not range-checked. RANSAC needs at least 2 samples
// since one of them is always the seed point plus samples-1 more.
func (c *Config) Validate() error {
	if c.CollisionMapScale <= 0 {
		return fmt.Errorf("config: collision_map_scale must be positive, got %d", c.CollisionMapScale)
	}
	if c.CollisionMapMaxDist <= 0 {
		return fmt.Errorf("config: collision_map_max_dist must be positive, got %d", c.CollisionMapMaxDist)
	}
	if c.RansacSamples < 2 {
		return fmt.Errorf("config: ransac_samples must be at least 2, got %d", c.RansacSamples)
	}
	if c.RansacMaxTries <= 0 {
		return fmt.Errorf("config: ransac_max_tries must be positive, got %d", c.RansacMaxTries)
	}
	if c.RansacConsensus <= 0 {
		return fmt.Errorf("config: ransac_consensus must be positive, got %d", c.RansacConsensus)
	}
	if c.EKFLandmarkThreshold < 0 {
		return fmt.Errorf("config: ekf_landmark_threshold must be non-negative, got %d", c.EKFLandmarkThreshold)
	}
	if c.ExplorerSize <= 0 {
		return fmt.Errorf("config: explorer_size must be positive, got %f", c.ExplorerSize)
	}
	return nil
}

// Load starts from Default, overlays a YAML file at path (if non-empty),
// then overlays flags from fs (if non-nil), and validates the result.
// Flags take precedence over the file, which takes precedence over the
// defaults, matching drivers/lidar/main.go's flag-wins convention.
func Load(fs *flag.FlagSet, args []string, path string) (Config, error) {
	c := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &c); err != nil {
			return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	if fs != nil {
		registerFlags(fs, &c)
		if err := fs.Parse(args); err != nil {
			return Config{}, err
		}
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// registerFlags wires every option onto fs, seeded with c's current
// values so an unset flag keeps whatever Default/YAML already produced.
// flag has no native float32 flag type, so float32 fields go through
// float32Value below rather than losing precision round-tripping
// through Float64Var.
func registerFlags(fs *flag.FlagSet, c *Config) {
	fs.IntVar(&c.CollisionMapScale, "collision-map-scale", c.CollisionMapScale, "collision map cell scale")
	fs.IntVar(&c.CollisionMapMaxDist, "collision-map-max-dist", c.CollisionMapMaxDist, "collision map ray truncation distance")

	fs.Var((*float32Value)(&c.SpikeThreshold), "spike-threshold", "spike detector minimum combined depth")

	fs.IntVar(&c.RansacMaxTries, "ransac-max-tries", c.RansacMaxTries, "RANSAC maximum fit attempts")
	fs.IntVar(&c.RansacSamples, "ransac-samples", c.RansacSamples, "RANSAC points per candidate line, including the seed")
	fs.Var((*float32Value)(&c.RansacRange), "ransac-range", "RANSAC angular window radius (radians)")
	fs.Var((*float32Value)(&c.RansacError), "ransac-error", "RANSAC consensus perpendicular-distance tolerance")
	fs.IntVar(&c.RansacConsensus, "ransac-consensus", c.RansacConsensus, "RANSAC minimum consensus set size")

	fs.Var((*float32Value)(&c.EKFInitialUncertainty), "ekf-initial-uncertainty", "EKF initial pose variance")
	fs.Var((*float32Value)(&c.EKFOdometryNoise), "ekf-odometry-noise", "EKF odometry process noise coefficient")
	fs.Var((*float32Value)(&c.EKFRangeNoise), "ekf-range-noise", "EKF range noise coefficient")
	fs.Var((*float32Value)(&c.EKFBearingNoise), "ekf-bearing-noise", "EKF fixed bearing noise (radians)")
	fs.Var((*float32Value)(&c.EKFInnovationLambda), "ekf-innovation-lambda", "EKF association gate threshold")
	fs.IntVar(&c.EKFLandmarkThreshold, "ekf-landmark-threshold", c.EKFLandmarkThreshold, "minimum sightings before a landmark affects the pose")

	fs.Var((*float32Value)(&c.ExplorerSize), "explorer-size", "exploration planner agent footprint")
}

// float32Value adapts a *float32 to flag.Value so float32 fields can be
// registered directly.
type float32Value float32

func (f *float32Value) String() string     { return fmt.Sprintf("%v", float32(*f)) }
func (f *float32Value) Set(s string) error { _, err := fmt.Sscanf(s, "%g", (*float32)(f)); return err }
