// Command slambot runs the exploration loop against a simulated room,
// the way drivers/lidar/main.go wires flags, a device, and a run loop
// together for the LiDAR driver.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/incherre/slam-bot/config"
	"github.com/incherre/slam-bot/internal/rlog"
	"github.com/incherre/slam-bot/pkg/collision"
	"github.com/incherre/slam-bot/pkg/ekfslam"
	"github.com/incherre/slam-bot/pkg/explorer"
	"github.com/incherre/slam-bot/pkg/landmark"
	"github.com/incherre/slam-bot/pkg/simbot"
	"github.com/incherre/slam-bot/pkg/slam"
)

// configPathFrom scans args for -config/--config ahead of the real flag
// parse, since the YAML file (if any) must be loaded before config.Load
// registers and parses the rest of the flags.
func configPathFrom(args []string) string {
	for i, a := range args {
		switch {
		case a == "-config" || a == "--config":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(a, "-config="):
			return strings.TrimPrefix(a, "-config=")
		case strings.HasPrefix(a, "--config="):
			return strings.TrimPrefix(a, "--config=")
		}
	}
	return ""
}

func main() {
	fs := flag.NewFlagSet("slambot", flag.ExitOnError)
	_ = fs.String("config", "", "path to a YAML configuration file")
	roomWidth := fs.Float64("room-width", 30, "simulated room width")
	roomHeight := fs.Float64("room-height", 30, "simulated room height")
	maxSteps := fs.Int("max-steps", 5000, "maximum exploration steps before giving up")

	cfg, err := config.Load(fs, os.Args[1:], configPathFrom(os.Args[1:]))
	if err != nil {
		rlog.Log.Error().Err(err).Msg("failed to load configuration")
		os.Exit(1)
	}

	room := simbot.NewRoom(float32(*roomWidth), float32(*roomHeight))

	cmap, err := collision.New(cfg.CollisionMapScale, cfg.CollisionMapMaxDist)
	if err != nil {
		rlog.Log.Error().Err(err).Msg("failed to construct collision map")
		os.Exit(1)
	}

	ekf := ekfslam.New(
		ekfslam.WithInitialUncertainty(cfg.EKFInitialUncertainty),
		ekfslam.WithOdometryNoise(cfg.EKFOdometryNoise),
		ekfslam.WithRangeNoise(cfg.EKFRangeNoise),
		ekfslam.WithBearingNoise(cfg.EKFBearingNoise),
		ekfslam.WithInnovationLambda(cfg.EKFInnovationLambda),
		ekfslam.WithLandmarkThreshold(cfg.EKFLandmarkThreshold),
	)

	spike := landmark.NewSpikeDetector(landmark.WithSpikeThreshold(cfg.SpikeThreshold))
	ransac := landmark.NewRansacDetector(
		landmark.WithMaxTries(cfg.RansacMaxTries),
		landmark.WithSamples(cfg.RansacSamples),
		landmark.WithAngularRange(cfg.RansacRange),
		landmark.WithError(cfg.RansacError),
		landmark.WithConsensus(cfg.RansacConsensus),
	)

	orchestrator := slam.New(room, ekf, cmap, spike, ransac)
	e := explorer.New(orchestrator, cfg.ExplorerSize)

	rlog.Log.Info().Msg("slambot starting exploration")

	steps := 0
	for ; steps < *maxSteps && !e.FullyExplored(); steps++ {
		e.Step()
	}

	x, y, theta := orchestrator.GetEstimatedPosition()
	rlog.Log.Info().
		Int("steps", steps).
		Float32("x", x).
		Float32("y", y).
		Float32("theta", theta).
		Msg("slambot exploration finished")

	if !e.FullyExplored() {
		fmt.Fprintf(os.Stderr, "exploration did not converge within %d steps\n", *maxSteps)
		os.Exit(1)
	}

	fmt.Println(cmap.Serialize())
}
