package main

import (
	"flag"
	"log"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/spf13/viper"
	"github.com/stellarforge-go/stellarforge"
)

// This code effectively only reads the scenario file and generates the ephemeris.

const (
	defaultScenario = "~~unset~~"
)

var (
	scenario string
	timeStep time.Duration
	verbose  bool
)

func init() {
	// Read flags
	flag.StringVar(&scenario, "scenario", defaultScenario, "propagation scenario TOML file")
	flag.BoolVar(&verbose, "verbose", false, "really verbose (esp. for configuration)")
}

func main() {
	flag.Parse()
	// Load scenario
	if scenario == defaultScenario {
		log.Fatal("no scenario provided")
	}
	scenario = strings.Replace(scenario, ".toml", "", 1)
	viper.AddConfigPath(".")
	viper.SetConfigName(scenario)
	err := viper.ReadInConfig()
	if err != nil {
		log.Fatalf("./%s.toml: Error %s", scenario, err)
	}

	// Read propagation parameters
	startDT := confReadJDEorTime("propagation.start")
	endDT := confReadJDEorTime("propagation.end")
	timeStep = viper.GetDuration("propagation.step")
	if timeStep == 0 {
		timeStep = stellarforge.StepSize
	}
	if verbose {
		log.Printf("[conf] time step: %s\n", timeStep)
	}

	// Read central body
	bodyName := viper.GetString("orbit.body")
	body, err := stellarforge.CelestialObjectFromString(bodyName)
	if err != nil {
		log.Fatalf("could not understand body `%s`: %s", bodyName, err)
	}

	// Read orbit
	elements := stellarforge.OrbitalElements{
		SemiMajorAxis: viper.GetFloat64("orbit.sma"),
		Eccentricity:  viper.GetFloat64("orbit.ecc"),
		Inclination:   stellarforge.Deg2rad(viper.GetFloat64("orbit.inc")),
		RAAN:          stellarforge.Deg2rad(viper.GetFloat64("orbit.RAAN")),
		ArgPeriapsis:  stellarforge.Deg2rad(viper.GetFloat64("orbit.argPeri")),
		MeanAnomaly:   stellarforge.Deg2rad(viper.GetFloat64("orbit.mAnomaly")),
		GM:            body.GM(),
		Epoch:         startDT,
	}
	var model stellarforge.MotionModel = stellarforge.KeplerianMotion{Elements: elements}

	// Read perturbations
	if viper.GetBool("perturbations.J2") {
		model = stellarforge.TwoBodyMotion{
			Elements: elements,
			Perturbations: []stellarforge.Perturbation{
				stellarforge.J2Perturbation{Coefficient: body.J2, BodyRadius: body.Radius, GM: body.GM()},
			},
		}
	}

	conf := stellarforge.ExportConfig{
		Filename:  viper.GetString("export.filename"),
		AsXYZV:    viper.GetBool("export.xyzv"),
		AsCSV:     viper.GetBool("export.csv"),
		Timestamp: viper.GetBool("export.timestamp"),
	}
	if conf.Filename == "" {
		conf.Filename = scenario
	}

	initial := stellarforge.Propagate(model, stellarforge.State{}, startDT, startDT)
	if verbose {
		log.Printf("[conf] initial state: %s\n", initial)
	}
	stellarforge.NewPreciseGenerator(model, initial, startDT, endDT, timeStep, conf).Generate()
}

func confReadJDEorTime(key string) (dt time.Time) {
	jde := viper.GetFloat64(key)
	if jde == 0 {
		dt = viper.GetTime(key)
	} else {
		dt = julian.JDToTime(jde)
	}
	return
}
