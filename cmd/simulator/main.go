package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/signalsfoundry/aircraft-systems-simulator/core"
	"github.com/signalsfoundry/aircraft-systems-simulator/internal/logging"
	"github.com/signalsfoundry/aircraft-systems-simulator/timectrl"
)

func main() {
	scenarioPath := flag.String("scenario", "configs/scenario.yaml", "path to the scenario file (.json, .yaml)")
	duration := flag.Duration("duration", 60*time.Second, "total simulated duration")
	tickOverride := flag.Duration("tick", 0, "tick interval override (0 uses the scenario's tick)")
	accelerated := flag.Bool("accelerated", true, "run in accelerated mode (vs real-time)")
	verbose := flag.Bool("verbose", false, "print a status line every frame instead of once per simulated minute")
	flag.Parse()

	log := logging.NewFromEnv()

	scenario, err := core.LoadScenario(*scenarioPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load scenario %q: %v\n", *scenarioPath, err)
		os.Exit(1)
	}

	tick := time.Duration(scenario.TickMs * float64(time.Millisecond))
	if *tickOverride > 0 {
		tick = *tickOverride
	}

	engine, err := core.NewEngineFromScenario(scenario, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build simulation: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loaded scenario %q: %d buses, %d circuits, %d zones, %d waypoints\n",
		scenario.Name,
		len(scenario.Electrical.Buses),
		len(scenario.Hydraulic.Circuits),
		len(scenario.Environmental.Zones),
		len(scenario.FlightPlan),
	)

	mode := timectrl.RealTime
	if *accelerated {
		mode = timectrl.Accelerated
	}
	start := time.Now().UTC()
	tc := timectrl.NewTimeController(start, tick, mode)

	dtMs := float64(tick) / float64(time.Millisecond)
	framesPerStatus := uint64(time.Minute / tick)
	if *verbose || framesPerStatus == 0 {
		framesPerStatus = 1
	}

	tc.AddListener(func(simTime time.Time) {
		engine.Step(dtMs)

		frame := engine.Frame()
		if frame%framesPerStatus != 0 {
			return
		}
		snap := engine.Snapshot()
		powered := 0
		for _, b := range snap.Electrical.Buses {
			if b.Powered {
				powered++
			}
		}
		fmt.Printf("[%s] frame=%d buses=%d/%d cabin=%.0fft diff=%.1fpsi alerts=%d\n",
			simTime.Format(time.RFC3339),
			frame,
			powered, len(snap.Electrical.Buses),
			snap.Environmental.Pressurization.CabinAltFt,
			snap.Environmental.Pressurization.DifferentialPSI,
			len(snap.Alerts),
		)
		for _, a := range snap.Alerts {
			fmt.Printf("  - [%s] %s: %s\n", a.Level, a.ID, a.Message)
		}
	})

	fmt.Printf("Starting simulation: duration=%s, tick=%s, mode=%v\n", *duration, tick, mode)
	done := tc.Start(*duration)
	<-done

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(engine.Snapshot()); err != nil {
		fmt.Fprintf(os.Stderr, "encode final snapshot: %v\n", err)
		os.Exit(1)
	}
}
