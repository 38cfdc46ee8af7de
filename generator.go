package stellarforge

import (
	"os"
	"sync"
	"time"

	kitlog "github.com/go-kit/kit/log"
)

const (
	// StepSize is the default sampling step of ephemeris generation.
	StepSize = 10 * time.Second
)

/* Handles the sampling of motion models into ephemeris tables. */

// Generator samples a motion model over a time span and builds an
// ephemeris table from it, optionally streaming each sample to an export
// file as it is computed.
type Generator struct {
	Model                      MotionModel
	Initial                    State
	StartDT, StopDT, CurrentDT time.Time
	step                       time.Duration
	histChan                   chan<- (EphemerisSample)
	exportWG                   sync.WaitGroup
	logger                     kitlog.Logger
}

// NewGenerator is the same as NewPreciseGenerator with the default step
// size.
func NewGenerator(m MotionModel, initial State, start, end time.Time, conf ExportConfig) *Generator {
	return NewPreciseGenerator(m, initial, start, end, StepSize, conf)
}

// NewPreciseGenerator returns a new Generator instance with a custom
// sampling step.
func NewPreciseGenerator(m MotionModel, initial State, start, end time.Time, step time.Duration, conf ExportConfig) *Generator {
	// Must switch to UTC so all epochs in the table agree.
	if start.Location() != time.UTC {
		start = start.UTC()
	}
	if end.Location() != time.UTC {
		end = end.UTC()
	}

	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	logger = kitlog.With(logger, "generator", conf.Filename)

	g := &Generator{Model: m, Initial: initial, StartDT: start, StopDT: end, CurrentDT: start, step: step, logger: logger}
	// If no export is configured, then no output will be written.
	if !conf.IsUseless() {
		histChan := make(chan (EphemerisSample), 1000) // a 1k entry buffer
		g.histChan = histChan
		g.exportWG.Add(1)
		go func() {
			defer g.exportWG.Done()
			StreamEphemeris(conf, histChan)
		}()
	}
	if end.Before(start) {
		g.logger.Log("level", "warning", "subsys", "ephem", "message", "no end date")
	}
	return g
}

// LogStatus logs the current epoch of the generation.
func (g *Generator) LogStatus() {
	g.logger.Log("level", "info", "subsys", "ephem", "date", g.CurrentDT)
}

// Generate samples the model from the start to the stop epoch and returns
// the assembled ephemeris table. Blocks until any configured export has
// finished writing.
func (g *Generator) Generate() EphemerisTable {
	g.logger.Log("level", "notice", "subsys", "ephem", "status", "starting", "start", g.StartDT, "end", g.StopDT, "step", g.step)
	samples := []EphemerisSample{}
	for g.CurrentDT = g.StartDT; !g.CurrentDT.After(g.StopDT); g.CurrentDT = g.CurrentDT.Add(g.step) {
		sample := EphemerisSample{
			Epoch: g.CurrentDT,
			State: Propagate(g.Model, g.Initial, g.StartDT, g.CurrentDT),
		}
		samples = append(samples, sample)
		if g.histChan != nil {
			g.histChan <- sample
		}
	}
	if g.histChan != nil {
		close(g.histChan)
		g.exportWG.Wait()
	}
	g.logger.Log("level", "notice", "subsys", "ephem", "status", "finished", "samples", len(samples))
	return NewEphemerisTable(samples)
}
