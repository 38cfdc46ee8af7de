package stellarforge

import (
	"fmt"
	"os"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// ExportConfig configures the file export of generated ephemerides.
type ExportConfig struct {
	Filename     string
	AsXYZV       bool
	AsCSV        bool
	Timestamp    bool
	CSVAppend    func(sample EphemerisSample) string // Custom export (do not include leading comma)
	CSVAppendHdr func() string                       // Header for the custom export
}

// IsUseless returns whether this config doesn't actually do anything.
func (c ExportConfig) IsUseless() bool {
	return !c.AsXYZV && !c.AsCSV
}

// createXYZVFile returns a file which requires a defer close statement!
func createXYZVFile(filename string, stamped bool, stateDT time.Time) *os.File {
	config := sfConfig()
	if stamped {
		t := time.Now()
		filename = fmt.Sprintf("%s/ephem-%s-%d-%02d-%02dT%02d.%02d.%02d.xyzv", config.outputDir, filename, t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	} else {
		filename = fmt.Sprintf("%s/ephem-%s.xyzv", config.outputDir, filename)
	}
	f, err := os.Create(filename)
	if err != nil {
		panic(err)
	}
	// Header
	f.WriteString(fmt.Sprintf(`# Creation date (UTC): %s
# Records are <jd> <x> <y> <z> <vel x> <vel y> <vel z>
#   Time is a UTC Julian date
#   Position in m
#   Velocity in m/sec
#   Generation time start (UTC): %s`, time.Now(), stateDT.UTC()))
	return f
}

// createCSVFile returns a file which requires a defer close statement!
func createCSVFile(filename string, conf ExportConfig, stateDT time.Time) *os.File {
	config := sfConfig()
	if conf.Timestamp {
		t := time.Now()
		filename = fmt.Sprintf("%s/ephem-%s-%d-%02d-%02dT%02d.%02d.%02d.csv", config.outputDir, filename, t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	} else {
		filename = fmt.Sprintf("%s/ephem-%s.csv", config.outputDir, filename)
	}
	f, err := os.Create(filename)
	if err != nil {
		panic(err)
	}
	// Header
	f.WriteString(fmt.Sprintf(`# Creation date (UTC): %s
# Position in m, velocity in m/s.
#   Generation time start (UTC): %s
epoch_jd,x,y,z,vx,vy,vz,`, time.Now(), stateDT.UTC()))
	if conf.CSVAppendHdr != nil {
		// Append the headers for the appended columns.
		f.WriteString(conf.CSVAppendHdr())
	}
	return f
}

// StreamEphemeris streams the output of the channel to the configured
// files. Returns when the channel is closed.
func StreamEphemeris(conf ExportConfig, sampleChan <-chan (EphemerisSample)) {
	var f, fCSV *os.File
	started := false
	for sample := range sampleChan {
		if !started {
			if conf.AsXYZV {
				f = createXYZVFile(conf.Filename, conf.Timestamp, sample.Epoch)
				defer f.Close()
			}
			if conf.AsCSV {
				fCSV = createCSVFile(conf.Filename, conf, sample.Epoch)
				defer fCSV.Close()
			}
			started = true
		}
		jd := julian.TimeToJD(sample.Epoch)
		s := sample.State
		if f != nil {
			f.WriteString(fmt.Sprintf("\n%f %f %f %f %f %f %f", jd, s.Position.X, s.Position.Y, s.Position.Z, s.Velocity.X, s.Velocity.Y, s.Velocity.Z))
		}
		if fCSV != nil {
			fCSV.WriteString(fmt.Sprintf("\n%f,%f,%f,%f,%f,%f,%f,", jd, s.Position.X, s.Position.Y, s.Position.Z, s.Velocity.X, s.Velocity.Y, s.Velocity.Z))
			if conf.CSVAppend != nil {
				fCSV.WriteString(conf.CSVAppend(sample))
			}
		}
	}
}
