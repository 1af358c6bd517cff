// Package main implements the scram command-line tool: it loads one or
// more MEF-XML input files into a single domain.Model, validates it, runs
// whichever analyses Settings enables against every fault tree in the
// model, and writes an XML report, mirroring cmd/cli's flag-and-usage-string
// shape from the command-line tool this module's stack is grounded on.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/scram-project/scram/internal/application/analysis"
	"github.com/scram-project/scram/internal/application/analysis/bruteforce"
	"github.com/scram-project/scram/internal/application/analysis/sil"
	"github.com/scram-project/scram/internal/config"
	"github.com/scram-project/scram/internal/domain"
	"github.com/scram-project/scram/internal/infrastructure/logger"
	"github.com/scram-project/scram/internal/mef"
	"github.com/scram-project/scram/internal/report"
)

const usage = `scram - probabilistic risk analysis engine

USAGE:
    scram [options] <input.xml> [input.xml ...]

OPTIONS:
    -output <file>      Write the report to file instead of stdout
    -log-level <level>  debug, info, warn, error (default: info, or LOG_LEVEL)
    -log-format <fmt>   text or json (default: text, or LOG_FORMAT)

Which analyses run, the mission time, trial count and SIL mode all come
from the SCRAM_* environment variables internal/config.Settings reads.

EXIT CODES:
    0  success
    1  validation error (bad model: redefinition, cycle, undefined element, ...)
    2  I/O error (file not found, malformed XML, ...)
    3  any other internal error
`

func main() {
	godotenv.Load()

	fs := flag.NewFlagSet("scram", flag.ExitOnError)
	output := fs.String("output", "", "write the report to file instead of stdout")
	logLevel := fs.String("log-level", getEnv("LOG_LEVEL", "info"), "log level")
	logFormat := fs.String("log-format", getEnv("LOG_FORMAT", "text"), "log format")
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	fs.Parse(os.Args[1:])

	log := logger.New(*logLevel, *logFormat)

	if fs.NArg() == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	settings, err := config.Load()
	if err != nil {
		log.Error("invalid settings", "error", err)
		os.Exit(1)
	}

	rpt, code := run(fs.Args(), settings, log)
	if code != 0 {
		os.Exit(code)
	}

	w := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			log.Error("failed to create output file", "error", err)
			os.Exit(2)
		}
		defer f.Close()
		w = f
	}
	if err := report.Write(w, rpt); err != nil {
		log.Error("failed to write report", "error", err)
		os.Exit(2)
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// run loads every input file into one shared model, validates it, and
// executes whichever analyses settings enables against each fault tree.
// It returns the assembled report and the process exit code to use; a
// non-zero code means rpt is incomplete and must not be written out.
func run(files []string, settings *config.Settings, log *logger.Logger) (report.Report, int) {
	model := domain.NewModel()
	missionTime := domain.NewMissionTimeValue(settings.MissionTime)

	for _, filename := range files {
		f, err := os.Open(filename)
		if err != nil {
			log.Error("failed to open input", "file", filename, "error", err)
			return report.Report{}, 2
		}
		m, mt, loadErr := mef.Load(f, filename)
		f.Close()
		if loadErr != nil {
			log.Error("failed to load input", "file", filename, "error", loadErr)
			return report.Report{}, exitCodeFor(loadErr)
		}
		for _, id := range m.Registry.All() {
			h, _ := m.Registry.Lookup(id.ID, id.BasePath, id.IsPublic)
			if err := model.Registry.Register(id, h); err != nil {
				log.Error("failed to merge input", "file", filename, "error", err)
				return report.Report{}, exitCodeFor(err)
			}
		}
		model.Trees = append(model.Trees, m.Trees...)
		model.Parameters = append(model.Parameters, m.Parameters...)
		model.CCFGroups = append(model.CCFGroups, m.CCFGroups...)
		missionTime = mt
	}
	missionTime.Set(settings.MissionTime)

	if err := model.Validate(); err != nil {
		log.Error("model validation failed", "error", err)
		return report.Report{}, exitCodeFor(err)
	}

	top := bruteforce.New()
	imp := bruteforce.NewImportanceEvaluator()
	unc := bruteforce.NewUncertaintyEvaluator()
	an := analysis.New(model, missionTime, top, imp, unc)

	var rpt report.Report
	for _, ft := range model.Trees {
		tr := report.TreeResult{Name: ft.ID.Name}
		needsTop := settings.ProbabilityAnalysis || settings.ImportanceAnalysis || settings.SILAnalysis

		if needsTop {
			p, err := top.Probability(ft)
			if err != nil {
				log.Error("probability analysis failed", "tree", ft.ID.Name, "error", err)
				return report.Report{}, exitCodeFor(err)
			}
			tr.TopProbability = p

			if settings.ImportanceAnalysis {
				items, err := imp.Importance(ft, p)
				if err != nil {
					log.Error("importance analysis failed", "tree", ft.ID.Name, "error", err)
					return report.Report{}, exitCodeFor(err)
				}
				ei, err := report.BuildImportance(ft, items, p)
				if err != nil {
					log.Error("importance derivation failed", "tree", ft.ID.Name, "error", err)
					return report.Report{}, exitCodeFor(err)
				}
				tr.Importance = ei
			}

			if settings.SILAnalysis {
				mode := sil.ModeLowDemand
				if settings.SILMode == config.SILModeHighDemand {
					mode = sil.ModeHighOrContinuous
				}
				res, err := sil.Evaluate(an, ft, settings.MissionTime, settings.SILPoints, mode)
				if err != nil {
					log.Error("sil analysis failed", "tree", ft.ID.Name, "error", err)
					return report.Report{}, exitCodeFor(err)
				}
				tr.SIL = &report.SILResult{PFDavg: res.PFDavg, PFH: res.PFH, Band: res.Band}
			}
		}

		if settings.UncertaintyAnalysis {
			summary, err := unc.Propagate(ft, settings.NumTrials, settings.Seed)
			if err != nil {
				log.Error("uncertainty analysis failed", "tree", ft.ID.Name, "error", err)
				return report.Report{}, exitCodeFor(err)
			}
			u := report.BuildUncertainty(summary)
			tr.Uncertainty = &u
		}

		rpt.Trees = append(rpt.Trees, tr)
	}

	return rpt, 0
}

// exitCodeFor maps a domain.Error's Kind to the exit codes spec §6 names.
// An error that isn't a *domain.Error at all (a bug, not a modelling
// mistake) falls through to the generic internal-error code.
func exitCodeFor(err error) int {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		return 3
	}
	switch derr.Kind {
	case domain.KindValidationError, domain.KindRedefinitionError, domain.KindDuplicateArgumentError,
		domain.KindUndefinedElement, domain.KindCycleError, domain.KindSettingsError:
		return 1
	case domain.KindIOError:
		return 2
	default:
		return 3
	}
}
