package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/bodysim/internal/bodymass"
	"github.com/san-kum/bodysim/internal/experiment"
	"github.com/san-kum/bodysim/internal/sweep"
)

// Store writes run artifacts under baseDir, one directory per run. Nothing
// is ever read back.
type Store struct {
	baseDir string
	now     func() time.Time
}

func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0o755)
}

type Metadata struct {
	ID         string             `json:"id"`
	Kind       string             `json:"kind"`
	Timestamp  time.Time          `json:"timestamp"`
	Params     bodymass.Params    `json:"params"`
	Integrator string             `json:"integrator,omitempty"`
	Dt         float64            `json:"dt,omitempty"`
	Horizon    int                `json:"horizon,omitempty"`
	Reference  string             `json:"reference,omitempty"`
	Analytical float64            `json:"analytical"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
	Files      []string           `json:"files"`
}

// Run is one run directory being filled.
type Run struct {
	Dir  string
	meta Metadata
}

// Create makes a fresh run directory named <kind>_<unix>_<id>.
func (s *Store) Create(kind string, params bodymass.Params) (*Run, error) {
	ts := s.now()
	id := fmt.Sprintf("%s_%d_%s", kind, ts.Unix(), uuid.NewString()[:8])
	dir := filepath.Join(s.baseDir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Run{
		Dir: dir,
		meta: Metadata{
			ID:        id,
			Kind:      kind,
			Timestamp: ts,
			Params:    params,
			Files:     make([]string, 0),
		},
	}, nil
}

func (r *Run) ID() string { return r.meta.ID }

// Path reserves name inside the run directory and lists it in the metadata.
func (r *Run) Path(name string) string {
	r.meta.Files = append(r.meta.Files, name)
	return filepath.Join(r.Dir, name)
}

// WriteTrajectory stores every sample of run next to the closed form.
func (r *Run) WriteTrajectory(model *bodymass.Model, run *experiment.Run) error {
	r.meta.Integrator = run.Integrator
	r.meta.Dt = run.Dt
	r.meta.Horizon = model.Params().Days
	r.meta.Analytical = run.Analytical
	r.meta.Metrics = make(map[string]float64, len(run.Result.Metrics))
	for name, v := range run.Result.Metrics {
		// encoding/json rejects NaN, which unobserved extrema report.
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			r.meta.Metrics[name] = v
		}
	}

	header := []string{"time", "mass", "analytical", "abs_error"}
	rows := make([][]string, 0, len(run.Result.States)+1)
	rows = append(rows, []string{formatFloat(0), formatFloat(run.Result.Initial[0]), formatFloat(model.MassAt(0)), formatFloat(0)})
	for i, x := range run.Result.States {
		t := run.Result.Times[i]
		exact := model.MassAt(t)
		rows = append(rows, []string{formatFloat(t), formatFloat(x[0]), formatFloat(exact), formatFloat(math.Abs(exact - x[0]))})
	}
	return writeCSV(r.Path("trajectory.csv"), header, rows)
}

// WriteSweep stores one row per step size with each method's final mass and
// error.
func (r *Run) WriteSweep(res *sweep.Result) error {
	r.meta.Horizon = res.Horizon
	r.meta.Reference = res.Reference.String()
	r.meta.Analytical = res.Analytical

	header := []string{"index", "h", "end_time", "reference"}
	for _, m := range res.Methods {
		header = append(header, m+"_final", m+"_abs_error")
	}

	rows := make([][]string, 0, len(res.Points))
	for _, p := range res.Points {
		row := []string{strconv.Itoa(p.Index), formatFloat(p.Step), formatFloat(p.EndTime), formatFloat(p.Reference)}
		for _, m := range res.Methods {
			row = append(row, formatFloat(p.Final[m]), formatFloat(p.AbsErr[m]))
		}
		rows = append(rows, row)
	}
	return writeCSV(r.Path("sweep.csv"), header, rows)
}

// Close writes metadata.json; the run directory is complete afterwards.
func (r *Run) Close() (err error) {
	f, err := os.Create(filepath.Join(r.Dir, "metadata.json"))
	if err != nil {
		return err
	}
	defer closeFile(f, &err)

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(r.meta)
}

func writeCSV(path string, header []string, rows [][]string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer closeFile(f, &err)

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return w.Error()
}

// closeFile closes f and reports its error unless an earlier one is set.
func closeFile(f *os.File, err *error) {
	if cerr := f.Close(); *err == nil {
		*err = cerr
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 12, 64)
}
