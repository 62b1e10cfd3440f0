// Package pipeline wraps the column transformer in a fit-once, transform-many
// state machine and persists the fitted result.
package pipeline

import (
	"io"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/tabprep/core/compress"
	"github.com/YuminosukeSato/tabprep/core/model"
	"github.com/YuminosukeSato/tabprep/dataset"
	"github.com/YuminosukeSato/tabprep/pkg/errors"
	"github.com/YuminosukeSato/tabprep/pkg/log"
	"github.com/YuminosukeSato/tabprep/sklearn/compose"
)

var _ model.DatasetTransformer = (*Pipeline)(nil)

// Pipeline owns a ColumnTransformer. It can be fitted exactly once; Transform
// may then be called any number of times on datasets sharing the fitted schema.
type Pipeline struct {
	state        *model.StateManager
	logger       log.Logger
	preprocessor *compose.ColumnTransformer
}

// New creates an unfitted Pipeline around preprocessor.
func New(preprocessor *compose.ColumnTransformer) *Pipeline {
	if preprocessor == nil {
		preprocessor = compose.NewColumnTransformer()
	}
	return &Pipeline{
		state:        model.NewStateManager(),
		logger:       log.GetLoggerWithName("Pipeline"),
		preprocessor: preprocessor,
	}
}

// NewDefault creates a Pipeline with median/most-frequent imputation and
// one-hot encoding, without numeric scaling.
func NewDefault() *Pipeline {
	return New(compose.NewColumnTransformer())
}

// Fit learns all preprocessing parameters from train. A second call returns
// a ValueError wrapping ErrAlreadyFitted.
func (p *Pipeline) Fit(train *dataset.Dataset) error {
	if err := p.state.RequireNotFitted("Pipeline.Fit"); err != nil {
		return err
	}
	if err := p.preprocessor.Fit(train); err != nil {
		p.logger.Error("Pipeline fit failed", err, log.OperationKey, log.OperationFit)
		return err
	}
	p.state.SetDimensions(train.NCols(), train.NRows())
	p.state.SetFitted()
	return nil
}

// Transform applies the fitted parameters to ds.
func (p *Pipeline) Transform(ds *dataset.Dataset) (*mat.Dense, error) {
	if err := p.state.RequireFitted("Pipeline", "Transform"); err != nil {
		return nil, err
	}
	return p.preprocessor.Transform(ds)
}

// FitTransform fits on train and returns the transformed training matrix.
func (p *Pipeline) FitTransform(train *dataset.Dataset) (*mat.Dense, error) {
	if err := p.Fit(train); err != nil {
		return nil, err
	}
	return p.Transform(train)
}

// FeatureNamesOut returns the output column labels.
func (p *Pipeline) FeatureNamesOut() ([]string, error) {
	if err := p.state.RequireFitted("Pipeline", "FeatureNamesOut"); err != nil {
		return nil, err
	}
	return p.preprocessor.FeatureNamesOut()
}

// IsFitted reports whether Fit has succeeded.
func (p *Pipeline) IsFitted() bool {
	return p.state.IsFitted()
}

// Plan returns a copy of the fitted column plan. The ColumnTransformer itself
// is not exposed, so it cannot be refitted behind the Pipeline's back.
func (p *Pipeline) Plan() (compose.Plan, error) {
	if err := p.state.RequireFitted("Pipeline", "Plan"); err != nil {
		return compose.Plan{}, err
	}
	return p.preprocessor.Plan()
}

// NInputFeatures returns the number of columns seen by Fit.
func (p *Pipeline) NInputFeatures() int {
	n, _ := p.state.GetDimensions()
	return n
}

// snapshot is the persisted form of a fitted Pipeline.
type snapshot struct {
	State        model.ModelState
	Preprocessor *compose.ColumnTransformerState
}

func (p *Pipeline) snapshot(op string) (snapshot, error) {
	if err := p.state.RequireFitted("Pipeline", op); err != nil {
		return snapshot{}, err
	}
	st, err := p.preprocessor.State()
	if err != nil {
		return snapshot{}, err
	}
	return snapshot{State: p.state.GetState(), Preprocessor: st}, nil
}

// Save writes the fitted pipeline to w using codec.
func (p *Pipeline) Save(w io.Writer, codec compress.Type) error {
	snap, err := p.snapshot("Save")
	if err != nil {
		return err
	}
	if err := model.SaveModelToWriter(snap, w, codec); err != nil {
		return err
	}
	p.logger.Info("Saved pipeline", log.OperationKey, log.OperationSave, log.CompressionKey, codec.String())
	return nil
}

// SaveFile writes the fitted pipeline to path.
func (p *Pipeline) SaveFile(path string, codec compress.Type) error {
	snap, err := p.snapshot("SaveFile")
	if err != nil {
		return err
	}
	if err := model.SaveModel(snap, path, codec); err != nil {
		return err
	}
	p.logger.Info("Saved pipeline", log.OperationKey, log.OperationSave, log.CompressionKey, codec.String(), "file", path)
	return nil
}

// Marshal is Save into a byte slice, for stores that take whole values.
func (p *Pipeline) Marshal(codec compress.Type) ([]byte, error) {
	snap, err := p.snapshot("Marshal")
	if err != nil {
		return nil, err
	}
	data, err := model.Marshal(snap, codec)
	if err != nil {
		return nil, err
	}
	p.logger.Info("Saved pipeline",
		log.OperationKey, log.OperationSave,
		log.CompressionKey, codec.String(),
		log.DataSizeKey, len(data),
	)
	return data, nil
}

// Load reads a pipeline written by Save. The result is fitted and produces
// bit-identical output to the pipeline that was saved.
func Load(r io.Reader) (*Pipeline, error) {
	var snap snapshot
	if err := model.LoadModelFromReader(&snap, r); err != nil {
		return nil, err
	}
	return fromSnapshot(snap)
}

// LoadFile reads a pipeline written by SaveFile.
func LoadFile(path string) (*Pipeline, error) {
	var snap snapshot
	if err := model.LoadModel(&snap, path); err != nil {
		return nil, err
	}
	return fromSnapshot(snap)
}

// Unmarshal is Load from a byte slice.
func Unmarshal(data []byte) (*Pipeline, error) {
	var snap snapshot
	if err := model.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return fromSnapshot(snap)
}

func fromSnapshot(snap snapshot) (*Pipeline, error) {
	if !snap.State.Fitted || snap.Preprocessor == nil {
		return nil, errors.NewValueError("pipeline.Load", "stored pipeline is not fitted")
	}

	ct := compose.NewColumnTransformer()
	if err := ct.Restore(snap.Preprocessor); err != nil {
		return nil, err
	}
	p := New(ct)
	p.state.SetState(snap.State)
	p.logger.Info("Loaded pipeline",
		log.OperationKey, log.OperationLoad,
		log.OutputFeaturesKey, ct.NOutputFeatures(),
	)
	return p, nil
}
