// Package model loads versioned scoring artifacts and exposes them as opaque
// model handles. Loading is the only I/O-bound, failure-prone step and fails
// fast and loudly; scoring is a pure in-memory batch operation.
package model

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	"github.com/robertofernandezmartinez/ai-corporate-suite/domain/core"
	"github.com/robertofernandezmartinez/ai-corporate-suite/domain/inference"
	"github.com/robertofernandezmartinez/ai-corporate-suite/ports"
)

// artifactFile is the on-disk layout of a scoring artifact: a generalized
// linear scorer exported from the training pipeline together with the
// feature contract it was built against.
type artifactFile struct {
	SchemaVersion   int     `json:"schema_version"`
	Family          string  `json:"family"`
	Version         string  `json:"version"`
	FeatureContract struct {
		Version      string              `json:"version"`
		Features     []string            `json:"features"`
		Vocabularies map[string][]string `json:"vocabularies,omitempty"`
	} `json:"feature_contract"`
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
	Means     []float64 `json:"means,omitempty"`
	Scales    []float64 `json:"scales,omitempty"`
}

// Handle is a loaded artifact. Immutable after Load and safe to share across
// concurrent requests.
type Handle struct {
	meta      ports.ModelMeta
	weights   *mat.VecDense
	intercept float64
	means     []float64
	scales    []float64
}

var _ ports.ModelHandle = (*Handle)(nil)

// Load reads and validates the artifact for one domain. Every contract check
// happens here, at process start: a missing file, an unknown family or a
// drifted feature contract must never silently score zeros per request.
func Load(dir string, d inference.Descriptor) (*Handle, error) {
	path := filepath.Join(dir, d.ArtifactFile)
	log.Printf("[ModelLoader] Loading %s artifact from %s", d.Name, path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("model artifact for %s: %w", d.Name, err)
	}

	var artifact artifactFile
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("model artifact for %s is not valid JSON: %w", d.Name, err)
	}

	family := ports.ModelFamily(artifact.Family)
	if family != ports.FamilyClassifier && family != ports.FamilyRegressor {
		return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedFamily, artifact.Family)
	}

	if err := checkContract(artifact, d); err != nil {
		return nil, err
	}

	handle := &Handle{
		meta: ports.ModelMeta{
			Domain:          d.Name,
			Family:          family,
			Version:         artifact.Version,
			ContractVersion: artifact.FeatureContract.Version,
			Arity:           len(artifact.FeatureContract.Features),
		},
		weights:   mat.NewVecDense(len(artifact.Weights), artifact.Weights),
		intercept: artifact.Intercept,
		means:     artifact.Means,
		scales:    artifact.Scales,
	}
	log.Printf("[ModelLoader] Loaded %s %s v%s (arity %d, contract %s)",
		d.Name, family, artifact.Version, handle.meta.Arity, handle.meta.ContractVersion)
	return handle, nil
}

// checkContract verifies the artifact and the feature engineer agree on
// version, ordering and categorical vocabularies. Any drift is a startup
// failure, not a per-request surprise.
func checkContract(artifact artifactFile, d inference.Descriptor) error {
	if artifact.FeatureContract.Version != d.ContractVersion {
		return core.NewContractDriftError(artifact.FeatureContract.Version, d.ContractVersion)
	}

	declared := d.FeatureNames()
	got := artifact.FeatureContract.Features
	if len(got) != len(declared) {
		return core.NewArityMismatchError(len(got), len(declared))
	}
	for i := range declared {
		if got[i] != declared[i] {
			return fmt.Errorf("%w: feature %d is %q in artifact, %q in engineer",
				core.ErrContractDrift, i, got[i], declared[i])
		}
	}

	for _, spec := range d.Features {
		if spec.Kind != inference.FeatureCategorical {
			continue
		}
		vocab, ok := artifact.FeatureContract.Vocabularies[spec.Name]
		if !ok {
			continue // artifact may omit vocabularies it trusts the engineer on
		}
		if len(vocab) != len(spec.Vocabulary) {
			return fmt.Errorf("%w: vocabulary size for %s", core.ErrContractDrift, spec.Name)
		}
		for i := range vocab {
			if vocab[i] != spec.Vocabulary[i] {
				return fmt.Errorf("%w: vocabulary entry %d for %s", core.ErrContractDrift, i, spec.Name)
			}
		}
	}

	if len(artifact.Weights) != len(declared) {
		return fmt.Errorf("%w: %d weights for %d features", core.ErrContractDrift, len(artifact.Weights), len(declared))
	}
	if len(artifact.Means) > 0 && len(artifact.Means) != len(declared) {
		return fmt.Errorf("%w: standardization means length", core.ErrContractDrift)
	}
	if len(artifact.Scales) > 0 && len(artifact.Scales) != len(declared) {
		return fmt.Errorf("%w: standardization scales length", core.ErrContractDrift)
	}
	return nil
}

// Meta returns the artifact description.
func (h *Handle) Meta() ports.ModelMeta { return h.meta }

// Score scores a whole dataset in one vectorized call. A shape mismatch on
// any vector fails the entire dataset; a model cannot report partial per-row
// success inside one call.
func (h *Handle) Score(vectors []inference.FeatureVector) ([]float64, error) {
	if h.weights == nil {
		return nil, core.ErrModelNotLoaded
	}
	if len(vectors) == 0 {
		return []float64{}, nil
	}

	arity := h.meta.Arity
	flat := make([]float64, 0, len(vectors)*arity)
	for _, vec := range vectors {
		if len(vec) != arity {
			return nil, core.NewArityMismatchError(arity, len(vec))
		}
		flat = append(flat, h.standardize(vec)...)
	}

	design := mat.NewDense(len(vectors), arity, flat)
	scores := mat.NewVecDense(len(vectors), nil)
	scores.MulVec(design, h.weights)

	out := make([]float64, len(vectors))
	for i := range out {
		raw := scores.AtVec(i) + h.intercept
		if h.meta.Family == ports.FamilyClassifier {
			raw = sigmoid(raw)
		}
		out[i] = raw
	}
	return out, nil
}

func (h *Handle) standardize(vec inference.FeatureVector) []float64 {
	if len(h.means) == 0 || len(h.scales) == 0 {
		return vec
	}
	scaled := make([]float64, len(vec))
	for i, v := range vec {
		scale := h.scales[i]
		if scale == 0 {
			scale = 1
		}
		scaled[i] = (v - h.means[i]) / scale
	}
	return scaled
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
