package ports

import "github.com/robertofernandezmartinez/ai-corporate-suite/domain/inference"

// ModelFamily identifies the concrete scoring family behind a handle.
type ModelFamily string

const (
	// FamilyClassifier emits a probability in [0,1].
	FamilyClassifier ModelFamily = "classifier"
	// FamilyRegressor emits an unbounded domain quantity (e.g. RUL cycles).
	FamilyRegressor ModelFamily = "regressor"
)

// ModelMeta describes a loaded artifact.
type ModelMeta struct {
	Domain          string
	Family          ModelFamily
	Version         string
	ContractVersion string
	Arity           int
}

// ModelHandle is a loaded, versioned scoring artifact: an opaque capability
// exposing exactly one operation. Stateless after load and safe to share
// across concurrent requests. Score operates on the whole dataset in one
// call; row-by-row invocation is disallowed.
type ModelHandle interface {
	Meta() ModelMeta
	Score(vectors []inference.FeatureVector) ([]float64, error)
}
