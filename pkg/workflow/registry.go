package workflow

import (
	"fmt"

	"github.com/nutrient-dws/client-go/pkg/apierror"
	"github.com/nutrient-dws/client-go/pkg/inputs"
)

// registerAsset records a local input under the next symbolic key.
// Keys are monotonic per builder and never reused; remote inputs never
// consume one.
func (b *StagedWorkflowBuilder) registerAsset(in inputs.FileInput) (string, error) {
	if err := inputs.Validate(in); err != nil {
		return "", err
	}
	if inputs.IsRemote(in) {
		return "", apierror.NewValidationError(
			"remote file input doesn't need to be registered",
			map[string]any{"url": in.URL()},
		)
	}
	key := fmt.Sprintf("asset_%d", b.assetIndex)
	b.assetIndex++
	b.assets[key] = in
	return key, nil
}

// assetSnapshot hands the materializer a copy of the registry.
func (b *StagedWorkflowBuilder) assetSnapshot() map[string]inputs.FileInput {
	snapshot := make(map[string]inputs.FileInput, len(b.assets))
	for key, in := range b.assets {
		snapshot[key] = in
	}
	return snapshot
}

// clearAssets releases all registry entries. Called unconditionally at
// the end of every terminal call so a builder cannot be reused with
// stale assets.
func (b *StagedWorkflowBuilder) clearAssets() {
	b.assets = make(map[string]inputs.FileInput)
}
