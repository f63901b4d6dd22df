// Package classifier is the boundary to the sentiment model.  The model
// itself (feature extraction, fitting, persisted weights) lives outside this
// service; only its two entry points are exposed here.
package classifier

import "context"

// Classifier retrains the model and labels free text.
type Classifier interface {
	// Train rebuilds the persisted model.  Callers serialize it.
	Train(ctx context.Context) error
	// Infer returns the predicted label for text.
	Infer(ctx context.Context, text string) (string, error)
}
