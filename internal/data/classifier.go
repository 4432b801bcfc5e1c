package data

import (
	"context"

	"github.com/ghostnote/confession-relay/internal/biz/repo"
	"github.com/ghostnote/confession-relay/internal/infra/openai"
)

// classifierRepo implements the content classifier on a chat completion model
type classifierRepo struct {
	client *openai.Client
}

// NewClassifierRepo creates a classifier repository.
// Returns nil when no client is configured so the check is skipped.
func NewClassifierRepo(client *openai.Client) repo.ClassifierRepo {
	if client == nil {
		return nil
	}
	return &classifierRepo{client: client}
}

// IsSpam asks the model whether the text is spam
func (r *classifierRepo) IsSpam(ctx context.Context, text string) (bool, error) {
	return r.client.IsSpam(ctx, text)
}
