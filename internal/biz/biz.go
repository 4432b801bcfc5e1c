package biz

import (
	"log/slog"

	"github.com/ghostnote/confession-relay/internal/biz/repo"
	"github.com/ghostnote/confession-relay/internal/biz/usecase"
)

// Usecases contains all usecases
type Usecases struct {
	Admission  *usecase.AdmissionUsecase
	Encoder    *usecase.EncoderUsecase
	Moderation *usecase.ModerationUsecase
}

// Repos is what the usecases are built on
type Repos struct {
	Gateway    repo.Gateway
	RateLimit  repo.RateLimitRepo
	Review     repo.ReviewRepo
	Classifier repo.ClassifierRepo
}

// NewUsecases wires the usecase layer
func NewUsecases(
	repos Repos,
	localizer usecase.Localizer,
	encoderCfg usecase.EncoderConfig,
	moderationCfg usecase.ModerationConfig,
	logger *slog.Logger,
) *Usecases {
	return &Usecases{
		Admission:  usecase.NewAdmissionUsecase(repos.RateLimit, repos.Classifier, usecase.AdmissionConfig{ReviewHeader: encoderCfg.Header}, logger),
		Encoder:    usecase.NewEncoderUsecase(encoderCfg),
		Moderation: usecase.NewModerationUsecase(repos.Gateway, repos.Review, localizer, moderationCfg, logger),
	}
}
