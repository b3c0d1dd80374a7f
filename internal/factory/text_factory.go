package factory

import (
	"github.com/mikey/sentence-assistant/internal/config"
	"github.com/mikey/sentence-assistant/internal/sharelink"
	"github.com/mikey/sentence-assistant/internal/utils"
	"go.uber.org/zap"
)

// TextFactory creates the text handling helpers shared by the front ends
type TextFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewTextFactory creates a new TextFactory
func NewTextFactory(cfg *config.Config, logger *zap.Logger) *TextFactory {
	return &TextFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateTextProcessor creates a new TextProcessor
func (f *TextFactory) CreateTextProcessor() *utils.TextProcessor {
	return utils.NewTextProcessor(f.logger)
}

// CreateRepairer builds the mojibake repairer from the repair settings.
// Zero weights fall back to the stock values.
func (f *TextFactory) CreateRepairer() (*utils.Repairer, error) {
	repairCfg := f.cfg.GetRepair()
	opts := utils.DefaultRepairOptions()
	if repairCfg.CJKWeight > 0 {
		opts.CJKWeight = repairCfg.CJKWeight
	}
	if repairCfg.MarkerWeight > 0 {
		opts.MarkerWeight = repairCfg.MarkerWeight
	}
	if repairCfg.Markers != "" {
		opts.Markers = repairCfg.Markers
	}
	if len(repairCfg.Encodings) > 0 {
		opts.Encodings = repairCfg.Encodings
	}
	return utils.NewRepairer(opts, f.logger)
}

// CreateShareCache creates the bounded share-link sentence cache
func (f *TextFactory) CreateShareCache() *sharelink.Cache {
	return sharelink.New(f.cfg.GetShare().Capacity, f.logger.Named("sharelink"))
}
