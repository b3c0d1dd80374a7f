package factory

import (
	"fmt"

	"github.com/mikey/sentence-assistant/internal/adapters/mail"
	"github.com/mikey/sentence-assistant/internal/adapters/web"
	"github.com/mikey/sentence-assistant/internal/config"
	"github.com/mikey/sentence-assistant/internal/core"
	"github.com/mikey/sentence-assistant/internal/ports"
	"github.com/mikey/sentence-assistant/internal/sharelink"
	"github.com/mikey/sentence-assistant/internal/utils"
	"github.com/mikey/sentence-assistant/internal/whitelist"
	"go.uber.org/zap"
)

// FrontendFactory creates the listeners that feed the assistant
type FrontendFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	assistant     core.Assistant
	shares        *sharelink.Cache
	repairer      *utils.Repairer
	textProcessor *utils.TextProcessor
}

// NewFrontendFactory creates a new frontend factory
func NewFrontendFactory(
	cfg *config.Config,
	logger *zap.Logger,
	assistant core.Assistant,
	shares *sharelink.Cache,
	repairer *utils.Repairer,
	textProcessor *utils.TextProcessor,
) *FrontendFactory {
	return &FrontendFactory{
		cfg:           cfg,
		logger:        logger,
		assistant:     assistant,
		shares:        shares,
		repairer:      repairer,
		textProcessor: textProcessor,
	}
}

// CreateFrontends returns the web server followed by the SMTP intake when mail is enabled
func (f *FrontendFactory) CreateFrontends() ([]ports.Frontend, error) {
	server, err := f.CreateWebServer()
	if err != nil {
		return nil, err
	}
	frontends := []ports.Frontend{server}

	mailCfg, err := f.cfg.GetMail()
	if err != nil {
		return nil, fmt.Errorf("invalid mail configuration: %w", err)
	}
	if mailCfg.Enabled {
		frontends = append(frontends, f.createIntake(mailCfg))
	}
	return frontends, nil
}

// CreateWebServer creates the HTTP front end
func (f *FrontendFactory) CreateWebServer() (*web.Server, error) {
	serverCfg, err := f.cfg.GetServer()
	if err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}
	return web.NewServer(
		f.assistant,
		f.shares,
		f.repairer,
		f.textProcessor,
		serverCfg,
		f.cfg.GetTLS(),
		f.cfg.GetShare(),
		f.logger,
	), nil
}

func (f *FrontendFactory) createIntake(mailCfg config.MailConfig) *mail.Intake {
	return mail.NewIntake(
		f.assistant,
		f.repairer,
		f.textProcessor,
		whitelist.NewChecker(mailCfg.AllowedDomains, f.logger),
		mailCfg,
		f.logger,
	)
}
