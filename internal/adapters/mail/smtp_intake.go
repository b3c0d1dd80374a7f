// Package mail accepts sentences by email: each message from an allowed
// sender domain is analyzed and lands in history like a web submission.
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/mail"
	"sync"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mikey/sentence-assistant/internal/config"
	"github.com/mikey/sentence-assistant/internal/core"
	"github.com/mikey/sentence-assistant/internal/utils"
	"github.com/mikey/sentence-assistant/internal/whitelist"
	"go.uber.org/zap"
)

var (
	errSenderRejected = &smtp.SMTPError{
		Code:         550,
		EnhancedCode: smtp.EnhancedCode{5, 7, 1},
		Message:      "Sender domain not allowed",
	}
	errNoSentence = &smtp.SMTPError{
		Code:         550,
		EnhancedCode: smtp.EnhancedCode{5, 6, 0},
		Message:      "No sentence found in message",
	}
	errAnalysisFailed = &smtp.SMTPError{
		Code:         451,
		EnhancedCode: smtp.EnhancedCode{4, 3, 0},
		Message:      "Sentence analysis failed, try again later",
	}
)

// Analyzer is the part of the assistant the intake needs
type Analyzer interface {
	AnalyzeSentence(ctx context.Context, sentence string) (*core.SentenceAnalysis, error)
}

// Intake is an SMTP listener feeding mailed sentences to the assistant
type Intake struct {
	assistant     Analyzer
	repairer      *utils.Repairer
	textProcessor *utils.TextProcessor
	allowlist     *whitelist.Checker
	cfg           config.MailConfig
	logger        *zap.Logger

	mu     sync.Mutex
	server *smtp.Server
	addr   string
	wg     sync.WaitGroup
}

// NewIntake creates a new SMTP intake
func NewIntake(
	assistant Analyzer,
	repairer *utils.Repairer,
	textProcessor *utils.TextProcessor,
	allowlist *whitelist.Checker,
	cfg config.MailConfig,
	logger *zap.Logger,
) *Intake {
	return &Intake{
		assistant:     assistant,
		repairer:      repairer,
		textProcessor: textProcessor,
		allowlist:     allowlist,
		cfg:           cfg,
		logger:        logger.Named("mail"),
	}
}

// Start starts the SMTP listener
func (i *Intake) Start() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	ln, err := net.Listen("tcp", i.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", i.cfg.ListenAddress, err)
	}

	server := smtp.NewServer(&smtpBackend{intake: i})
	server.Addr = ln.Addr().String()
	server.Domain = i.cfg.Domain
	server.ReadTimeout = 30 * time.Second
	server.WriteTimeout = 30 * time.Second
	server.MaxMessageBytes = i.cfg.MaxMessageBytes
	server.MaxRecipients = 50

	i.server = server
	i.addr = ln.Addr().String()
	i.logger.Info("SMTP intake starting", zap.String("address", i.addr))

	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		if err := server.Serve(ln); err != nil && !errors.Is(err, smtp.ErrServerClosed) {
			i.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the SMTP listener
func (i *Intake) Stop() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.server == nil {
		return nil
	}
	err := i.server.Close()
	i.wg.Wait()
	i.server = nil
	return err
}

// Addr returns the bound address once started
func (i *Intake) Addr() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.addr
}

// ProcessMessage extracts, repairs and analyzes the sentence carried by a raw message.
// The first non-empty body line is used; an empty body falls back to the Subject.
func (i *Intake) ProcessMessage(ctx context.Context, raw []byte) (*core.SentenceAnalysis, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse email message: %w", err)
	}

	body, err := extractText(msg)
	if err != nil {
		i.logger.Warn("Failed to extract message text", zap.Error(err))
	}

	line := firstLine(body)
	if line == "" {
		line = decodeHeader(msg.Header.Get("Subject"))
	}

	sentence := i.repairer.Repair(i.textProcessor.CleanSentence(line))
	if sentence == "" {
		return nil, core.ErrEmptySentence
	}

	return i.assistant.AnalyzeSentence(ctx, sentence)
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	intake *Intake
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{intake: b.intake}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	intake     *Intake
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

// Mail checks the sender against the allowlist
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	if !s.intake.allowlist.Allows(from) {
		s.intake.logger.Info("Rejected sender", zap.String("from", from))
		return errSenderRejected
	}
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data analyzes the message
func (s *smtpSession) Data(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		s.intake.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	timeout := s.intake.cfg.AnalysisTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	analysis, err := s.intake.ProcessMessage(ctx, raw)
	switch {
	case errors.Is(err, core.ErrEmptySentence):
		return errNoSentence
	case err != nil:
		s.intake.logger.Error("Failed to analyze mailed sentence",
			zap.String("from", s.sender),
			zap.Error(err))
		return errAnalysisFailed
	}

	s.intake.logger.Info("Analyzed mailed sentence",
		zap.String("from", s.sender),
		zap.Int("recipients", len(s.recipients)),
		zap.Int("words", len(analysis.Words)))
	return nil
}

// Logout handles the end of the session
func (s *smtpSession) Logout() error {
	return nil
}
