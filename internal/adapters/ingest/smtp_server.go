// Package ingest runs a local SMTP sink that classifies every delivered
// message. It exists so mail rules and thresholds can be exercised without a
// mail client: messages are scored, logged and discarded, never forwarded.
package ingest

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mikey/email-flagger/internal/core"
	"go.uber.org/zap"
)

// Server is a minimal SMTP server feeding the classification pipeline.
type Server struct {
	service *core.FlaggerService
	logger  *zap.Logger
	addr    string
	server  *smtp.Server
}

// NewServer creates a new ingest server listening on addr.
func NewServer(service *core.FlaggerService, logger *zap.Logger, addr string) *Server {
	return &Server{
		service: service,
		logger:  logger,
		addr:    addr,
	}
}

// Start starts the SMTP server in the background.
func (s *Server) Start() error {
	s.server = smtp.NewServer(&backend{srv: s})
	s.server.Addr = s.addr
	s.server.Domain = "localhost"
	s.server.ReadTimeout = 30 * time.Second
	s.server.WriteTimeout = 30 * time.Second
	s.server.MaxMessageBytes = 10 * 1024 * 1024
	s.server.MaxRecipients = 10
	s.server.AllowInsecureAuth = true

	s.logger.Info("Ingest sink starting", zap.String("address", s.addr))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != smtp.ErrServerClosed {
			s.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the SMTP server.
func (s *Server) Stop() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}

// backend implements the go-smtp Backend interface.
type backend struct {
	srv *Server
}

func (b *backend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &session{srv: b.srv}, nil
}

// session implements the go-smtp Session interface.
type session struct {
	srv    *Server
	sender string
}

func (s *session) Reset() {
	s.sender = ""
}

func (s *session) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

func (s *session) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

func (s *session) Rcpt(_ string, _ *smtp.RcptOptions) error {
	return nil
}

// Data spools the message to a temp file and runs it through the same
// pipeline the hook uses. Classification failures still degrade to the
// no-flag tier, so delivery is always accepted.
func (s *session) Data(r io.Reader) error {
	tmp, err := os.CreateTemp("", "email-flagger-*.eml")
	if err != nil {
		s.srv.logger.Error("Failed to spool message", zap.Error(err))
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		s.srv.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result := s.srv.service.ClassifyFile(ctx, tmp.Name())

	s.srv.logger.Info("Ingested message",
		zap.String("from", s.sender),
		zap.String("tier", string(result.Tier)),
		zap.Float64("score", result.Score))

	return nil
}

func (s *session) Logout() error {
	return nil
}
