package email

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hmcts/fact-admin/internal/config"
	"github.com/hmcts/fact-admin/internal/fact_errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

type EmailPurpose string
type EmailBodyType string

const (
	KeyEmailFrom                              = "From"
	KeyEmailTo                                = "To"
	KeyEmailSubject                           = "Subject"
	KeyEmailBodyPlain           EmailBodyType = "text/plain"
	PurposeLockTakeover         EmailPurpose  = "court_lock_takeover"
	defaultEmailChannelCapacity               = 100
)

// Sender delivers composed messages. *gomail.Dialer implements it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailRequest struct {
	To       []string
	Subject  string
	Body     string
	BodyType EmailBodyType
	Purpose  EmailPurpose
}

type emailJob struct {
	EmailRequest
	from string
}

type EmailService struct {
	From   string
	Sender Sender

	mu      sync.RWMutex
	jobs    chan emailJob
	running bool
	wg      sync.WaitGroup
	logger  *log.Entry
}

// NewEmailService returns a service sending through the configured SMTP server.
func NewEmailService(cfg config.EmailConfig) *EmailService {
	return &EmailService{
		From:   cfg.Sender,
		Sender: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Sender, cfg.SenderPassword),
	}
}

// Start launches the workers that send queued mails.
func (e *EmailService) Start(workers int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return
	}
	if e.Sender == nil {
		panic("email service expects non-nil sender")
	}

	e.logger = log.WithField("from", "email service")
	e.jobs = make(chan emailJob, defaultEmailChannelCapacity)
	e.running = true
	for i := range workers {
		e.wg.Add(1)
		go e.worker(i)
	}
	e.logger.Infof("started %d email workers", workers)
}

// Stop waits for queued mails to be sent and stops the workers.
func (e *EmailService) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	close(e.jobs)
	e.mu.Unlock()

	e.wg.Wait()
	e.logger.Info("email workers stopped")
}

// NewMail queues a mail. It fails when the service is stopped or ctx ends
// before a slot in the queue frees up.
func (e *EmailService) NewMail(
	ctx context.Context,
	subject string,
	body string,
	bodyType EmailBodyType,
	purpose EmailPurpose,
	to ...string,
) error {
	if e.From == "" {
		log.Error("sender email is not configured")
		return fact_errors.ErrEmailServiceStopped
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.running {
		return fact_errors.ErrEmailServiceStopped
	}

	job := emailJob{
		from: e.From,
		EmailRequest: EmailRequest{
			To:       to,
			Subject:  subject,
			Body:     body,
			BodyType: bodyType,
			Purpose:  purpose,
		},
	}
	// when all the workers are busy, it shouldn't block indefinitely
	select {
	case <-ctx.Done():
		log.Errorf("email job cancelled: %v", ctx.Err())
		return errors.Join(fact_errors.ErrEmailServiceStopped, ctx.Err())
	case e.jobs <- job:
		return nil
	}
}

func (e *EmailService) worker(id int) {
	defer e.wg.Done()
	logger := e.logger.WithField("worker", id)

	for job := range e.jobs {
		if err := e.send(job); err != nil {
			logger.WithField("purpose", job.Purpose).Error(err)
			continue
		}
		logger.WithFields(log.Fields{
			"purpose": job.Purpose,
			"to":      job.To,
		}).Debug("mail sent")
	}
}

func (e *EmailService) send(job emailJob) error {
	m := gomail.NewMessage()
	m.SetHeader(KeyEmailFrom, job.from)
	m.SetHeader(KeyEmailTo, job.To...)
	m.SetHeader(KeyEmailSubject, job.Subject)
	m.SetBody(string(job.BodyType), job.Body)

	if err := e.Sender.DialAndSend(m); err != nil {
		return fmt.Errorf("cannot send %s mail, %w", job.Purpose, err)
	}
	return nil
}
