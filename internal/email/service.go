package email

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"techdeputies/internal/logger"
	"techdeputies/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	queueKey   = "emails"
	failedKey  = "emails:failed"
	maxTries   = 3
	timeLayout = "Jan 2, 2006 at 3:04 PM MST"
)

type Job struct {
	Type    string    `json:"type"`
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type SMTPConfig struct {
	From     string
	FromName string
	Host     string
	Port     string
	User     string
	Pass     string
}

type Service struct {
	redis      *redis.Client
	smtp       SMTPConfig
	currency   string
	retryDelay time.Duration
	deliver    func(job Job) error
}

func New(rdb *redis.Client, cfg SMTPConfig, currency string) *Service {
	s := &Service{
		redis:      rdb,
		smtp:       cfg,
		currency:   currency,
		retryDelay: 5 * time.Second,
	}
	s.deliver = s.sendNow
	return s
}

// Send queues a message for the background worker.
func (s *Service) Send(ctx context.Context, emailType, to, name, subject, body string) error {
	job := Job{
		Type:    emailType,
		To:      to,
		Name:    name,
		Subject: subject,
		Body:    body,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal email job: %w", err)
	}

	if err := s.redis.LPush(ctx, queueKey, string(data)).Err(); err != nil {
		metrics.RecordEmail(emailType, "failed")
		logger.Error("failed to queue email", "type", emailType, "to", to, "error", err)
		return fmt.Errorf("queue email: %w", err)
	}

	metrics.RecordEmail(emailType, "queued")
	logger.Info("email queued", "type", emailType, "to", to, "subject", subject)
	return nil
}

// Start drains the queue until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("email worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("email worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Error("bad email job", "error", err)
		return
	}

	job.Tries++
	if err := s.deliver(job); err != nil {
		logger.Error("failed to send email", "to", job.To, "attempt", job.Tries, "error", err)

		if job.Tries < maxTries {
			time.Sleep(s.retryDelay)
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, string(data))
			return
		}
		s.saveFailed(job, err)
		return
	}

	metrics.RecordEmail(job.Type, "sent")
	logger.Info("email sent", "type", job.Type, "to", job.To)
}

func (s *Service) sendNow(job Job) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.smtp.FromName, s.smtp.From)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.smtp.User != "" && s.smtp.Pass != "" {
		auth = smtp.PlainAuth("", s.smtp.User, s.smtp.Pass, s.smtp.Host)
	}

	addr := s.smtp.Host + ":" + s.smtp.Port
	return smtp.SendMail(addr, auth, s.smtp.From, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(job Job, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedKey, string(data))
	metrics.RecordEmail(job.Type, "dead")
	logger.Error("email moved to failed queue", "type", job.Type, "to", job.To)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}
