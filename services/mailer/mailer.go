package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pitchinvest/config"
	"pitchinvest/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeOTPEmail = "email:otp"

// OTPEmailPayload is the queued form of one verification email.
type OTPEmailPayload struct {
	Email            string `json:"email"`
	Code             string `json:"code"`
	ExpiresInSeconds int    `json:"expiresInSeconds"`
}

// Sender delivers a rendered email. The production integration point for the
// transactional email provider lives behind this interface.
type Sender interface {
	Send(to, subject, body string) error
}

// LogSender logs outgoing mail instead of delivering it. Used in development
// and as the default until a provider is wired in.
type LogSender struct{}

func (LogSender) Send(to, subject, body string) error {
	utils.GetLogger().Sugar().Infof("Sending email to %s: %s: %s", to, subject, body)
	return nil
}

// Mailer enqueues verification emails onto the asynq queue. It satisfies the
// registration service's notifier contract.
type Mailer struct {
	client *asynq.Client
	logger *zap.Logger
}

// NewMailer creates a queue-backed mailer.
func NewMailer(logger *zap.Logger) *Mailer {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisMailDB,
	})
	return &Mailer{client: client, logger: logger}
}

// SendOTP enqueues a verification-code email. The task retains a deadline
// matching the code's TTL; delivering an expired code helps nobody.
func (m *Mailer) SendOTP(ctx context.Context, email, code string, ttl time.Duration) error {
	payload, err := json.Marshal(OTPEmailPayload{
		Email:            email,
		Code:             code,
		ExpiresInSeconds: int(ttl.Seconds()),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal OTP email payload: %w", err)
	}
	task := asynq.NewTask(TypeOTPEmail, payload)
	if _, err := m.client.EnqueueContext(ctx, task, asynq.Deadline(time.Now().Add(ttl)), asynq.MaxRetry(3)); err != nil {
		return fmt.Errorf("failed to enqueue OTP email: %w", err)
	}
	return nil
}

// Close releases the queue client.
func (m *Mailer) Close() error {
	return m.client.Close()
}

// InitMailWorker runs the asynq worker that delivers queued emails.
func InitMailWorker(sender Sender) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisMailDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeOTPEmail, handleOTPEmailTask(sender))

	go func() {
		utils.GetLogger().Info("Starting mail worker")
		if err := srv.Run(mux); err != nil {
			utils.GetLogger().Fatal("Mail worker failed to start", zap.Error(err))
		}
	}()
}

func handleOTPEmailTask(sender Sender) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p OTPEmailPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			utils.GetLogger().Error("Invalid OTP email payload", zap.Error(err))
			return err
		}

		subject := "Your Pitch Invest verification code"
		body := fmt.Sprintf("Your Pitch Invest verification code is %s. It expires in %d minutes.",
			p.Code, p.ExpiresInSeconds/60)
		if err := sender.Send(p.Email, subject, body); err != nil {
			utils.GetLogger().Error("Failed to send OTP email", zap.String("email", p.Email), zap.Error(err))
			return err
		}
		return nil
	}
}
