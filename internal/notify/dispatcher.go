package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/logger"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/metrics"
)

type Options struct {
	// SenderLabel is the from_name on confirmation emails.
	SenderLabel string
	// Timeout bounds the email send. Zero means 15s.
	Timeout time.Duration
	// Publisher is optional. Events are published alongside the email and
	// never delay or fail it.
	Publisher EventPublisher
	// PublishTimeout bounds one event publish. Zero means 10s.
	PublishTimeout time.Duration
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
}

// Dispatcher sends the confirmation email for a completed purchase. It runs
// in the background and never changes the outcome of the purchase.
type Dispatcher struct {
	mailer         Mailer
	publisher      EventPublisher
	sender         string
	timeout        time.Duration
	publishTimeout time.Duration
	log            *slog.Logger
	metrics        *metrics.Metrics
}

func NewDispatcher(mailer Mailer, opts Options) *Dispatcher {
	if opts.SenderLabel == "" {
		opts.SenderLabel = "Touskié-Byou3"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	return &Dispatcher{
		mailer:         mailer,
		publisher:      opts.Publisher,
		sender:         opts.SenderLabel,
		timeout:        opts.Timeout,
		publishTimeout: opts.PublishTimeout,
		log:            opts.Logger,
		metrics:        opts.Metrics,
	}
}

// Dispatch starts sending and returns a channel that receives exactly one Result.
// ctx cancellation does not abort the send; only the dispatcher timeout does.
func (d *Dispatcher) Dispatch(ctx context.Context, r Receipt) <-chan Result {
	out := make(chan Result, 1)
	ctx = context.WithoutCancel(ctx)

	if d.publisher != nil {
		go d.publish(ctx, r)
	}

	go func() {
		defer close(out)
		ctx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()

		res := d.send(ctx, r)
		d.metrics.ObserveNotification(res.Err)
		out <- res
	}()
	return out
}

func (d *Dispatcher) publish(ctx context.Context, r Receipt) {
	ctx, cancel := context.WithTimeout(ctx, d.publishTimeout)
	defer cancel()
	if err := d.publisher.PublishPurchase(ctx, r); err != nil {
		d.log.ErrorContext(ctx, "purchase event not published", "checkout_id", r.CheckoutID, "error", err)
	}
}

func (d *Dispatcher) send(ctx context.Context, r Receipt) Result {
	if d.mailer == nil {
		return failed(ErrMailerNotConfigured)
	}
	err := d.mailer.Send(ctx, Email{
		ToName:             "Customer",
		FromName:           d.sender,
		ToEmail:            r.Email,
		TransactionDetails: r.TransactionDetails(),
	})
	if err != nil {
		d.log.ErrorContext(ctx, "confirmation email failed", "step", "notify", "checkout_id", r.CheckoutID, "error", err)
		return failed(err)
	}
	d.log.InfoContext(ctx, "confirmation email sent", "step", "notify", "checkout_id", r.CheckoutID)
	return Result{Message: MsgEmailSent}
}

func failed(err error) Result {
	return Result{Err: &Error{Err: err}, Message: MsgEmailFailed}
}
