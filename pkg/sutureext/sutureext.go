// Package sutureext wires suture supervisors into slog.
package sutureext

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
)

// NewSimple returns a supervisor that backs off for a few seconds after
// repeated failures, e.g. while the X server is restarting.
func NewSimple(name string) *suture.Supervisor {
	return suture.New(name, suture.Spec{
		EventHook:      EventHook(),
		FailureBackoff: 5 * time.Second,
		Timeout:        5 * time.Second,
	})
}

func EventHook() suture.EventHook {
	return func(ei suture.Event) {
		switch e := ei.(type) {
		case suture.EventStopTimeout:
			slog.Warn("Service failed to terminate in a timely manner", "package", "sutureext", "supervisor", e.SupervisorName, "service", e.ServiceName)
		case suture.EventServicePanic:
			slog.Error("Service panicked", "package", "sutureext", "supervisor", e.SupervisorName, "service", e.ServiceName, "panic", e.PanicMsg)
			slog.Debug(e.Stacktrace)
		case suture.EventServiceTerminate:
			if e.Restarting {
				slog.Warn("Service failed, restarting", "package", "sutureext", "supervisor", e.SupervisorName, "service", e.ServiceName, "error", e.Err)
			} else {
				slog.Error("Service failed", "package", "sutureext", "supervisor", e.SupervisorName, "service", e.ServiceName, "error", e.Err)
			}
		case suture.EventBackoff:
			slog.Debug("Too many service failures, entering the backoff state", "package", "sutureext", "supervisor", e.SupervisorName)
		case suture.EventResume:
			slog.Debug("Exiting backoff state", "package", "sutureext", "supervisor", e.SupervisorName)
		default:
			slog.Warn("Unknown suture supervisor event type", "package", "sutureext", "type", int(e.Type()))
		}
	}
}

// Service forces the use of the String method
type Service interface {
	String() string
	suture.Service
}

func Add(super *suture.Supervisor, service Service) suture.ServiceToken {
	return super.Add(sanitizeService{Service: service})
}

type sanitizeService struct {
	Service
}

func (s sanitizeService) Serve(ctx context.Context) error {
	return SanitizeError(ctx, s.Service.Serve(ctx))
}

// SanitizeError keeps a service error from looking like a context error unless
// ctx is really done, since suture stops restarting a service that returns one.
func SanitizeError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !(errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return err
	}

	var errs []error
	if errors.Is(err, suture.ErrDoNotRestart) {
		errs = append(errs, suture.ErrDoNotRestart)
	}
	if errors.Is(err, suture.ErrTerminateSupervisorTree) {
		errs = append(errs, suture.ErrTerminateSupervisorTree)
	}
	errs = append(errs, errors.New(err.Error()))

	return errors.Join(errs...)
}
