package usecase

import (
	"context"
	"errors"
	"log/slog"

	incidents "alertaUtec/internal/modules/incidents/domain"
	"alertaUtec/internal/modules/notifications/application/port"
	"alertaUtec/internal/modules/notifications/domain"
)

type NotifyOptions struct {
	From          string
	SecurityEmail string
}

type NotifyResult struct {
	Sent   int
	Failed int
}

// NotifyIncidentUseCase mails the reporter when an address was given and the security
// team when urgencia is alta or critica. One failed send does not stop the other.
type NotifyIncidentUseCase struct {
	mailer port.Mailer
	opts   NotifyOptions
}

func NewNotifyIncidentUseCase(mailer port.Mailer, opts NotifyOptions) *NotifyIncidentUseCase {
	return &NotifyIncidentUseCase{mailer: mailer, opts: opts}
}

func (uc *NotifyIncidentUseCase) Execute(ctx context.Context, inc incidents.Incident) (NotifyResult, error) {
	var (
		res  NotifyResult
		errs []error
	)
	send := func(recipient string, email domain.Email) {
		if err := uc.mailer.Send(ctx, email); err != nil {
			res.Failed++
			errs = append(errs, err)
			slog.Warn("notification e-mail failed",
				slog.String("incidenteId", inc.IncidenteID),
				slog.String("recipient", recipient),
				slog.Any("error", err),
			)
			return
		}
		res.Sent++
		slog.Info("notification e-mail sent", slog.String("incidenteId", inc.IncidenteID), slog.String("recipient", recipient))
	}

	if inc.EmailReportante != "" {
		send("reporter", domain.ReporterEmail(uc.opts.From, inc))
	}
	if inc.Urgencia.IsHigh() && uc.opts.SecurityEmail != "" {
		send("security", domain.SecurityEmail(uc.opts.From, uc.opts.SecurityEmail, inc))
	}
	return res, errors.Join(errs...)
}
