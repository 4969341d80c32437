package domain

import (
	"fmt"
	"strings"

	incidents "alertaUtec/internal/modules/incidents/domain"
)

// Email is a plain-text message ready for a Mailer.
type Email struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// ReporterEmail confirms to the reporter that the incident was registered.
func ReporterEmail(from string, inc incidents.Incident) Email {
	var b strings.Builder
	fmt.Fprintf(&b, "Incidente registrado: %s\n\n", inc.IncidenteID)
	fmt.Fprintf(&b, "Tipo: %s\n", incidents.TipoLabel(inc.Tipo))
	fmt.Fprintf(&b, "Urgencia: %s\n", incidents.UrgenciaLabel(inc.Urgencia))
	fmt.Fprintf(&b, "Ubicación: %s\n", inc.Ubicacion)
	fmt.Fprintf(&b, "Descripción: %s\n", inc.Descripcion)
	fmt.Fprintf(&b, "Estado: %s\n", incidents.EstadoLabel(inc.Estado))
	fmt.Fprintf(&b, "Fecha: %s\n\n", inc.FechaCreacion.Format("02/01/2006 15:04"))
	b.WriteString("El equipo de seguridad ha sido notificado y atenderá tu reporte lo antes posible.\n")
	b.WriteString("Se te notificará sobre actualizaciones.\n")

	return Email{
		From:    from,
		To:      []string{inc.EmailReportante},
		Subject: "Incidente Registrado: " + inc.IncidenteID,
		Body:    b.String(),
	}
}

// SecurityEmail alerts the security team about a high-urgency incident.
func SecurityEmail(from, to string, inc incidents.Incident) Email {
	level := strings.ToUpper(string(inc.Urgencia))

	var b strings.Builder
	fmt.Fprintf(&b, "ALERTA DE INCIDENTE %s\n\n", level)
	fmt.Fprintf(&b, "ID: %s\n", inc.IncidenteID)
	fmt.Fprintf(&b, "Tipo: %s\n", incidents.TipoLabel(inc.Tipo))
	fmt.Fprintf(&b, "Urgencia: %s\n", incidents.UrgenciaLabel(inc.Urgencia))
	fmt.Fprintf(&b, "Ubicación: %s\n", inc.Ubicacion)
	fmt.Fprintf(&b, "Descripción: %s\n", inc.Descripcion)
	if inc.EmailReportante != "" {
		fmt.Fprintf(&b, "Contacto: %s\n", inc.EmailReportante)
	}
	b.WriteString("\nAcción requerida inmediatamente.\n")

	return Email{
		From:    from,
		To:      []string{to},
		Subject: fmt.Sprintf("INCIDENTE %s: %s - %s", level, inc.Tipo, inc.IncidenteID),
		Body:    b.String(),
	}
}
