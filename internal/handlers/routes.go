package handlers

import "net/http"

// RegisterRoutes mounts the API surface. Everything except registration and
// login sits behind the bearer-token middleware.
func RegisterRoutes(
	mux *http.ServeMux,
	jwtSecret string,
	auth *AuthHandler,
	company *CompanyHandler,
	catalog *CatalogHandler,
	workforce *WorkforceHandler,
	clients *ClientHandler,
	appointments *AppointmentHandler,
) {
	protected := RequireAuth(jwtSecret)
	guard := func(h http.HandlerFunc) http.Handler {
		return protected(h)
	}

	mux.HandleFunc("/api/v1/auth/register", auth.Register)
	mux.HandleFunc("/api/v1/auth/login", auth.Login)
	mux.Handle("/api/v1/auth/me", guard(auth.Me))

	mux.Handle("/api/v1/company", guard(company.Handle))
	mux.HandleFunc("/api/v1/company/lookup", company.Lookup)
	mux.Handle("/api/v1/categories", guard(catalog.Categories))
	mux.Handle("/api/v1/services", guard(catalog.Services))
	mux.Handle("/api/v1/employees", guard(workforce.Employees))
	mux.Handle("/api/v1/schedules", guard(workforce.Schedules))
	mux.Handle("/api/v1/leave", guard(workforce.Leave))
	mux.Handle("/api/v1/clients", guard(clients.Handle))
	mux.Handle("/api/v1/appointments", guard(appointments.Handle))
	mux.Handle("/api/v1/appointments/status", guard(appointments.Status))
	mux.Handle("/api/v1/slots", guard(appointments.Slots))
}
