package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "github.com/ThanishaDewangan/Mini-User-Management-System/pkg/errors"
)

const outcomeOK = "ok"

var (
	authnOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_authentication_total",
			Help: "Authentication gate decisions by outcome code",
		},
		[]string{"outcome"},
	)

	authzOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_authorization_total",
			Help: "Authorization gate decisions by required role and outcome",
		},
		[]string{"role", "outcome"},
	)

	statusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_status_transitions_total",
			Help: "Account activate/deactivate attempts by transition and outcome",
		},
		[]string{"transition", "outcome"},
	)
)

// outcome labels a result with the AppError code, "ok", or "error".
func outcome(err error) string {
	if err == nil {
		return outcomeOK
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "error"
}
